package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/project"
)

var errNoProject = errors.New(errors.ErrCodeNotFound, "no project selected; create one with `storeshots new`")

func errProjectNotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "project %q not found", id)
}

// projects opens the --projects file, or the [store] backend from the
// configuration. A missing file yields an empty store that is created on
// the first save.
func (c *CLI) projects(ctx context.Context) (*projectFile, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	b, err := cfg.OpenStore(ctx, c.ProjectsPath)
	if err != nil {
		return nil, err
	}
	return c.openProjects(ctx, b)
}

// =============================================================================
// Edit flags
// =============================================================================

// editFlags holds the project fields settable from the command line.
// Only flags the user actually passed become changes.
type editFlags struct {
	from           string // JSON document of changes, applied before the flags
	title          string
	subtitle       string
	badge          string
	image          string
	layout         string
	device         string
	solid          string
	gradient       string
	gradientColors []string
	angle          float64
	pills          []string
	showPills      bool
	pillsPosition  string
	stats          []string
	showStats      bool
	statsPosition  string
	phone          int
	phoneImage     string

	// Partial transform edits, merged into the project's current values.
	phoneX, phoneY, phoneScale, phoneRotation float64
	textX, textY, textScale                   float64
	zoom, panX, panY                          float64
}

func (f *editFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.from, "from", "", "JSON file of changes (- for stdin)")
	fl.StringVar(&f.title, "title", "", "headline title")
	fl.StringVar(&f.subtitle, "subtitle", "", "headline subtitle")
	fl.StringVar(&f.badge, "badge", "", "badge text (empty hides it)")
	fl.StringVar(&f.image, "image", "", "screenshot path or data URI")
	fl.StringVar(&f.layout, "layout", "", "layout id (see `catalog layouts`)")
	fl.StringVar(&f.device, "device", "", "device frame id (see `catalog devices`)")
	fl.StringVar(&f.solid, "solid", "", "solid background color, e.g. #1e293b")
	fl.StringVar(&f.gradient, "gradient", "", "gradient preset id (see `catalog gradients`)")
	fl.StringSliceVar(&f.gradientColors, "gradient-colors", nil, "custom gradient stops (comma-separated)")
	fl.Float64Var(&f.angle, "angle", 135, "custom gradient angle in degrees")
	fl.StringArrayVar(&f.pills, "pill", nil, "feature pill as text or icon:text (repeatable)")
	fl.BoolVar(&f.showPills, "show-pills", false, "show feature pills")
	fl.StringVar(&f.pillsPosition, "pills-position", "", "paired pill placement: first, second or both")
	fl.StringArrayVar(&f.stats, "stat", nil, "stat as value:label (repeatable)")
	fl.BoolVar(&f.showStats, "show-stats", false, "show stats")
	fl.StringVar(&f.statsPosition, "stats-position", "", "paired stat placement: first, second or both")
	fl.IntVar(&f.phone, "phone", 0, "phone index for --phone-image on two-phone layouts")
	fl.StringVar(&f.phoneImage, "phone-image", "", "screenshot for the phone picked by --phone")
	fl.Float64Var(&f.phoneX, "phone-x", 0, "phone offset in percent of the canvas width")
	fl.Float64Var(&f.phoneY, "phone-y", 0, "phone offset in percent of the canvas height")
	fl.Float64Var(&f.phoneScale, "phone-scale", 1, "phone scale factor")
	fl.Float64Var(&f.phoneRotation, "phone-rotation", 0, "extra phone rotation in degrees")
	fl.Float64Var(&f.textX, "text-x", 0, "text offset in percent of the canvas width")
	fl.Float64Var(&f.textY, "text-y", 0, "text offset in percent of the canvas height")
	fl.Float64Var(&f.textScale, "text-scale", 1, "text block scale factor")
	fl.Float64Var(&f.zoom, "zoom", 1, "screenshot zoom inside the screen")
	fl.Float64Var(&f.panX, "pan-x", 0, "screenshot pan in device pixels")
	fl.Float64Var(&f.panY, "pan-y", 0, "screenshot pan in device pixels")
}

// patches returns the document patches followed by the partial transform
// edits, which read the project's current transforms when applied.
func (f *editFlags) patches(cmd *cobra.Command) ([]project.Patch, error) {
	ch, err := f.changes(cmd)
	if err != nil {
		return nil, err
	}
	ps := ch.Patches()
	set := cmd.Flags().Changed
	override := func(name string, v float64, dst *float64) {
		if set(name) {
			*dst = v
		}
	}

	if set("phone-x") || set("phone-y") || set("phone-scale") || set("phone-rotation") {
		ps = append(ps, func(p *project.Project) error {
			t := p.PhoneTransform
			override("phone-x", f.phoneX, &t.X)
			override("phone-y", f.phoneY, &t.Y)
			override("phone-scale", f.phoneScale, &t.Scale)
			override("phone-rotation", f.phoneRotation, &t.Rotation)
			return project.SetPhoneTransform(t)(p)
		})
	}
	if set("text-x") || set("text-y") || set("text-scale") {
		ps = append(ps, func(p *project.Project) error {
			o := p.TextTransform
			override("text-x", f.textX, &o.X)
			override("text-y", f.textY, &o.Y)
			override("text-scale", f.textScale, &o.Scale)
			return project.SetTextTransform(o)(p)
		})
	}
	if set("zoom") || set("pan-x") || set("pan-y") {
		ps = append(ps, func(p *project.Project) error {
			t := p.ImageTransform
			override("zoom", f.zoom, &t.Zoom)
			override("pan-x", f.panX, &t.PanX)
			override("pan-y", f.panY, &t.PanY)
			return project.SetImageTransform(t)(p)
		})
	}
	return ps, nil
}

// changes builds the document from --from and the flags that were set.
func (f *editFlags) changes(cmd *cobra.Command) (project.Changes, error) {
	var ch project.Changes
	if f.from != "" {
		var err error
		if ch, err = readChanges(f.from); err != nil {
			return ch, err
		}
	}

	set := cmd.Flags().Changed
	str := func(name, v string, dst **string) {
		if set(name) {
			*dst = &v
		}
	}
	str("title", f.title, &ch.Title)
	str("subtitle", f.subtitle, &ch.Subtitle)
	str("badge", f.badge, &ch.Badge)
	str("image", f.image, &ch.Image)
	str("layout", f.layout, &ch.LayoutID)
	str("device", f.device, &ch.DeviceFrameID)
	str("gradient", f.gradient, &ch.GradientPreset)

	switch {
	case set("gradient-colors"):
		ch.Background = &project.Background{Type: project.BackgroundGradient, Colors: f.gradientColors, Angle: f.angle}
	case set("solid"):
		ch.Background = &project.Background{Type: project.BackgroundSolid, Color: f.solid}
	}

	if set("pill") {
		pills := make([]project.FeaturePill, len(f.pills))
		for i, s := range f.pills {
			pills[i] = parsePill(s)
		}
		ch.FeaturePills = &pills
	}
	if set("show-pills") {
		ch.ShowFeaturePills = &f.showPills
	}
	if set("pills-position") {
		pl := project.Placement(f.pillsPosition)
		ch.FeaturePillsPosition = &pl
	}

	if set("stat") {
		stats := make([]project.Stat, len(f.stats))
		for i, s := range f.stats {
			st, err := parseStat(s)
			if err != nil {
				return ch, err
			}
			stats[i] = st
		}
		ch.Stats = &stats
	}
	if set("show-stats") {
		ch.ShowStats = &f.showStats
	}
	if set("stats-position") {
		pl := project.Placement(f.statsPosition)
		ch.StatsPosition = &pl
	}

	if set("phone-image") {
		img := f.phoneImage
		if ch.PhoneConfigs == nil {
			ch.PhoneConfigs = map[int]project.PhoneConfig{}
		}
		pc := ch.PhoneConfigs[f.phone]
		pc.Image = &img
		ch.PhoneConfigs[f.phone] = pc
	}
	return ch, ch.CheckCatalog()
}

func readChanges(path string) (project.Changes, error) {
	var ch project.Changes
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ch, errors.Wrap(errors.ErrCodeInvalidPath, err, "read changes %s", path)
	}
	if err := json.Unmarshal(data, &ch); err != nil {
		return ch, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse changes %s", path)
	}
	return ch, nil
}

// parsePill parses "icon:text" or plain "text".
func parsePill(s string) project.FeaturePill {
	if icon, text, ok := strings.Cut(s, ":"); ok && !strings.Contains(icon, " ") {
		return project.FeaturePill{Icon: icon, Text: text}
	}
	return project.FeaturePill{Text: s}
}

// parseStat parses "value:label". A trailing ":laurel" adds laurels.
func parseStat(s string) (project.Stat, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || parts[0] == "" {
		return project.Stat{}, errors.New(errors.ErrCodeInvalidInput, "stat %q: want value:label", s)
	}
	st := project.Stat{Value: parts[0], Label: parts[1]}
	if len(parts) > 2 && parts[2] == "laurel" {
		st.ShowLaurel = true
	}
	return st, nil
}

// =============================================================================
// Commands
// =============================================================================

// newCommand creates a project with defaults plus the given edits.
func (c *CLI) newCommand() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project and select it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patches, err := f.patches(cmd)
			if err != nil {
				return err
			}
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			p, err := pf.store.Add(patches...)
			if err != nil {
				return err
			}
			if err := pf.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Created %s", StyleHighlight.Render(p.ID))
			printDetail("%s · %s", p.LayoutID, p.DeviceFrameID)
			printNewline()
			printNextStep("Export it", "storeshots export --id "+p.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// listCommand prints the projects table.
func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			if asJSON {
				return printJSON(pf.store.Snapshot())
			}
			ps := pf.store.List()
			if len(ps) == 0 {
				printInfo("No projects yet")
				printNextStep("Create one", "storeshots new --title \"My App\"")
				return nil
			}
			fmt.Println(projectTable(ps, pf.store.SelectedID()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the projects file as JSON")
	return cmd
}

func projectTable(ps []project.Project, selected string) string {
	rows := make([][]string, len(ps))
	highlight := -1
	for i, p := range ps {
		mark := ""
		if p.ID == selected {
			mark = iconSelected
			highlight = i
		}
		rows[i] = []string{mark, p.ID, truncate(p.Title, 32), p.LayoutID, p.DeviceFrameID, formatRelativeTime(p.UpdatedAt)}
	}
	return renderTable([]string{"", "ID", "Title", "Layout", "Device", "Updated"}, rows, highlight)
}

// setCommand edits a project.
func (c *CLI) setCommand() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "set [id]",
		Short: "Edit a project (the selected one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patches, err := f.patches(cmd)
			if err != nil {
				return err
			}
			if len(patches) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change; pass at least one flag")
			}
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			p, err := pf.resolve(optionalArg(args))
			if err != nil {
				return err
			}
			if p, err = pf.store.Update(p.ID, patches...); err != nil {
				return err
			}
			if err := pf.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Updated %s", StyleHighlight.Render(p.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (c *CLI) duplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "duplicate [id]",
		Aliases: []string{"dup"},
		Short:   "Copy a project and select the copy",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			p, err := pf.resolve(optionalArg(args))
			if err != nil {
				return err
			}
			dup, err := pf.store.Duplicate(p.ID)
			if err != nil {
				return err
			}
			if err := pf.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Duplicated %s %s %s", p.ID, iconArrow, StyleHighlight.Render(dup.ID))
			return nil
		},
	}
}

func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			if err := pf.store.Remove(args[0]); err != nil {
				return err
			}
			if err := pf.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			if id := pf.store.SelectedID(); id != "" {
				printDetail("Selected: %s", id)
			}
			return nil
		},
	}
}

// selectCommand selects a project by id, or interactively without one.
func (c *CLI) selectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select [id]",
		Short: "Select the active project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := c.projects(cmd.Context())
			if err != nil {
				return err
			}
			defer pf.close()
			id := optionalArg(args)
			if id == "" {
				if id, err = pickProject(pf.store); err != nil || id == "" {
					return err
				}
			}
			if err := pf.store.Select(id); err != nil {
				return err
			}
			if err := pf.save(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Selected %s", StyleHighlight.Render(id))
			return nil
		},
	}
}

// pickProject runs the interactive picker. An empty id means the user quit.
func pickProject(s *project.Store) (string, error) {
	ps := s.List()
	if len(ps) == 0 {
		return "", errNoProject
	}
	final, err := tea.NewProgram(NewProjectListModel(ps, s.SelectedID())).Run()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "project picker")
	}
	m, ok := final.(ProjectListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.ID, nil
}

// =============================================================================
// Helpers
// =============================================================================

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatRelativeTime renders t as a short age like "5m ago".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
