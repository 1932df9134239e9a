package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/pipeline"
)

// exportOpts holds the command-line flags shared by export and export-all.
type exportOpts struct {
	id           string  // project id; empty means the selected project
	size         string  // catalog size id
	width        int     // custom width, overrides size together with height
	height       int     // custom height
	format       string  // png or jpeg
	quality      float64 // JPEG quality in (0,1]
	variant      string  // left or right to export one paired half
	placeholders bool    // draw placeholders for missing screenshots
	noCache      bool    // disable the artifact cache entirely
	refresh      bool    // skip cache reads but still write results
	output       string  // output directory, or a file name for a single artifact
}

func (o *exportOpts) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&o.size, "size", "s", "", "export size id (see `catalog sizes`, default [export] size)")
	fl.IntVar(&o.width, "width", 0, "custom width in pixels (with --height)")
	fl.IntVar(&o.height, "height", 0, "custom height in pixels (with --width)")
	fl.StringVarP(&o.format, "format", "f", "", "output format: png, jpeg (default [export] format)")
	fl.Float64Var(&o.quality, "quality", 0, "JPEG quality between 0 and 1")
	fl.BoolVar(&o.placeholders, "placeholders", false, "draw placeholders where screenshots are missing")
	fl.BoolVar(&o.noCache, "no-cache", false, "disable the artifact cache")
	fl.BoolVar(&o.refresh, "refresh", false, "re-render even when a cached artifact exists")
	fl.StringVarP(&o.output, "output", "o", ".", "output directory or file")
}

// options merges the flags over the configured defaults.
func (o *exportOpts) options(defaults pipeline.Options) pipeline.Options {
	opts := defaults
	if o.size != "" {
		opts.Size = o.size
	}
	if o.width != 0 || o.height != 0 {
		opts.Size, opts.Width, opts.Height = "", o.width, o.height
	}
	if o.format != "" {
		opts.Format = o.format
	}
	if o.quality != 0 {
		opts.Quality = o.quality
	}
	opts.Variant = o.variant
	opts.Placeholders = o.placeholders
	opts.Refresh = o.refresh
	return opts
}

// exportCommand exports one project.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a project to PNG or JPEG",
		Long: `Export a project at an exact store resolution.

Paired layouts produce two files, screenshot-left-{ts} and screenshot-right-{ts}, unless
--variant picks one half.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.id = args[0]
			}
			return c.runExport(cmd.Context(), &opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.id, "id", "", "project id (default: the selected project)")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "paired half to export: left or right")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, o *exportOpts) error {
	pf, err := c.projects(ctx)
	if err != nil {
		return err
	}
	defer pf.close()
	p, err := pf.resolve(o.id)
	if err != nil {
		return err
	}
	defaults, err := c.defaultOptions()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := o.options(defaults)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s...", p.ID))
	spinner.Start()
	res, err := runner.Export(ctx, p, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(o.output, res.Artifacts)
	if err != nil {
		return err
	}
	printSuccess("Exported %s", StyleHighlight.Render(p.ID))
	for _, path := range paths {
		printFile(path)
	}
	printExportStats(opts.Width, opts.Height, res.Stats.Artifacts, res.Stats.Bytes, res.CacheInfo.Hit)
	return nil
}

// exportAllCommand exports many projects in one batch.
func (c *CLI) exportAllCommand() *cobra.Command {
	var opts exportOpts
	var zipped bool
	cmd := &cobra.Command{
		Use:   "export-all [id...]",
		Short: "Export every project (or the given ones) in one batch",
		Long: `Export projects one after another. Files are named screenshot-1,
screenshot-2 and so on in project order; paired projects add -left and
-right. A failed project is reported and skipped without renumbering the
rest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExportAll(cmd.Context(), &opts, args, zipped)
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&zipped, "zip", false, "write a single screenshots-{ts}.zip archive")
	return cmd
}

func (c *CLI) runExportAll(ctx context.Context, o *exportOpts, ids []string, zipped bool) error {
	pf, err := c.projects(ctx)
	if err != nil {
		return err
	}
	defer pf.close()
	if pf.store.Len() == 0 {
		return errNoProject
	}
	defaults, err := c.defaultOptions()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := o.options(defaults)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	total := len(ids)
	if total == 0 {
		total = pf.store.Len()
	}
	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %d projects...", total))
	opts.Progress = func(done, total int) {
		spinner.SetMessage(fmt.Sprintf("Exported %d/%d...", done, total))
	}
	spinner.Start()
	res, err := runner.ExportAll(ctx, pf.store, ids, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, f := range res.Failed() {
		printWarning("#%d %s: %s", f.Index, f.ProjectID, errors.UserMessage(f.Err))
	}
	arts := res.Artifacts()
	if len(arts) == 0 {
		return errors.New(errors.ErrCodeNotFound, "no project exported")
	}

	if zipped {
		pkg, err := res.Package(ctx, export.Timestamp(time.Now()))
		if err != nil {
			return err
		}
		arts = []export.Artifact{pkg}
	}
	paths, err := writeArtifacts(o.output, arts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Exported %d of %d projects", total-len(res.Failed()), total))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// writeArtifacts writes arts into dir. A single artifact is written to
// dir itself when dir names a file with an extension.
func writeArtifacts(dir string, arts []export.Artifact) ([]string, error) {
	if len(arts) == 1 && filepath.Ext(dir) != "" {
		if err := writeFile(dir, arts[0].Data); err != nil {
			return nil, err
		}
		return []string{dir}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", dir)
	}
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		path := filepath.Join(dir, a.Name)
		if err := writeFile(path, a.Data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// treeCommand prints the composition tree of a project as JSON.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		size, variant string
		width, height int
		refresh       bool
	)
	cmd := &cobra.Command{
		Use:   "tree [id]",
		Short: "Print the composition of a project as JSON",
		Long:  `Print the positioned layer tree the renderer draws, in canvas pixels.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pf, err := c.projects(ctx)
			if err != nil {
				return err
			}
			defer pf.close()
			p, err := pf.resolve(optionalArg(args))
			if err != nil {
				return err
			}
			if width == 0 && height == 0 {
				if size == "" {
					if cfg, err := c.loadConfig(); err == nil {
						size = cfg.Export.Size
					}
				}
				s, err := catalog.GetSize(size)
				if err != nil {
					return err
				}
				width, height = s.Width, s.Height
			}
			v, err := catalog.ParseVariant(variant)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			data, cached, err := runner.CompositionJSON(ctx, p, width, height, v, refresh)
			if err != nil {
				return err
			}
			c.Logger.Debug("composition", "id", p.ID, "cached", cached)
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		},
	}
	cmd.Flags().StringVarP(&size, "size", "s", "", "export size id")
	cmd.Flags().IntVar(&width, "width", 0, "custom width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "custom height in pixels")
	cmd.Flags().StringVar(&variant, "variant", "", "paired half: left or right")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip the cached composition")
	return cmd
}
