package cli

import (
	"context"
	"image"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/buildinfo"
	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/config"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/observability"
	"github.com/matzehuels/storeshots/pkg/pipeline"
	"github.com/matzehuels/storeshots/pkg/project"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "storeshots"

	// imageCacheLimit bounds the decoded screenshots kept in memory.
	imageCacheLimit = 32
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty means the default location,
	// which may be missing.
	ConfigPath string

	// ProjectsPath is the --projects flag. Empty means the [store] path.
	ProjectsPath string

	cfg    *config.Config
	hooked bool

	// rasterize overrides the exporter's rasterizer in tests.
	rasterize func(*compose.Tree) (*image.NRGBA, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes export
// and cache events into the log.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel && !c.hooked {
		observability.SetExportHooks(&logExportHooks{logger: c.Logger})
		observability.SetCacheHooks(&logCacheHooks{logger: c.Logger})
		observability.SetHTTPHooks(&logHTTPHooks{logger: c.Logger})
		c.hooked = true
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "storeshots composes App Store and Play Store screenshots",
		Long:         `storeshots places app screenshots in device frames on styled backgrounds with headline text, feature pills and stat badges, and exports them at exact store resolutions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/storeshots/config.toml)")
	root.PersistentFlags().StringVarP(&c.ProjectsPath, "projects", "p", "", "projects file: .toml, .yaml or .json (default [store] path)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.duplicateCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.exportAllCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.captureCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadConfig loads the configuration once. An explicit --config must exist.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	path, mustExist := c.ConfigPath, true
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			d := config.Default()
			c.cfg = &d
			return d, nil
		}
		mustExist = false
	}
	cfg, err := config.Load(path, mustExist)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.cfg = &cfg
	return cfg, nil
}

// newExporter builds the renderer and exporter from the configuration.
func (c *CLI) newExporter(cfg config.Config) *export.Exporter {
	r := compose.NewRenderer(cfg.Calibration(), imagesrc.NewLoader(imageCacheLimit), nil, c.Logger)
	e := export.NewExporter(r, nil, c.Logger)
	e.Target.Rasterize = c.rasterize
	e.PairDelay = cfg.Render.PairDelay.Duration
	return e
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cc, err := cfg.OpenCache(ctx, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		cc = nil
	}
	r := pipeline.NewRunner(cc, cfg.Keyer(), c.newExporter(cfg), c.Logger)
	r.ArtifactTTL = cfg.Cache.TTL.Duration
	return r, nil
}

// defaultOptions returns the export options configured in [export].
func (c *CLI) defaultOptions() (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Size:    cfg.Export.Size,
		Format:  cfg.Export.Format,
		Quality: cfg.Export.Quality,
		Logger:  c.Logger,
	}, nil
}

// =============================================================================
// Project Files
// =============================================================================

// projectFile is a store loaded from a projects file.
type projectFile struct {
	store   *project.Store
	backend project.Backend
}

// openProjects loads the store from b.
func (c *CLI) openProjects(ctx context.Context, b project.Backend) (*projectFile, error) {
	s := project.NewStore(c.Logger)
	if err := s.Load(ctx, b); err != nil {
		b.Close()
		return nil, err
	}
	return &projectFile{store: s, backend: b}, nil
}

func (f *projectFile) save(ctx context.Context) error {
	return f.store.Save(ctx, f.backend)
}

func (f *projectFile) close() error {
	return f.backend.Close()
}

// resolve returns project id, or the selected project when id is empty.
func (f *projectFile) resolve(id string) (project.Project, error) {
	if id == "" {
		p, ok := f.store.Active()
		if !ok {
			return project.Project{}, errNoProject
		}
		return p, nil
	}
	p, ok := f.store.Get(id)
	if !ok {
		return project.Project{}, errProjectNotFound(id)
	}
	return p, nil
}
