package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/project"
	"github.com/matzehuels/storeshots/pkg/server"
)

// serveCommand runs the HTTP API over the configured project store.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noCache     bool
		localImages bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the project store and the export pipeline over HTTP.

The store is the --projects file, or the [store] backend from the
configuration (a file, or MongoDB). Every mutation is saved immediately.

Clients must send images as data: URIs unless --allow-local-images is
given, which lets requests name files on this machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			backend, err := cfg.OpenStore(ctx, c.ProjectsPath)
			if err != nil {
				return err
			}
			defer backend.Close()

			store := project.NewStore(c.Logger)
			if err := store.Load(ctx, backend); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			defaults, err := c.defaultOptions()
			if err != nil {
				return err
			}
			srv := server.New(store, backend, runner, c.Logger)
			srv.Defaults = defaults
			srv.AllowLocalImages = localImages

			printInfo("Serving %d projects on %s", store.Len(), StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr, cfg.Server.ShutdownTimeout.Duration)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default [server] addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&localImages, "allow-local-images", false, "let clients point projects at files on this machine")
	return cmd
}
