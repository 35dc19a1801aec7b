package cli

import (
	"github.com/spf13/cobra"

	"github.com/erdraw/erdraw/internal/config"
	"github.com/erdraw/erdraw/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and frontend server",
		Long: `Run the HTTP server that powers the web frontend.

The server exposes the parse, render, chat, and diagram storage APIs and
serves the built frontend assets. Configuration is read from a TOML file;
a missing file falls back to in-memory storage and a local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			srv, err := server.New(cmd.Context(), cfg, c.Logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "erdraw.toml", "path to the TOML configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")

	return cmd
}
