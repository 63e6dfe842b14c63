package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/evanschultz/ticklist/internal/adapters/server"
	"github.com/evanschultz/ticklist/internal/adapters/server/common"
	"github.com/evanschultz/ticklist/internal/adapters/storage/sqlite"
	"github.com/evanschultz/ticklist/internal/app"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		bind   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference task API over a local SQLite database",
		Long: `Serve the task REST API under /api/task and an MCP endpoint for tool clients.

Examples:
  ticklist serve
  ticklist serve --bind 0.0.0.0:9090 --db ./tasks.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.resolve("serve")
			if err != nil {
				return err
			}
			defer env.close(cmd.ErrOrStderr())
			if cmd.Flags().Changed("bind") {
				env.cfg.Server.Bind = bind
			}
			if cmd.Flags().Changed("db") {
				env.cfg.Server.DatabasePath = dbPath
			}
			logger := env.logger
			gin.SetMode(gin.ReleaseMode)

			logger.Info("opening sqlite repository", "db_path", env.cfg.Server.DatabasePath)
			repo, err := sqlite.Open(env.cfg.Server.DatabasePath)
			if err != nil {
				logger.Error("sqlite open failed", "db_path", env.cfg.Server.DatabasePath, "err", err)
				return fmt.Errorf("open sqlite repository: %w", err)
			}
			defer func() {
				if closeErr := repo.Close(); closeErr != nil {
					logger.Warn("sqlite close failed", "db_path", env.cfg.Server.DatabasePath, "err", closeErr)
				}
			}()

			svc := app.NewService(repo, time.Now, app.ServiceConfig{})
			logger.Debug("application service initialized", "page_size", svc.PageSize())

			err = server.Run(cmd.Context(), server.Config{
				HTTPBind:      env.cfg.Server.Bind,
				MCPEndpoint:   env.cfg.Server.MCPEndpoint,
				ServerName:    env.appName,
				ServerVersion: version,
			}, server.Dependencies{
				Tasks:  common.NewAppServiceAdapter(svc),
				Logger: logger,
				Ready:  repo.Ping,
			})
			if err != nil {
				logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run server: %w", err)
			}
			logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides server.bind)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides server.database_path)")
	return cmd
}
