package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanschultz/ticklist/internal/adapters/storage/sqlite"
	"github.com/evanschultz/ticklist/internal/app"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var (
		outPath string
		dbPath  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task in the serve database as a JSON snapshot",
		Example: `  ticklist export --out tasks.json
  ticklist export --db ./tasks.db > tasks.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, svc, closeRepo, err := opts.openSnapshotService("export", cmd, dbPath)
			if err != nil {
				return err
			}
			defer env.close(cmd.ErrOrStderr())
			defer closeRepo()

			snap, err := svc.ExportSnapshot(cmd.Context())
			if err != nil {
				env.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			encoded = append(encoded, '\n')

			if strings.TrimSpace(outPath) == "" || outPath == "-" {
				_, err = opts.stdout.Write(encoded)
				return err
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write snapshot file: %w", err)
			}
			env.logger.Info("snapshot exported", "path", outPath, "tasks", len(snap.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides server.database_path)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		inPath string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON snapshot into the serve database",
		Example: `  ticklist import --in tasks.json
  cat tasks.json | ticklist import --in -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			snap, err := readSnapshot(cmd.InOrStdin(), inPath)
			if err != nil {
				return err
			}

			env, svc, closeRepo, err := opts.openSnapshotService("import", cmd, dbPath)
			if err != nil {
				return err
			}
			defer env.close(cmd.ErrOrStderr())
			defer closeRepo()

			if err := svc.ImportSnapshot(cmd.Context(), snap); err != nil {
				env.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("import snapshot: %w", err)
			}
			env.logger.Info("snapshot imported", "path", inPath, "tasks", len(snap.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "snapshot file path ('-' for stdin)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides server.database_path)")
	return cmd
}

func readSnapshot(stdin io.Reader, path string) (app.Snapshot, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return app.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return snap, nil
}

// openSnapshotService resolves config and opens the sqlite database that
// serve would use. The returned func closes the repository.
func (o *rootOptions) openSnapshotService(command string, cmd *cobra.Command, dbPath string) (*runtimeEnv, *app.Service, func(), error) {
	env, err := o.resolve(command)
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Changed("db") {
		env.cfg.Server.DatabasePath = dbPath
	}
	repo, err := sqlite.Open(env.cfg.Server.DatabasePath)
	if err != nil {
		env.logger.Error("sqlite open failed", "db_path", env.cfg.Server.DatabasePath, "err", err)
		env.close(cmd.ErrOrStderr())
		return nil, nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	closeRepo := func() {
		if closeErr := repo.Close(); closeErr != nil {
			env.logger.Warn("sqlite close failed", "db_path", env.cfg.Server.DatabasePath, "err", closeErr)
		}
	}
	return env, app.NewService(repo, time.Now, app.ServiceConfig{}), closeRepo, nil
}
