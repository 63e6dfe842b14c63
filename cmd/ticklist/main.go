package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/evanschultz/ticklist/internal/adapters/taskapi"
	"github.com/evanschultz/ticklist/internal/app"
	"github.com/evanschultz/ticklist/internal/config"
	"github.com/evanschultz/ticklist/internal/domain"
	"github.com/evanschultz/ticklist/internal/platform"
	"github.com/evanschultz/ticklist/internal/tui"
)

var version = "dev"

// program is the part of tea.Program the TUI command uses.
type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the command tree for args. fang reports errors on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	apiURL     string
	appName    string
	devMode    bool
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TICKLIST_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := strings.TrimSpace(os.Getenv("TICKLIST_APP_NAME"))
	if defaultApp == "" {
		defaultApp = platform.DefaultAppName
	}

	root := &cobra.Command{
		Use:   "ticklist",
		Short: "A terminal checklist backed by a remote task API",
		Long: `ticklist shows one page of tasks from a remote task API and lets you add,
complete, edit and delete them in place.

Run "ticklist serve" for a local SQLite-backed API to point it at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.resolve("tui")
			if err != nil {
				return err
			}
			defer env.close(stderr)
			return runTUI(env)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env TICKLIST_CONFIG)")
	flags.StringVar(&opts.apiURL, "api", "", "task API base URL (env TICKLIST_API_URL)")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newListCommand(opts),
		newServeCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newPathsCommand(opts),
	)
	return root
}

// runtimeEnv is the configuration and logging resolved for one command run.
type runtimeEnv struct {
	appName    string
	devMode    bool
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

func (o *rootOptions) resolve(command string) (*runtimeEnv, error) {
	appName := platform.ResolveAppName(o.appName, false)
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := firstNonEmpty(o.configPath, os.Getenv("TICKLIST_CONFIG"), paths.ConfigPath)
	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if apiURL := firstNonEmpty(o.apiURL, os.Getenv("TICKLIST_API_URL")); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	logger, err := newRuntimeLogger(o.stderr, appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", paths.DBPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	return &runtimeEnv{
		appName:    appName,
		devMode:    o.devMode,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func (e *runtimeEnv) close(stderr io.Writer) {
	if err := e.logger.Close(); err != nil && e.logger.ConsoleEnabled() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

func (e *runtimeEnv) newTaskClient() (*taskapi.Client, error) {
	client, err := taskapi.New(taskapi.Config{
		BaseURL:   e.cfg.API.BaseURL,
		Timeout:   e.cfg.APITimeout(),
		UserAgent: "ticklist/" + version,
	})
	if err != nil {
		return nil, fmt.Errorf("configure task api client: %w", err)
	}
	return client, nil
}

func (e *runtimeEnv) controllerConfig() (app.ControllerConfig, error) {
	filter, err := domain.ParseTaskFilter(e.cfg.API.Type)
	if err != nil {
		return app.ControllerConfig{}, err
	}
	return app.ControllerConfig{Page: e.cfg.API.Page, Filter: filter}, nil
}

func runTUI(env *runtimeEnv) error {
	client, err := env.newTaskClient()
	if err != nil {
		return err
	}
	ctrlCfg, err := env.controllerConfig()
	if err != nil {
		return err
	}

	// Console output would corrupt the alt screen; the dev file keeps receiving events.
	env.logger.SetConsoleEnabled(false)
	ctrl := app.NewController(client, env.logger, time.Now, ctrlCfg)
	m := tui.NewModel(
		ctrl,
		tui.WithHideCompleted(env.cfg.UI.HideCompleted),
		tui.WithDoubleClickWindow(env.cfg.DoubleClickWindow()),
	)

	env.logger.Info("starting tui program loop", "api", env.cfg.API.BaseURL, "page", ctrlCfg.Page, "type", ctrlCfg.Filter)
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			appName := platform.ResolveAppName(opts.appName, false)
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: appName,
				DevMode: opts.devMode,
			})
			if err != nil {
				return err
			}
			configPath := firstNonEmpty(opts.configPath, os.Getenv("TICKLIST_CONFIG"), paths.ConfigPath)
			stdout := opts.stdout
			_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// parseBoolEnv reports the parsed value of name and whether it was set to a valid bool.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
