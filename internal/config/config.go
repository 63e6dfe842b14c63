package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/evanschultz/ticklist/internal/domain"
)

// DefaultBaseURL points at a locally running `ticklist serve`.
const DefaultBaseURL = "http://127.0.0.1:8080"

type Config struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Page    int    `toml:"page"`
	Type    string `toml:"type"`
	// Timeout is a Go duration string; empty or "0" disables it.
	Timeout string `toml:"timeout"`
}

type UIConfig struct {
	HideCompleted bool `toml:"hide_completed"`
	DoubleClickMS int  `toml:"double_click_ms"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	Bind         string `toml:"bind"`
	DatabasePath string `toml:"database_path"`
	MCPEndpoint  string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Page:    1,
			Type:    string(domain.TaskFilterAll),
			Timeout: "",
		},
		UI: UIConfig{
			HideCompleted: false,
			DoubleClickMS: 400,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".ticklist/log",
			},
		},
		Server: ServerConfig{
			Bind:         "127.0.0.1:8080",
			DatabasePath: dbPath,
			MCPEndpoint:  "/mcp",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if c.API.Page < 1 {
		return fmt.Errorf("api.page must be >= 1, got %d", c.API.Page)
	}
	if _, err := domain.ParseTaskFilter(c.API.Type); err != nil {
		return fmt.Errorf("invalid api.type: %q", c.API.Type)
	}
	if _, err := parseTimeout(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid api.timeout: %q", c.API.Timeout)
	}
	if c.UI.DoubleClickMS <= 0 {
		return fmt.Errorf("ui.double_click_ms must be > 0, got %d", c.UI.DoubleClickMS)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when enabled")
	}
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	if strings.TrimSpace(c.Server.DatabasePath) == "" {
		return errors.New("server.database_path is required")
	}
	if !strings.HasPrefix(strings.TrimSpace(c.Server.MCPEndpoint), "/") {
		return fmt.Errorf("server.mcp_endpoint must start with /: %q", c.Server.MCPEndpoint)
	}
	return nil
}

// APITimeout returns the per-call timeout; zero means none.
func (c Config) APITimeout() time.Duration {
	d, err := parseTimeout(c.API.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DoubleClickWindow returns the maximum gap between the two clicks of a double-click.
func (c Config) DoubleClickWindow() time.Duration {
	return time.Duration(c.UI.DoubleClickMS) * time.Millisecond
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", d)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
