package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Rendering engines.
const (
	EngineChrome = "chrome" // headless Chrome rasterizer
	EngineVector = "vector" // native fpdf drawing, no browser needed
)

// ValidEngines lists the supported rendering engines.
var ValidEngines = []string{EngineChrome, EngineVector}

// Config holds all hosereport configuration.
type Config struct {
	Report  ReportConfig  `yaml:"report"`
	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ReportConfig configures the export pipeline.
type ReportConfig struct {
	PageSize  int     `yaml:"page_size"`  // items per sheet
	Engine    string  `yaml:"engine"`     // chrome, vector
	OutputDir string  `yaml:"output_dir"` // where downloads land
	Scale     float64 `yaml:"scale"`      // device scale factor for rasterization
}

// BrowserConfig configures the headless Chrome rasterizer.
type BrowserConfig struct {
	DebuggerURL   string   `yaml:"debugger_url"` // attach instead of launching
	Launch        []string `yaml:"launch"`       // binary followed by flags
	Headless      bool     `yaml:"headless"`
	RenderTimeout string   `yaml:"render_timeout"` // per page
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                 string `yaml:"addr"`
	MaxConcurrentExports int    `yaml:"max_concurrent_exports"`
	ReadTimeout          string `yaml:"read_timeout"`
	WriteTimeout         string `yaml:"write_timeout"`
	MaxBodyBytes         int64  `yaml:"max_body_bytes"`
}

// StoreConfig configures the export history database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"` // empty disables history
}

// WatchConfig configures the input directory watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			PageSize:  8,
			Engine:    EngineChrome,
			OutputDir: ".",
			Scale:     2,
		},
		Browser: BrowserConfig{
			Headless:      true,
			RenderTimeout: "30s",
		},
		Server: ServerConfig{
			Addr:                 ":8085",
			MaxConcurrentExports: 2,
			ReadTimeout:          "30s",
			WriteTimeout:         "120s",
			MaxBodyBytes:         8 << 20,
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join("data", "hosereport.db"),
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults when the file doesn't exist
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("HOSEREPORT_CHROME_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if bin := os.Getenv("HOSEREPORT_CHROME_BIN"); bin != "" {
		c.Browser.Launch = append([]string{bin}, c.launchFlags()...)
	}
	if path := os.Getenv("HOSEREPORT_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if addr := os.Getenv("HOSEREPORT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if dir := os.Getenv("HOSEREPORT_OUTPUT_DIR"); dir != "" {
		c.Report.OutputDir = dir
	}
	if engine := os.Getenv("HOSEREPORT_ENGINE"); engine != "" {
		c.Report.Engine = engine
	}
	if level := os.Getenv("HOSEREPORT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("HOSEREPORT_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
}

func (c *Config) launchFlags() []string {
	if len(c.Browser.Launch) > 1 {
		return c.Browser.Launch[1:]
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validEngine := false
	for _, e := range ValidEngines {
		if c.Report.Engine == e {
			validEngine = true
			break
		}
	}
	if !validEngine {
		return fmt.Errorf("invalid report engine: %s (valid: %v)", c.Report.Engine, ValidEngines)
	}
	if c.Report.PageSize <= 0 {
		return fmt.Errorf("report page_size must be positive, got %d", c.Report.PageSize)
	}
	if c.Report.Scale <= 0 {
		return fmt.Errorf("report scale must be positive, got %v", c.Report.Scale)
	}
	if c.Server.MaxConcurrentExports <= 0 {
		return fmt.Errorf("server max_concurrent_exports must be positive, got %d", c.Server.MaxConcurrentExports)
	}
	return nil
}

// GetRenderTimeout returns the per-page render timeout as a duration.
func (c *Config) GetRenderTimeout() time.Duration {
	return parseDuration(c.Browser.RenderTimeout, 30*time.Second)
}

// GetReadTimeout returns the HTTP read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 120*time.Second)
}

// GetDebounce returns the watcher debounce window.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Watch.Debounce, 500*time.Millisecond)
}

// IsHistoryEnabled returns whether exports are recorded.
func (c *Config) IsHistoryEnabled() bool {
	return c.Store.DatabasePath != ""
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
