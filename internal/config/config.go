package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Identity contains settings for canonical identifier generation.
type Identity struct {
	MaxLength     int `toml:"max_length"`
	MaxSlugLength int `toml:"max_slug_length"`
	SuffixLength  int `toml:"suffix_length"`
}

// Validation contains the weighted-scoring configuration for image checks.
type Validation struct {
	AcceptThreshold float64            `toml:"accept_threshold"`
	ReviewThreshold float64            `toml:"review_threshold"`
	Weights         map[string]float64 `toml:"weights"`
}

// Review contains review-queue policy: SLA windows, priority assignment,
// and how stale assignments are handled.
type Review struct {
	DefaultSLAHours int `toml:"default_sla_hours"`
	// SLAHoursByPriority maps priority tier (1 = most urgent) to the SLA
	// window in hours; index 0 corresponds to tier 1.
	SLAHoursByPriority   []int `toml:"sla_hours_by_priority"`
	AutoPriority         bool  `toml:"auto_priority"`
	RouteAutoRejected    bool  `toml:"route_auto_rejected"`
	StaleAssignmentHours int   `toml:"stale_assignment_hours"`
	ExtendSLAOnRelease   bool  `toml:"extend_sla_on_release"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	SweepInterval       int `toml:"sweep_interval"`
	StoreTimeoutSeconds int `toml:"store_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	Topic          string `toml:"topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Review         bool   `toml:"review"`
	SLA            bool   `toml:"sla"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for prodpipe.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and the daemon API bind address
//   - Identity: canonical SKU length and collision-suffix settings
//   - Validation: per-check weights and accept/review thresholds
//   - Review: SLA windows, priority ladder, reassignment policy
//   - Workflow: daemon sweep interval and store operation timeout
//   - Logging: log format and level
//   - Notifications: ntfy webhook settings
type Config struct {
	Paths         Paths         `toml:"paths"`
	Identity      Identity      `toml:"identity"`
	Validation    Validation    `toml:"validation"`
	Review        Review        `toml:"review"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/prodpipe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. Validation failures here cover
// the startup-time configuration errors, including a weight table that sums to
// zero, which must never surface as a per-request scoring error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// A weights table in the file replaces the defaults wholesale rather
		// than merging key by key; normalize restores defaults when absent.
		cfg.Validation.Weights = nil

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("prodpipe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon and CLI operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the provided path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
