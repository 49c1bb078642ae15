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

	"previsbine/internal/build"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the game, the external tools, and the log directory.
type Paths struct {
	GameDir    string `toml:"game_dir"`
	XEditPath  string `toml:"xedit_path"`
	BSArchPath string `toml:"bsarch_path"`
	LogDir     string `toml:"log_dir"`
}

// Build holds the defaults for a build run. Command line flags override them.
type Build struct {
	Mode      string `toml:"mode"`
	Archiver  string `toml:"archiver"`
	KeepFiles bool   `toml:"keep_files"`
	NoPrompt  bool   `toml:"no_prompt"`
}

// Timing contains the waits around the external tools, in seconds.
//
// SettleDelay runs after every Creation Kit exit before its output is checked.
// ExtractSettle runs after an archive is unpacked for merging. ScriptSettle
// runs after the xEdit log appears and before xEdit is stopped, and
// ScriptExitDelay after it has been stopped. A zero LogWaitTimeout waits for
// the xEdit log indefinitely.
type Timing struct {
	SettleDelay     int `toml:"settle_delay_seconds"`
	ExtractSettle   int `toml:"extract_settle_seconds"`
	ScriptSettle    int `toml:"script_settle_seconds"`
	ScriptExitDelay int `toml:"script_exit_delay_seconds"`
	LogPollInterval int `toml:"log_poll_interval_seconds"`
	LogWaitTimeout  int `toml:"log_wait_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for previsbine.
//
// Configuration sections:
//   - Paths: game root, xEdit, BSArch, and log locations
//   - Build: default mode, archiver, and run flags
//   - Timing: settle delays and log polling around the external tools
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Build   Build   `toml:"build"`
	Timing  Timing  `toml:"timing"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "previsbine", "config.toml"), nil
	}
	return expandPath("~/.config/previsbine/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("previsbine.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// BuildMode returns the parsed default build mode.
func (c *Config) BuildMode() build.Mode {
	mode, _ := build.ParseMode(c.Build.Mode)
	return mode
}

// ArchiverKind returns the parsed default archiver.
func (c *Config) ArchiverKind() build.Archiver {
	archiver, _ := build.ParseArchiver(c.Build.Archiver)
	return archiver
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

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
