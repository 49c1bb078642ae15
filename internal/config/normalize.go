package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBuild()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	envFallback(&c.Paths.GameDir, "FALLOUT4_PATH")
	envFallback(&c.Paths.XEditPath, "FO4EDIT_PATH")
	envFallback(&c.Paths.BSArchPath, "BSARCH_PATH")
	envFallback(&c.Paths.LogDir, "PREVISBINE_LOG_DIR")
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(os.TempDir(), defaultLogDirName)
	}

	var err error
	if c.Paths.GameDir, err = expandPath(strings.TrimSpace(c.Paths.GameDir)); err != nil {
		return fmt.Errorf("paths.game_dir: %w", err)
	}
	if c.Paths.XEditPath, err = expandPath(strings.TrimSpace(c.Paths.XEditPath)); err != nil {
		return fmt.Errorf("paths.xedit_path: %w", err)
	}
	if c.Paths.BSArchPath, err = expandPath(strings.TrimSpace(c.Paths.BSArchPath)); err != nil {
		return fmt.Errorf("paths.bsarch_path: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBuild() {
	c.Build.Mode = strings.ToLower(strings.TrimSpace(c.Build.Mode))
	if c.Build.Mode == "" {
		c.Build.Mode = defaultMode
	}
	c.Build.Archiver = strings.ToLower(strings.TrimSpace(c.Build.Archiver))
	if c.Build.Archiver == "" {
		c.Build.Archiver = defaultArchiver
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envFallback(target *string, key string) {
	if strings.TrimSpace(*target) != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
}
