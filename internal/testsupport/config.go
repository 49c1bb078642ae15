package testsupport

import (
	"path/filepath"
	"testing"

	"previsbine/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// All waits are zeroed so tool fakes complete immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.GameDir = filepath.Join(base, "Fallout 4")
	cfgVal.Paths.XEditPath = filepath.Join(base, "xEdit", "FO4Edit64.exe")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Timing = config.Timing{}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMode sets the build mode on the test config.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.Mode = mode
	}
}

// WithBSArch selects the BSArch back-end and points it at a stub executable.
func WithBSArch() ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "BSArch", "bsarch.exe")
		WriteText(b.t, path, "")
		b.cfg.Build.Archiver = "bsarch"
		b.cfg.Paths.BSArchPath = path
	}
}

// WithInstall lays down a complete game and xEdit installation at the
// configured paths.
func WithInstall(opts ...InstallOption) ConfigOption {
	return func(b *configBuilder) {
		NewInstall(b.t, b.cfg.Paths.GameDir, b.cfg.Paths.XEditPath, opts...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.GameDir)
}
