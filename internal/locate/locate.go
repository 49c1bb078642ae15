package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"previsbine/internal/deps"
	"previsbine/internal/services"
)

// ErrNotFound reports that a registry lookup had no answer.
var ErrNotFound = errors.New("not found")

// XEditCandidates are probed in the working directory, in order.
var XEditCandidates = []string{"FO4Edit64.exe", "xEdit64.exe", "FO4Edit.exe", "xEdit.exe"}

// Registry answers installation lookups. Only Windows has a real one.
type Registry interface {
	GameDir() (string, error)
	XEdit() (string, error)
}

// Locator finds tool installations the operator did not configure.
type Locator struct {
	WorkDir  string
	Registry Registry
}

// New returns a locator rooted at the process working directory.
func New() *Locator {
	wd, _ := os.Getwd()
	return &Locator{WorkDir: wd, Registry: systemRegistry()}
}

// XEdit returns configured when set, else the first xEdit executable in the
// working directory, else the registered script handler.
func (l *Locator) XEdit(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}
	if l.WorkDir != "" {
		for _, name := range XEditCandidates {
			path := filepath.Join(l.WorkDir, name)
			if fileExists(path) {
				return path, nil
			}
		}
	}
	if l.Registry != nil {
		if path, err := l.Registry.XEdit(); err == nil && path != "" {
			return strings.ReplaceAll(path, `"`, ""), nil
		}
	}
	return "", services.Wrap(services.ErrConfigurationMissing, "", "locate xEdit",
		"FO4Edit/xEdit not found, set paths.xedit_path or pass --fo4edit-path", nil)
}

// GameDir returns configured when set, else the registered installation.
func (l *Locator) GameDir(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}
	if l.Registry != nil {
		if path, err := l.Registry.GameDir(); err == nil && path != "" {
			return path, nil
		}
	}
	return "", services.Wrap(services.ErrConfigurationMissing, "", "locate Fallout 4",
		"installation not found, set paths.game_dir or pass --fallout4-path", nil)
}

// BSArch returns configured when set, else a copy found under the working
// directory. An empty result is left for verification to report.
func (l *Locator) BSArch(configured string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if l.WorkDir == "" {
		return ""
	}
	path, _ := deps.ResolveBSArch(l.WorkDir)
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type noRegistry struct{}

func (noRegistry) GameDir() (string, error) { return "", fmt.Errorf("fallout 4 registry key: %w", ErrNotFound) }
func (noRegistry) XEdit() (string, error) { return "", fmt.Errorf("xedit registry key: %w", ErrNotFound) }
