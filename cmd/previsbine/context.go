package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"previsbine/internal/build"
	"previsbine/internal/config"
	"previsbine/internal/locate"
)

// buildFlags holds the command line overrides.
type buildFlags struct {
	mode       string
	startStage int
	noPrompt   bool
	keepFiles  bool
	useBSArch  bool
	bsarchPath string
	xeditPath  string
	gamePath   string
}

type commandContext struct {
	configFlag *string
	flags      *buildFlags
	locator    *locate.Locator

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, flags *buildFlags) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		flags:      flags,
	}
}

// ensureConfig loads the configuration once and layers the flags over it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyFlags(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlags(cfg *config.Config) error {
	f := c.flags
	if f == nil {
		return nil
	}
	overrides := []struct {
		value  string
		target *string
	}{
		{f.gamePath, &cfg.Paths.GameDir},
		{f.xeditPath, &cfg.Paths.XEditPath},
		{f.bsarchPath, &cfg.Paths.BSArchPath},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(o.value); v != "" {
			expanded, err := config.ExpandPath(v)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", v, err)
			}
			*o.target = expanded
		}
	}
	if mode := strings.TrimSpace(f.mode); mode != "" {
		if _, err := build.ParseMode(mode); err != nil {
			return err
		}
		cfg.Build.Mode = strings.ToLower(mode)
	}
	if f.useBSArch {
		cfg.Build.Archiver = build.BSArch.String()
	}
	if f.noPrompt {
		cfg.Build.NoPrompt = true
	}
	if f.keepFiles {
		cfg.Build.KeepFiles = true
	}
	return nil
}

// toolchain resolves every tool location, discovering what the
// configuration leaves blank.
func (c *commandContext) toolchain() (build.Toolchain, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return build.Toolchain{}, err
	}
	loc := c.locator
	if loc == nil {
		loc = locate.New()
	}
	xedit, err := loc.XEdit(cfg.Paths.XEditPath)
	if err != nil {
		return build.Toolchain{}, err
	}
	gameDir, err := loc.GameDir(cfg.Paths.GameDir)
	if err != nil {
		return build.Toolchain{}, err
	}
	return build.NewToolchain(gameDir, xedit, loc.BSArch(cfg.Paths.BSArchPath), cfg.ArchiverKind()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
