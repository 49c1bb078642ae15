package build

import (
	"path/filepath"

	"previsbine/internal/ckpe"
	"previsbine/internal/plugin"
)

// Toolchain holds the resolved locations of the external tools.
type Toolchain struct {
	GameDir     string
	XEdit       string
	CreationKit string
	Archive2    string
	BSArch      string
	Archiver    Archiver

	// CKPE is filled in by environment verification.
	CKPE ckpe.Settings
}

// NewToolchain derives the Creation Kit and Archive2 locations from the game
// root.
func NewToolchain(gameDir, xedit, bsarch string, archiver Archiver) Toolchain {
	return Toolchain{
		GameDir:     gameDir,
		XEdit:       xedit,
		CreationKit: filepath.Join(gameDir, "CreationKit.exe"),
		Archive2:    filepath.Join(gameDir, "tools", "archive2", "archive2.exe"),
		BSArch:      bsarch,
		Archiver:    archiver,
	}
}

// GameExecutable is the game binary expected in the game root.
func (t Toolchain) GameExecutable() string {
	return filepath.Join(t.GameDir, "Fallout4.exe")
}

// ScriptDir is where xEdit looks for its Pascal scripts.
func (t Toolchain) ScriptDir() string {
	return filepath.Join(filepath.Dir(t.XEdit), "Edit Scripts")
}

// RunContext aggregates everything a single build run needs.
type RunContext struct {
	Mode      Mode
	Plugin    plugin.Identity
	Tools     Toolchain
	RunLog    string
	ScriptLog string
	KeepFiles bool
	NoPrompt  bool
}
