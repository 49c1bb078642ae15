package deps

import (
	"os"
	"path/filepath"

	"previsbine/internal/build"
)

// CKPELoader is the DLL the Creation Kit extender injects through.
const CKPELoader = "winhttp.dll"

// ToolRequirements lists the executables a build needs, in verification
// order.
func ToolRequirements(tc build.Toolchain) []Requirement {
	return []Requirement{
		{Name: "xEdit", Path: tc.XEdit, Description: "Merges precombine and previs data"},
		{Name: "Fallout 4", Path: tc.GameExecutable(), Description: "Game installation"},
		{Name: "Creation Kit", Path: tc.CreationKit, Description: "Generates precombines and previs"},
		{
			Name:        "Creation Kit Platform Extended",
			Path:        filepath.Join(tc.GameDir, CKPELoader),
			Description: "Required for a successful headless Creation Kit run",
		},
		{Name: "Archive2", Path: tc.Archive2, Description: "Creation Kit archiver"},
	}
}

// BSArchRequirement describes the optional alternative archiver.
func BSArchRequirement(path string) Requirement {
	return Requirement{Name: "BSArch", Path: path, Description: "Alternative archiver"}
}

// bsarchCandidates are probed relative to a base directory when no BSArch
// path is configured.
var bsarchCandidates = []string{
	filepath.Join("tools", "BSArch", "bsarch.exe"),
	filepath.Join("BSArch", "bsarch.exe"),
	"bsarch.exe",
}

// ResolveBSArch returns the first BSArch executable found under baseDir.
func ResolveBSArch(baseDir string) (string, bool) {
	for _, candidate := range bsarchCandidates {
		path := filepath.Join(baseDir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
