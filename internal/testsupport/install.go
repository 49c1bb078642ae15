package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Script names mirrored here to avoid an import cycle with the xedit package.
var batchScripts = []string{
	"Batch_FO4MergeCombinedObjectsAndCheck.pas",
	"Batch_FO4MergePreVisAndAutoUpdateRefr.pas",
}

// InstallOption customizes the installation fixture.
type InstallOption func(*installSpec)

type installSpec struct {
	legacyCKPE    bool
	ckpeBody      string
	scriptVersion int
	omit          map[string]bool
}

// WithLegacyCKPE writes fallout4_test.ini instead of
// CreationKitPlatformExtended.ini.
func WithLegacyCKPE() InstallOption {
	return func(s *installSpec) { s.legacyCKPE = true }
}

// WithCKPEBody replaces the extender settings file content.
func WithCKPEBody(body string) InstallOption {
	return func(s *installSpec) { s.ckpeBody = body }
}

// WithScriptVersion sets the BatchVersion written into both xEdit scripts.
// A negative version omits the BatchVersion line.
func WithScriptVersion(version int) InstallOption {
	return func(s *installSpec) { s.scriptVersion = version }
}

// Without skips writing the named fixture file: a game-root relative path, a
// batch script name, or "xedit" for the xEdit executable.
func Without(rel string) InstallOption {
	return func(s *installSpec) { s.omit[filepath.FromSlash(rel)] = true }
}

// NewInstall writes the executables, extender settings, xEdit scripts and an
// empty Data directory a build expects.
func NewInstall(t testing.TB, gameDir, xeditPath string, opts ...InstallOption) {
	t.Helper()

	spec := &installSpec{scriptVersion: 10, omit: map[string]bool{}}
	for _, opt := range opts {
		opt(spec)
	}

	ckpeFile := "CreationKitPlatformExtended.ini"
	body := "[Log]\nsOutputFile=CreationKit.log\n[CreationKit]\nbBSPointerHandleExtremly=true\n"
	if spec.legacyCKPE {
		ckpeFile = "fallout4_test.ini"
		body = "[Log]\nOutputFile=CreationKit.log\n[CreationKit]\nBSHandleRefObjectPatch=1\n"
	}
	if spec.ckpeBody != "" {
		body = spec.ckpeBody
	}

	files := []string{
		"Fallout4.exe",
		"CreationKit.exe",
		"winhttp.dll",
		filepath.Join("tools", "archive2", "archive2.exe"),
	}
	for _, rel := range files {
		if !spec.omit[rel] {
			WriteText(t, filepath.Join(gameDir, rel), "")
		}
	}
	if !spec.omit[ckpeFile] {
		WriteText(t, filepath.Join(gameDir, ckpeFile), body)
	}
	if err := os.MkdirAll(filepath.Join(gameDir, "Data"), 0o755); err != nil {
		t.Fatalf("mkdir Data: %v", err)
	}

	if !spec.omit["xedit"] {
		WriteText(t, xeditPath, "")
	}
	scriptDir := filepath.Join(filepath.Dir(xeditPath), "Edit Scripts")
	for _, name := range batchScripts {
		if spec.omit[name] {
			continue
		}
		content := "unit userscript;\n"
		if spec.scriptVersion >= 0 {
			content += fmt.Sprintf("const\n  BatchVersion = %d;\n", spec.scriptVersion)
		}
		WriteText(t, filepath.Join(scriptDir, name), content)
	}
}
