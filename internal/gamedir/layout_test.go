package gamedir_test

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"previsbine/internal/gamedir"
)

func newLayout(t *testing.T, files ...string) *gamedir.Layout {
	t.Helper()
	fs := memfs.New()
	for _, name := range files {
		if err := util.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return gamedir.New(fs)
}

func TestHasFilesSearchesSubdirectories(t *testing.T) {
	layout := newLayout(t,
		filepath.Join(gamedir.VisDir, "Commonwealth", "0000.UVD"),
		filepath.Join(gamedir.PrecombinedDir, "readme.txt"),
	)

	found, err := layout.HasFiles(gamedir.VisDir, gamedir.VisExtension)
	if err != nil || !found {
		t.Fatalf("expected vis file, got %v %v", found, err)
	}
	found, err = layout.HasFiles(gamedir.PrecombinedDir, gamedir.MeshExtension)
	if err != nil || found {
		t.Fatalf("expected no meshes, got %v %v", found, err)
	}
	found, err = layout.HasFiles(filepath.Join("Data", "missing"), "")
	if err != nil || found {
		t.Fatalf("expected missing dir to be empty, got %v %v", found, err)
	}
}

func TestRemoveHelpersIgnoreMissing(t *testing.T) {
	layout := newLayout(t, filepath.Join("Data", gamedir.CombinedObjectsPlugin))
	if err := layout.RemoveFile(layout.Data("nope.esp")); err != nil {
		t.Fatalf("RemoveFile on missing file: %v", err)
	}
	if err := layout.RemoveDir(gamedir.VisDir); err != nil {
		t.Fatalf("RemoveDir on missing dir: %v", err)
	}
	if err := layout.RemoveFile(layout.Data(gamedir.CombinedObjectsPlugin)); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if layout.DataExists(gamedir.CombinedObjectsPlugin) {
		t.Fatal("expected file removed")
	}
}

func TestDisableComponentsRestoresOnRelease(t *testing.T) {
	layout := newLayout(t, "d3d11.dll", "dxgi.dll", "Fallout4.exe")

	release, err := layout.DisableComponents(gamedir.GraphicsComponents)
	if err != nil {
		t.Fatalf("DisableComponents: %v", err)
	}
	if layout.Exists("d3d11.dll") || !layout.Exists("d3d11.dll"+gamedir.DisabledSuffix) {
		t.Fatal("expected d3d11.dll to be disabled")
	}
	if !layout.Exists("dxgi.dll" + gamedir.DisabledSuffix) {
		t.Fatal("expected dxgi.dll to be disabled")
	}
	if layout.Exists("d3d9.dll" + gamedir.DisabledSuffix) {
		t.Fatal("absent components must not be created")
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !layout.Exists("d3d11.dll") || !layout.Exists("dxgi.dll") {
		t.Fatal("expected components restored")
	}
	if err := release(); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}
}

func TestRestoreComponentsAfterCrash(t *testing.T) {
	layout := newLayout(t, "d3d11.dll"+gamedir.DisabledSuffix, "dxgi.dll", "dxgi.dll"+gamedir.DisabledSuffix)

	restored, err := layout.RestoreComponents(gamedir.GraphicsComponents)
	if err != nil {
		t.Fatalf("RestoreComponents: %v", err)
	}
	if len(restored) != 1 || restored[0] != "d3d11.dll" {
		t.Fatalf("unexpected restored set %v", restored)
	}
	if !layout.Exists("d3d11.dll") {
		t.Fatal("expected d3d11.dll restored")
	}
	if !layout.Exists("dxgi.dll" + gamedir.DisabledSuffix) {
		t.Fatal("occupied name must leave the disabled copy in place")
	}
}
