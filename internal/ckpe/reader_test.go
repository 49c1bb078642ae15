package ckpe_test

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"previsbine/internal/ckpe"
	"previsbine/internal/services"
)

func TestLoadPrefersPlatformExtended(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "CreationKitPlatformExtended.ini", "[Log]\nsOutputFile=CreationKit.log\n[CreationKit]\nbBSPointerHandleExtremly=true\n")
	write(t, fsys, "fallout4_test.ini", "[Log]\nOutputFile=legacy.log\n")

	settings, err := ckpe.Load(fsys)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.File != "CreationKitPlatformExtended.ini" {
		t.Fatalf("unexpected variant %q", settings.File)
	}
	if settings.LogSetting != "CreationKit.log" {
		t.Fatalf("unexpected log setting %q", settings.LogSetting)
	}
	if !settings.HandleLimitFound || !settings.HandleLimitEnabled {
		t.Fatalf("expected handle limit enabled, got %+v", settings)
	}
}

func TestLoadFallsBackToLegacy(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "fallout4_test.ini", "[Log]\nOutputFile = ck.log\n[CreationKit]\nBSHandleRefObjectPatch = 0\n")

	settings, err := ckpe.Load(fsys)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.File != "fallout4_test.ini" || settings.LogSetting != "ck.log" {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if !settings.HandleLimitFound || settings.HandleLimitEnabled {
		t.Fatalf("expected handle limit found but disabled, got %+v", settings)
	}
}

func TestLoadMissingKeys(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "CreationKitPlatformExtended.ini", "; empty\n[Log]\n")

	settings, err := ckpe.Load(fsys)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.LogSetting != "" || settings.HandleLimitFound {
		t.Fatalf("expected empty settings, got %+v", settings)
	}
}

func TestDetectWithoutSettings(t *testing.T) {
	_, err := ckpe.Detect(memfs.New())
	if !errors.Is(err, services.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing, got %v", err)
	}
}

func write(t *testing.T, fsys billy.Basic, name, content string) {
	t.Helper()
	if err := util.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
