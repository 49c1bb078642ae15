package services_test

import (
	"context"
	"testing"

	"previsbine/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "GeneratePrevis")
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPlugin(ctx, "MyMod.esp")

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "GeneratePrevis" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
	if plugin, ok := services.PluginFromContext(ctx); !ok || plugin != "MyMod.esp" {
		t.Fatalf("unexpected plugin: %v %v", plugin, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
