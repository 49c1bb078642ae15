package workflow

import (
	"context"
	"log/slog"

	"previsbine/internal/build"
	"previsbine/internal/logging"
	"previsbine/internal/services"
)

// withStageContext stamps the stage onto ctx so tool clients and log
// handlers pick it up.
func withStageContext(ctx context.Context, stage build.Stage) context.Context {
	return services.WithStage(ctx, stage.String())
}

func (m *Manager) stageLogger(ctx context.Context) *slog.Logger {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	return logging.NewComponentLogger(logging.WithContext(ctx, base), "workflow")
}
