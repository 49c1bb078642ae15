package workflow

import (
	"context"
	"errors"
	"strings"

	"previsbine/internal/build"
	"previsbine/internal/logging"
)

func (m *Manager) handleStageFailure(ctx context.Context, run *runState, stage build.Stage, stageErr error) {
	logger := m.stageLogger(ctx)

	run.report.Failed = true
	run.report.FailedStage = stage

	if errors.Is(stageErr, context.Canceled) {
		logger.Info("stage interrupted", logging.String(logging.FieldEventType, "stage_interrupted"))
		_ = run.transcript.Printf("%s interrupted", stage)
		return
	}

	attrs := append([]logging.Attr{
		logging.Alert("stage_failure"),
		logging.String("error_message", classifyStageFailure(stage, stageErr)),
		logging.String(logging.FieldEventType, "stage_failure"),
	}, logging.ErrorDetails(stageErr)...)
	logger.Error("stage failed", logging.Args(attrs...)...)
	_ = run.transcript.Printf("ERROR - %s failed: %v", stage, stageErr)
}

func classifyStageFailure(stage build.Stage, stageErr error) string {
	if stageErr == nil {
		return stage.String() + " failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		return stage.String() + " failed"
	}
	return message
}

