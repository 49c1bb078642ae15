package workflow

import (
	"context"

	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
)

// cleanup restores disabled components and, after a successful build, drops
// the working files. It can run any number of times.
func (m *Manager) cleanup(ctx context.Context, run *runState, succeeded bool) {
	logger := m.stageLogger(ctx)
	record := func(err error) {
		if err == nil {
			return
		}
		run.report.CleanupErrors = append(run.report.CleanupErrors, err)
		logging.WarnWithContext(logger, "cleanup step failed", "cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "build result unaffected; remove leftovers by hand"),
		)
	}

	restored, err := run.layout.RestoreComponents(gamedir.GraphicsComponents)
	record(err)
	if len(restored) > 0 {
		logger.Info("re-enabled graphics components",
			logging.String(logging.FieldEventType, "components_restored"),
			logging.Strings("components", restored),
		)
	}

	if !succeeded || run.rc.KeepFiles {
		return
	}
	record(run.layout.RemoveFile(run.layout.Data(gamedir.CombinedObjectsPlugin)))
	record(run.layout.RemoveFile(run.layout.Data(gamedir.PrevisPlugin)))
	record(run.layout.RemoveDir(gamedir.VisDir))
	logger.Debug("working files removed", logging.String(logging.FieldEventType, "cleanup_complete"))
}
