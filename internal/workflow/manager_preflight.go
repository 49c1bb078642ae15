package workflow

import (
	"context"
	"fmt"

	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/preflight"
	"previsbine/internal/services"
)

// stageVerifyEnvironment is stage 0: the tool checks plus the plugin and
// archive checks that only make sense on a fresh build.
func (m *Manager) stageVerifyEnvironment(ctx context.Context, run *runState) error {
	if err := m.verifyOnly(ctx, run); err != nil {
		return err
	}
	return m.checkPlugin(ctx, run)
}

// verifyOnly runs the environment verification and builds the tool clients.
func (m *Manager) verifyOnly(ctx context.Context, run *runState) error {
	logger := m.stageLogger(ctx)

	settings, results, err := preflight.Verify(ctx, run.rc.Tools, run.layout)
	for _, r := range results {
		switch {
		case !r.Passed:
			logger.Error("preflight check failed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_failed"),
				logging.String(logging.FieldErrorHint, "fix the reported issue and run again"),
			)
		case r.Warning:
			m.noteWarning(ctx, run, "preflight_warning", r.Detail)
		default:
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
		}
	}
	if err != nil {
		return err
	}

	run.rc.Tools.CKPE = settings
	logger.Info("environment verified",
		logging.String(logging.FieldEventType, "preflight_complete"),
		logging.String("ckpe_config", settings.File),
		logging.String("ck_log", settings.LogFile),
	)
	_ = run.transcript.Printf("Using Creation Kit log %s", settings.LogFile)
	return m.configureTools(run)
}

// checkPlugin makes sure the plugin is ready for a fresh build and no archive
// from an earlier build is in the way.
func (m *Manager) checkPlugin(ctx context.Context, run *runState) error {
	stage := build.VerifyEnvironment.String()
	id := run.rc.Plugin

	if run.layout.DataExists(id.Archive) {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, "check archive",
			fmt.Sprintf("%s already exists, remove it before building previsbines", id.Archive), nil)
	}
	if run.layout.DataExists(id.FileName) {
		return nil
	}
	if !run.layout.DataExists(gamedir.SeedPlugin) {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, "check plugin",
			fmt.Sprintf("plugin %s does not exist", id.FileName), nil)
	}
	if run.rc.NoPrompt || m.prompter == nil {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, "check plugin",
			fmt.Sprintf("plugin %s does not exist; rename %s to build it", id.FileName, gamedir.SeedPlugin), nil)
	}

	ok, err := m.prompter.Confirm(ctx, fmt.Sprintf("Plugin %s does not exist. Rename %s to %s?", id.FileName, gamedir.SeedPlugin, id.FileName))
	if err != nil {
		return err
	}
	if !ok {
		return services.Wrap(services.ErrUserAborted, stage, "check plugin", "rename declined", nil)
	}
	if err := run.layout.Rename(run.layout.Data(gamedir.SeedPlugin), run.layout.Data(id.FileName)); err != nil {
		return services.Wrap(services.ErrExternalProcess, stage, "rename seed plugin", "", err)
	}
	_ = run.transcript.Printf("Renamed %s to %s", gamedir.SeedPlugin, id.FileName)
	m.stageLogger(ctx).Info("seed plugin renamed",
		logging.String(logging.FieldEventType, "seed_renamed"),
		logging.String("from", gamedir.SeedPlugin),
	)
	return nil
}
