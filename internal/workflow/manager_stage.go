package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"previsbine/internal/archive"
	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/logscan"
	"previsbine/internal/services"
	"previsbine/internal/services/creationkit"
	"previsbine/internal/services/xedit"
)

// runStage checks prerequisites, runs the handler and records the outcome.
func (m *Manager) runStage(ctx context.Context, run *runState, ps pipelineStage) error {
	ctx = withStageContext(ctx, ps.stage)
	logger := m.stageLogger(ctx)

	if err := run.validator.Check(ps.stage, run.rc); err != nil {
		m.handleStageFailure(ctx, run, ps.stage, err)
		return err
	}

	started := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("description", ps.stage.Description()),
	)
	_ = run.transcript.Section(fmt.Sprintf("Stage %d: %s", int(ps.stage), ps.stage.Description()))

	if ps.handler == nil {
		err := fmt.Errorf("stage %s has no handler", ps.stage)
		m.handleStageFailure(ctx, run, ps.stage, err)
		return err
	}
	if err := ps.handler(ctx, run); err != nil {
		m.handleStageFailure(ctx, run, ps.stage, err)
		return err
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started)),
	)
	return nil
}

// noteWarning records a non-fatal condition in the report, run log and
// structured log.
func (m *Manager) noteWarning(ctx context.Context, run *runState, eventType, msg string) {
	run.warn(msg)
	logging.WarnWithContext(m.stageLogger(ctx), msg, eventType)
}

func (m *Manager) stageGeneratePrecombines(ctx context.Context, run *runState) error {
	stage := build.GeneratePrecombines.String()
	if err := requireEmpty(run.layout, stage, gamedir.PrecombinedDir, gamedir.MeshExtension); err != nil {
		return err
	}
	if err := requireEmpty(run.layout, stage, gamedir.VisDir, gamedir.VisExtension); err != nil {
		return err
	}
	if err := removeData(run.layout, stage, gamedir.CombinedObjectsPlugin, run.rc.Plugin.GeometryPSG()); err != nil {
		return err
	}

	result, err := run.creationKit.Run(ctx, creationkit.Invocation{
		Action: creationkit.ActionGeneratePrecombined,
		Plugin: run.rc.Plugin.FileName,
		Output: gamedir.CombinedObjectsPlugin,
		Args:   run.rc.Mode.PrecombineArgs(),
	})
	m.collectToolWarning(ctx, run, result.Warning)
	if err != nil {
		return err
	}

	found, err := run.layout.HasFiles(gamedir.PrecombinedDir, gamedir.MeshExtension)
	if err != nil {
		return services.Wrap(services.ErrOutputMissing, stage, "scan precombined meshes", "", err)
	}
	if !found {
		return services.Wrap(services.ErrOutputMissing, stage, creationkit.ActionGeneratePrecombined,
			"no precombined meshes were generated", nil)
	}
	if outcome := m.rules.Precombines.Classify(result.Log); outcome.Failed() {
		return services.Wrap(services.ErrLogParse, stage, creationkit.ActionGeneratePrecombined, outcome.Reason, nil)
	}
	if run.rc.Mode == build.Clean && !run.layout.DataExists(run.rc.Plugin.GeometryPSG()) {
		return services.Wrap(services.ErrOutputMissing, stage, creationkit.ActionGeneratePrecombined,
			fmt.Sprintf("%s was not created", run.rc.Plugin.GeometryPSG()), nil)
	}
	return nil
}

func (m *Manager) stageMergePrecombines(ctx context.Context, run *runState) error {
	text, err := run.xedit.RunScript(ctx, xedit.ScriptMergeCombinedObjects, run.rc.Plugin.FileName, gamedir.CombinedObjectsPlugin)
	if err != nil {
		return err
	}
	m.collectScriptWarnings(ctx, run, m.rules.MergeCombined.Classify(text))
	return nil
}

func (m *Manager) stageArchivePrecombines(ctx context.Context, run *runState) error {
	q := archive.QualifiersFor(run.rc.Mode)
	if err := run.archive.Pack(ctx, []string{gamedir.PrecombinedFolder}, q); err != nil {
		return err
	}
	if err := run.layout.RemoveDir(gamedir.PrecombinedDir); err != nil {
		return services.Wrap(services.ErrExternalProcess, build.ArchivePrecombines.String(), "remove loose meshes", "", err)
	}
	return nil
}

func (m *Manager) stageCompressPsg(ctx context.Context, run *runState) error {
	id := run.rc.Plugin
	result, err := run.creationKit.Run(ctx, creationkit.Invocation{
		Action: creationkit.ActionCompressPSG,
		Plugin: id.FileName,
		Output: id.GeometryCSG(),
	})
	m.collectToolWarning(ctx, run, result.Warning)
	if err != nil {
		return err
	}
	if err := run.layout.RemoveFile(run.layout.Data(id.GeometryPSG())); err != nil {
		return services.Wrap(services.ErrExternalProcess, build.CompressPsg.String(), "remove geometry file", "", err)
	}
	return nil
}

func (m *Manager) stageBuildCdx(ctx context.Context, run *runState) error {
	result, err := run.creationKit.Run(ctx, creationkit.Invocation{
		Action: creationkit.ActionBuildCDX,
		Plugin: run.rc.Plugin.FileName,
		Output: run.rc.Plugin.CDX(),
	})
	m.collectToolWarning(ctx, run, result.Warning)
	return err
}

func (m *Manager) stageGeneratePrevis(ctx context.Context, run *runState) error {
	stage := build.GeneratePrevis.String()
	if err := requireEmpty(run.layout, stage, gamedir.VisDir, gamedir.VisExtension); err != nil {
		return err
	}
	if err := removeData(run.layout, stage, gamedir.PrevisPlugin); err != nil {
		return err
	}

	result, err := run.creationKit.Run(ctx, creationkit.Invocation{
		Action: creationkit.ActionGeneratePreVisData,
		Plugin: run.rc.Plugin.FileName,
		Output: gamedir.PrevisPlugin,
		Args:   []string{"clean", "all"},
	})
	m.collectToolWarning(ctx, run, result.Warning)
	if err != nil {
		return err
	}

	if outcome := m.rules.Previs.Classify(result.Log); outcome.Failed() {
		return services.Wrap(services.ErrLogParse, stage, creationkit.ActionGeneratePreVisData, outcome.Reason, nil)
	}
	found, err := run.layout.HasFiles(gamedir.VisDir, gamedir.VisExtension)
	if err != nil {
		return services.Wrap(services.ErrOutputMissing, stage, "scan visibility data", "", err)
	}
	if !found {
		return services.Wrap(services.ErrOutputMissing, stage, creationkit.ActionGeneratePreVisData,
			"no visibility files were generated", nil)
	}
	return nil
}

func (m *Manager) stageMergePrevis(ctx context.Context, run *runState) error {
	text, err := run.xedit.RunScript(ctx, xedit.ScriptMergePrevis, run.rc.Plugin.FileName, gamedir.PrevisPlugin)
	if err != nil {
		return err
	}
	if outcome := m.rules.MergePrevis.Classify(text); outcome.Failed() {
		return services.Wrap(services.ErrLogParse, build.MergePrevis.String(), xedit.ScriptMergePrevis, outcome.Reason, nil)
	}
	return nil
}

func (m *Manager) stageArchiveVis(ctx context.Context, run *runState) error {
	if err := run.archive.AddFolder(ctx, gamedir.VisFolder, archive.QualifiersFor(run.rc.Mode)); err != nil {
		return err
	}
	if err := run.layout.RemoveDir(gamedir.VisDir); err != nil {
		return services.Wrap(services.ErrExternalProcess, build.ArchiveVis.String(), "remove loose visibility data", "", err)
	}
	return nil
}

func (m *Manager) collectToolWarning(ctx context.Context, run *runState, warning string) {
	if warning != "" {
		m.noteWarning(ctx, run, "tool_exit_code", warning)
	}
}

func (m *Manager) collectScriptWarnings(ctx context.Context, run *runState, outcome logscan.Outcome) {
	for _, w := range outcome.Warnings {
		m.noteWarning(ctx, run, "script_warning", w)
	}
}

// requireEmpty refuses to overwrite generated data left by an earlier run.
func requireEmpty(layout *gamedir.Layout, stage, dir, ext string) error {
	found, err := layout.HasFiles(dir, ext)
	if err != nil {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, "inspect "+dir, "", err)
	}
	if found {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage, dir,
			fmt.Sprintf("directory already contains %s files, remove them or resume from a later stage", ext), nil)
	}
	return nil
}

// removeData deletes stale working files inside Data.
func removeData(layout *gamedir.Layout, stage string, names ...string) error {
	var errs []error
	for _, name := range names {
		if err := layout.RemoveFile(layout.Data(name)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return services.Wrap(services.ErrExternalProcess, stage, "remove stale files", "", err)
	}
	return nil
}
