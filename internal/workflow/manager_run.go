package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/plugin"
	"previsbine/internal/prereq"
	"previsbine/internal/services"
)

// ScriptLogName is the xEdit unattended log written to the log directory.
const ScriptLogName = "UnattendedScript.log"

// Run executes one build. The returned report is filled in as far as the run
// got, including on error.
func (m *Manager) Run(ctx context.Context, req Request) (Report, error) {
	started := time.Now()
	report := &Report{RunID: uuid.NewString(), Mode: req.Mode}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, m.logger), "workflow")

	layout := gamedir.Open(req.Tools.GameDir)
	validator := prereq.New(layout)

	id, start, err := m.resolveStart(ctx, req, layout, validator)
	if err != nil {
		logging.ErrorWithContext(logger, "could not determine start stage", "start_failed", logging.ErrorDetails(err)...)
		report.Plugin = id
		report.Duration = time.Since(started)
		return *report, err
	}
	report.Plugin = id
	report.StartStage = start

	ctx = services.WithPlugin(ctx, id.FileName)
	logger = logging.NewComponentLogger(logging.WithContext(ctx, m.logger), "workflow")

	logDir := ""
	if m.cfg != nil {
		logDir = m.cfg.Paths.LogDir
	}
	run := &runState{
		rc: build.RunContext{
			Mode:      req.Mode,
			Plugin:    id,
			Tools:     req.Tools,
			RunLog:    filepath.Join(logDir, id.Base+".log"),
			ScriptLog: filepath.Join(logDir, ScriptLogName),
			KeepFiles: req.KeepFiles,
			NoPrompt:  req.NoPrompt,
		},
		layout:    layout,
		validator: validator,
		logger:    logger,
		report:    report,
	}
	run.transcript = logging.NewTranscript(run.rc.RunLog)
	report.RunLog = run.rc.RunLog
	if err := run.transcript.Reset(fmt.Sprintf("Starting previsbine for plugin %s (%s mode, stage %d)", id.FileName, req.Mode, start)); err != nil {
		logger.Warn("run log unavailable", logging.Error(err))
	}

	logger.Info("build started",
		logging.String(logging.FieldEventType, "build_start"),
		logging.String("mode", req.Mode.String()),
		logging.String("start_stage", start.String()),
		logging.String("archiver", req.Tools.Archiver.String()),
		logging.String("run_log", run.rc.RunLog),
	)

	runErr := m.execute(ctx, run, start)
	m.cleanup(ctx, run, runErr == nil)
	report.Duration = time.Since(started)

	if runErr != nil {
		_ = run.transcript.Printf("Build failed: %v", runErr)
		return *report, runErr
	}
	report.Artifacts = artifacts(run.rc)
	_ = run.transcript.Printf("Build complete")
	logger.Info("build completed",
		logging.String(logging.FieldEventType, "build_complete"),
		logging.Int("stages", len(report.Executed)),
		logging.Int("warnings", len(report.Warnings)),
		logging.Duration("duration", report.Duration),
	)
	return *report, nil
}

// resolveStart determines the plugin and the first stage.
func (m *Manager) resolveStart(ctx context.Context, req Request, layout *gamedir.Layout, validator *prereq.Validator) (plugin.Identity, build.Stage, error) {
	if req.StartStage != nil {
		stage, err := build.ParseStage(*req.StartStage)
		if err != nil {
			return plugin.Identity{}, 0, err
		}
		id, err := m.identity(ctx, req)
		if err != nil {
			return plugin.Identity{}, 0, err
		}
		if err := validator.Check(stage, runContext(req, id)); err != nil {
			return id, 0, err
		}
		return id, stage, nil
	}

	id, err := m.identity(ctx, req)
	if err != nil {
		return plugin.Identity{}, 0, err
	}
	if !layout.DataExists(id.FileName) || !m.canPrompt(req) {
		return id, build.VerifyEnvironment, nil
	}

	stage, err := m.prompter.ResumeStage(ctx, req.Mode)
	if err != nil {
		return id, 0, err
	}
	if !stage.Valid() {
		return id, 0, fmt.Errorf("%w: %d", build.ErrInvalidStage, int(stage))
	}
	if err := validator.Check(stage, runContext(req, id)); err != nil {
		return id, 0, err
	}
	return id, stage, nil
}

// identity parses the requested plugin, asking for one when none was given.
func (m *Manager) identity(ctx context.Context, req Request) (plugin.Identity, error) {
	name := req.Plugin
	if name == "" {
		if !m.canPrompt(req) {
			return plugin.Identity{}, services.Wrap(services.ErrUserAborted, "", "plugin", "no plugin given and prompting is disabled", nil)
		}
		answer, err := m.prompter.PluginName(ctx)
		if err != nil {
			return plugin.Identity{}, err
		}
		name = answer
	}
	return plugin.ParseIdentity(name)
}

func (m *Manager) canPrompt(req Request) bool {
	return !req.NoPrompt && m.prompter != nil
}

// execute runs the stages from start onwards. Environment verification runs
// exactly once: as the first stage, or ahead of a resumed stage.
func (m *Manager) execute(ctx context.Context, run *runState, start build.Stage) error {
	if start != build.VerifyEnvironment {
		if err := m.runStage(ctx, run, pipelineStage{stage: build.VerifyEnvironment, handler: m.verifyOnly}); err != nil {
			return err
		}
	}
	for _, ps := range m.pipeline() {
		if ps.stage < start {
			continue
		}
		if ps.stage.CleanOnly() && run.rc.Mode != build.Clean {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.runStage(ctx, run, ps); err != nil {
			return err
		}
		run.report.Executed = append(run.report.Executed, ps.stage)
	}
	return nil
}

func runContext(req Request, id plugin.Identity) build.RunContext {
	return build.RunContext{Mode: req.Mode, Plugin: id, Tools: req.Tools, KeepFiles: req.KeepFiles, NoPrompt: req.NoPrompt}
}

func artifacts(rc build.RunContext) []string {
	out := []string{rc.Plugin.FileName}
	if rc.Mode == build.Clean {
		out = append(out, rc.Plugin.GeometryCSG(), rc.Plugin.CDX())
	}
	return append(out, rc.Plugin.Archive)
}

// IsAbort reports whether err means the operator declined to continue.
func IsAbort(err error) bool {
	return errors.Is(err, services.ErrUserAborted)
}
