package workflow

import (
	"fmt"

	"previsbine/internal/archive"
	"previsbine/internal/build"
	"previsbine/internal/services/archive2"
	"previsbine/internal/services/bsarch"
	"previsbine/internal/services/creationkit"
	"previsbine/internal/services/xedit"
)

// pipeline returns every stage in execution order with its handler.
func (m *Manager) pipeline() []pipelineStage {
	return []pipelineStage{
		{stage: build.VerifyEnvironment, handler: m.stageVerifyEnvironment},
		{stage: build.GeneratePrecombines, handler: m.stageGeneratePrecombines},
		{stage: build.MergePrecombines, handler: m.stageMergePrecombines},
		{stage: build.ArchivePrecombines, handler: m.stageArchivePrecombines},
		{stage: build.CompressPsg, handler: m.stageCompressPsg},
		{stage: build.BuildCdx, handler: m.stageBuildCdx},
		{stage: build.GeneratePrevis, handler: m.stageGeneratePrevis},
		{stage: build.MergePrevis, handler: m.stageMergePrevis},
		{stage: build.ArchiveVis, handler: m.stageArchiveVis},
	}
}

// configureTools builds the tool clients once verification has resolved the
// Creation Kit log location.
func (m *Manager) configureTools(run *runState) error {
	tc := run.rc.Tools

	ck, err := creationkit.New(tc.CreationKit, run.layout, tc.CKPE.LogFile,
		creationkit.WithRunner(m.runner),
		creationkit.WithLogger(m.logger),
		creationkit.WithTranscript(run.transcript),
		creationkit.WithSettleDelay(m.timing.Settle),
	)
	if err != nil {
		return fmt.Errorf("creation kit client: %w", err)
	}

	xe, err := xedit.New(tc.XEdit, run.rc.ScriptLog,
		xedit.WithRunner(m.runner),
		xedit.WithLogger(m.logger),
		xedit.WithTranscript(run.transcript),
		xedit.WithCompletion(m.rules.ScriptDone),
		xedit.WithTiming(xedit.Timing{
			PollInterval: m.timing.PollInterval,
			WaitTimeout:  m.timing.WaitTimeout,
			Settle:       m.timing.ScriptSettle,
			ExitDelay:    m.timing.ScriptExit,
		}),
	)
	if err != nil {
		return fmt.Errorf("xedit client: %w", err)
	}

	backend, err := m.archiveBackend(run)
	if err != nil {
		return err
	}
	am, err := archive.NewManager(backend, run.layout, run.rc.Plugin.Archive,
		archive.WithLogger(m.logger),
		archive.WithExtractSettle(m.timing.ExtractSettle),
	)
	if err != nil {
		return fmt.Errorf("archive manager: %w", err)
	}

	run.creationKit = ck
	run.xedit = xe
	run.archive = am
	return nil
}

func (m *Manager) archiveBackend(run *runState) (archive.Backend, error) {
	tc := run.rc.Tools
	if tc.Archiver == build.BSArch {
		client, err := bsarch.New(tc.BSArch,
			bsarch.WithRunner(m.runner),
			bsarch.WithLogger(m.logger),
			bsarch.WithTranscript(run.transcript),
		)
		if err != nil {
			return nil, fmt.Errorf("bsarch client: %w", err)
		}
		return client, nil
	}
	client, err := archive2.New(tc.Archive2,
		archive2.WithRunner(m.runner),
		archive2.WithLogger(m.logger),
		archive2.WithTranscript(run.transcript),
	)
	if err != nil {
		return nil, fmt.Errorf("archive2 client: %w", err)
	}
	return client, nil
}
