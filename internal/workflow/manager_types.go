package workflow

import (
	"context"
	"log/slog"
	"time"

	"previsbine/internal/archive"
	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/plugin"
	"previsbine/internal/prereq"
	"previsbine/internal/services/creationkit"
	"previsbine/internal/services/xedit"
)

// Prompter asks the operator questions. The manager never calls it when the
// request sets NoPrompt.
type Prompter interface {
	// PluginName asks for the plugin to build.
	PluginName(ctx context.Context) (string, error)
	// ResumeStage asks where to resume a plugin that already exists.
	ResumeStage(ctx context.Context, mode build.Mode) (build.Stage, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
}

// Request describes one build.
type Request struct {
	// Plugin is the operator supplied plugin name, possibly without extension.
	Plugin string
	// StartStage forces the first stage when non-nil.
	StartStage *int
	Mode       build.Mode
	Tools      build.Toolchain
	KeepFiles  bool
	NoPrompt   bool
}

// Report summarizes a build, successful or not.
type Report struct {
	RunID      string
	Plugin     plugin.Identity
	Mode       build.Mode
	StartStage build.Stage
	Executed   []build.Stage
	// FailedStage is only meaningful when Failed is set.
	FailedStage   build.Stage
	Failed        bool
	Warnings      []string
	Artifacts     []string
	RunLog        string
	CleanupErrors []error
	Duration      time.Duration
}

// pipelineStage binds a stage to its handler.
type pipelineStage struct {
	stage   build.Stage
	handler func(ctx context.Context, run *runState) error
}

// runState is everything the stage handlers share during one build.
type runState struct {
	rc         build.RunContext
	layout     *gamedir.Layout
	validator  *prereq.Validator
	transcript *logging.Transcript
	logger     *slog.Logger
	report     *Report

	creationKit *creationkit.Client
	xedit       *xedit.Client
	archive     *archive.Manager
}

func (r *runState) warn(msg string) {
	r.report.Warnings = append(r.report.Warnings, msg)
	_ = r.transcript.Printf("WARNING - %s", msg)
}
