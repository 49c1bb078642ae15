package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"previsbine/internal/build"
	"previsbine/internal/logging"
	"previsbine/internal/runlock"
	"previsbine/internal/workflow"
)

func runBuild(cmd *cobra.Command, ctx *commandContext, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	tools, err := ctx.toolchain()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.Paths.LogDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	logger, closeLog, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	req := workflow.Request{
		Mode:      cfg.BuildMode(),
		Tools:     tools,
		KeepFiles: cfg.Build.KeepFiles,
		NoPrompt:  cfg.Build.NoPrompt,
	}
	if len(args) > 0 {
		req.Plugin = args[0]
	}
	if cmd.Flags().Changed("start-stage") {
		stage := ctx.flags.startStage
		req.StartStage = &stage
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderBanner(req.Mode, tools, colorize))

	opts := []workflow.ManagerOption{}
	if !req.NoPrompt {
		opts = append(opts, workflow.WithPrompter(newLinePrompter(cmd.InOrStdin(), out)))
	}
	manager := workflow.NewManager(cfg, logger, opts...)

	report, runErr := manager.Run(cmd.Context(), req)
	fmt.Fprintln(out, renderReport(report, runErr, colorize))
	if runErr != nil {
		return buildError(report, runErr)
	}
	return nil
}

// buildError adds the resume hint to a failed build.
func buildError(report workflow.Report, err error) error {
	if !report.Failed || workflow.IsAbort(err) || errors.Is(err, build.ErrInvalidStage) {
		return err
	}
	if report.FailedStage == build.VerifyEnvironment {
		return fmt.Errorf("%w\nfix the problem and run again", err)
	}
	return fmt.Errorf("%w\nfix the problem and resume with --start-stage %d", err, int(report.FailedStage))
}
