package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"previsbine/internal/gamedir"
	"previsbine/internal/preflight"
	"previsbine/internal/services"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the game, tool and script installation without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			tools, err := ctx.toolchain()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Tool discovery", statusError, err.Error(), colorize))
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			settings, results, verifyErr := preflight.Verify(cmd.Context(), tools, gamedir.Open(tools.GameDir))
			results = append(results, preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
			}
			if verifyErr != nil {
				return verifyErr
			}
			if last := results[len(results)-1]; !last.Passed {
				return services.Wrap(services.ErrConfigurationMissing, "", last.Name, last.Detail, nil)
			}

			fmt.Fprintln(out, renderStatusLine("Creation Kit log", statusInfo, settings.LogFile, colorize))
			if warnings := preflight.Warnings(results); len(warnings) > 0 {
				fmt.Fprintf(out, "Environment usable with %d warning(s)\n", len(warnings))
				return nil
			}
			fmt.Fprintln(out, "Environment ready")
			return nil
		},
	}
}

