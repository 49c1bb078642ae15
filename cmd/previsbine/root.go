package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	flags := &buildFlags{}

	ctx := newCommandContext(&configFlag, flags)

	rootCmd := &cobra.Command{
		Use:   "previsbine [PLUGIN]",
		Short: "Build precombined meshes and previs data for a Fallout 4 plugin",
		Long: "previsbine drives the Creation Kit, xEdit and Archive2/BSArch through the\n" +
			"precombine and previs stages for one plugin. A failed run can be resumed\n" +
			"with --start-stage once the problem is fixed.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.gamePath, "fallout4-path", "", "Fallout 4 installation directory")
	rootCmd.PersistentFlags().StringVar(&flags.xeditPath, "fo4edit-path", "", "FO4Edit/xEdit executable")
	rootCmd.PersistentFlags().StringVar(&flags.bsarchPath, "bsarch-path", "", "BSArch executable")
	rootCmd.PersistentFlags().BoolVarP(&flags.useBSArch, "use-bsarch", "u", false, "Pack archives with BSArch instead of Archive2")
	rootCmd.PersistentFlags().StringVarP(&flags.mode, "mode", "m", "", "Build mode: clean, filtered or xbox")

	rootCmd.Flags().IntVar(&flags.startStage, "start-stage", 0, "Stage to start from (0-8)")
	rootCmd.Flags().BoolVarP(&flags.noPrompt, "no-prompt", "n", false, "Never ask questions; fail instead")
	rootCmd.Flags().BoolVarP(&flags.keepFiles, "keep-files", "k", false, "Keep CombinedObjects.esp, Previs.esp and vis files after a successful build")

	rootCmd.AddCommand(newStagesCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
