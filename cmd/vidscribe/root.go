package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"vidscribe/internal/config"
)

// app carries the state shared by every subcommand: the loaded
// configuration and the logger, built once in the persistent pre-run.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	verbose bool
}

func newRootCommand() *cobra.Command {
	var configFlag string
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "vidscribe",
		Short:         "Turn directories of videos into grouped, scene-annotated timelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: "15:04:05",
				}),
			)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newExtractCommand(a))
	rootCmd.AddCommand(newScenesCommand(a))
	rootCmd.AddCommand(newDescribeCommand(a))
	rootCmd.AddCommand(newGroupCommand(a))
	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newCleanCommand(a))
	rootCmd.AddCommand(newIndexCommand(a))
	rootCmd.AddCommand(newSearchCommand(a))

	return rootCmd
}

// targetDir resolves the optional positional directory argument.
func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
