package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/cleanup"
)

func newCleanCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean <frames|description|descriptions|scenes|purge> [dir]",
		Short: "Delete pipeline artifacts by category",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := cleanup.ParseTarget(args[0])
			if err != nil {
				return err
			}
			root := "."
			if len(args) > 1 {
				root = args[1]
			}

			confirm := func() bool { return yes }
			if !yes {
				confirm = func() bool { return confirmPurge(cmd, root) }
			}

			deleted, err := cleanup.New(a.logger).Clean(root, target, confirm)
			if errors.Is(err, cleanup.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			a.logger.Info("cleanup complete", "target", string(target), "deleted", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the purge confirmation prompt")
	return cmd
}

// confirmPurge asks before deleting every artifact category under root.
func confirmPurge(cmd *cobra.Command, root string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "Purge will delete ALL frames directories and *.description.json, *.descriptions.json, *.scene.json files under %s.\n", root)
	fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to continue? (yes/no): ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}
