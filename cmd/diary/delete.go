// ABOUTME: CLI command for deleting a diary entry by id.
// ABOUTME: Asks for confirmation unless --yes is given; refuses to guess when stdin is not a terminal.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/diary/internal/diary"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a diary entry",
	Long:  "Permanently delete the diary entry with the given id.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteYes bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !deleteYes && !stdinIsTerminal() {
		return fmt.Errorf("refusing to delete %s without --yes: stdin is not a terminal", id)
	}

	var promptErr error
	ask := func(id string) bool {
		if deleteYes {
			return true
		}
		agreed, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete entry %s?", id))
		if err != nil {
			promptErr = err
			return false
		}
		return agreed
	}

	outcome := newController().RequestDelete(cmd.Context(), id, ask)
	if promptErr != nil {
		return fmt.Errorf("failed to read confirmation: %w", promptErr)
	}

	out := cmd.OutOrStdout()
	switch outcome.Status {
	case diary.StatusDeclined:
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	case diary.StatusFailed:
		return outcome.AsError()
	}
	_, _ = fmt.Fprintf(out, "Deleted entry %s\n", id)
	return nil
}
