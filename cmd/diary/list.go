// ABOUTME: CLI command for listing diary entries.
// ABOUTME: Prints entries newest first with date, mood, title, id, and content.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/diary/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List diary entries",
	Long:  "List diary entries, newest first.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listLimit int

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of entries to show (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctrl := newController()
	if err := ctrl.Mount(cmd.Context()).AsError(); err != nil {
		return err
	}

	entries := ctrl.Snapshot().Entries
	if listLimit > 0 && len(entries) > listLimit {
		entries = entries[:listLimit]
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No entries yet.")
		return nil
	}
	printEntries(out, entries)
	return nil
}

// printEntries writes one block per entry, separated by blank lines.
func printEntries(w io.Writer, entries []*models.DiaryEntry) {
	for i, e := range entries {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s  [%s]  %s\n", models.FormatDate(e.CreatedAt), e.Mood, e.Title)
		_, _ = fmt.Fprintf(w, "  id: %s\n", e.ID)
		for _, line := range strings.Split(e.Content, "\n") {
			_, _ = fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
