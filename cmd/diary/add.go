// ABOUTME: CLI command for writing a diary entry.
// ABOUTME: Submits title, mood, and content through the controller and shows the latest entries.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/diary/internal/diary"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Write a diary entry",
	Long:  "Write a diary entry. Title, mood, and content are all required.",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

// Flags
var (
	addTitle   string
	addMood    string
	addContent string
)

const addShowLatest = 3

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addTitle, "title", "", "Entry title")
	addCmd.Flags().StringVar(&addMood, "mood", "", "How you are feeling")
	addCmd.Flags().StringVar(&addContent, "content", "", "Entry text")
}

func runAdd(cmd *cobra.Command, args []string) error {
	form := diary.Form{Title: addTitle, Mood: addMood, Content: addContent}
	if isBlank(form.Title) || isBlank(form.Mood) || isBlank(form.Content) {
		return fmt.Errorf("--title, --mood and --content are required")
	}

	ctrl := newController()
	ctrl.SetForm(form)
	if err := ctrl.Submit(cmd.Context()).AsError(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Entry written: %s\n\n", form.Title)

	entries := ctrl.Snapshot().Entries
	if len(entries) > addShowLatest {
		entries = entries[:addShowLatest]
	}
	printEntries(out, entries)
	return nil
}

// isBlank reports whether s holds only whitespace. Values are submitted untrimmed.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
