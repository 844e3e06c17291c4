// ABOUTME: Root Cobra command and global state for the diary CLI.
// ABOUTME: Loads config, builds the logger, opens the entry store, and runs the diary screen.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/diary/internal/config"
	"github.com/2389-research/diary/internal/diary"
	"github.com/2389-research/diary/internal/logging"
	"github.com/2389-research/diary/internal/storage"
	"github.com/2389-research/diary/internal/tui"
)

var globalConfig *config.Config
var globalLogger logging.Logger
var globalStore storage.EntryStore
var globalLogFile io.Closer

var rootCmd = &cobra.Command{
	Use:   "diary",
	Short: "A personal diary for your terminal",
	Long: `
   My Personal Diary

Write down how your day went, with a title and a mood, and look back
over past entries newest first. Entries live in a hosted table by
default, or in Postgres or a local SQLite file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		logger, err := openLogger(cmd, cfg)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		globalLogger = logger

		opts, err := cfg.StoreOptions()
		if err != nil {
			return fmt.Errorf("failed to resolve store settings: %w", err)
		}
		store, err := storage.Open(opts)
		if err != nil {
			return fmt.Errorf("failed to open entry store: %w", err)
		}
		globalStore = store

		if !cfg.HasStore() {
			logger.Warn(cmd.Context(), "no entry store configured, run 'diary setup'")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalStore != nil {
			_ = globalStore.Close()
			globalStore = nil
		}
		if globalLogFile != nil {
			_ = globalLogFile.Close()
			globalLogFile = nil
		}
		return nil
	},
	RunE: runDiary,
}

// openLogger logs to a file while the full-screen UI owns the terminal and to stderr otherwise.
func openLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	w := cmd.ErrOrStderr()
	if !cmd.HasParent() {
		path, err := cfg.GetLogPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		globalLogFile = f
		w = f
	}

	logger, err := logging.New(w, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logger.With("cmd", cmd.Name()), nil
}

// newController builds a controller over the global store.
func newController() *diary.Controller {
	var userID string
	if globalConfig != nil {
		userID = globalConfig.Store.UserID
	}
	return diary.New(globalStore, globalLogger, diary.WithUserID(userID))
}

func runDiary(cmd *cobra.Command, args []string) error {
	if globalConfig != nil && !globalConfig.HasStore() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No entry store configured. Run 'diary setup' to connect one.")
	}

	p := tea.NewProgram(tui.NewDiaryModel(newController()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
