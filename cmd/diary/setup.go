// ABOUTME: Cobra command for interactive store setup.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate the project URL and anon key.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/diary/internal/config"
	"github.com/2389-research/diary/internal/storage"
	"github.com/2389-research/diary/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Connect your hosted entries table",
	Long:  "Interactive wizard to configure the project URL and anon key of the hosted entries table.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	// environment overrides are not written back to the file
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.Store.URL,
		cfg.Store.AnonKey,
		cfg.Store.Table,
	)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	apiURL, anonKey := final.Result()
	cfg.Store.Backend = storage.BackendREST
	cfg.Store.URL = apiURL
	cfg.Store.AnonKey = anonKey

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
