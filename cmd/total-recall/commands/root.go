package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/quaid/total-recall/internal/config"
	"github.com/quaid/total-recall/internal/logging"
	"github.com/quaid/total-recall/internal/sessions"
	"github.com/quaid/total-recall/internal/tui"
)

var (
	debugMode  bool
	configPath string
	claudeDir  string
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "total-recall",
		Short: "Browse and resume recent Claude Code sessions",
		Long:  `total-recall is a TUI application for browsing and resuming recent Claude Code sessions.`,
		RunE:  runTUI,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug logs to the data directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/total-recall/config.toml)")
	rootCmd.PersistentFlags().StringVar(&claudeDir, "claude-dir", "", "Claude data directory (default ~/.claude)")
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewStatsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: file (explicit path or
// default location) overlaid with command-line flags.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.FromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if claudeDir != "" {
		cfg.Claude.ClaudeDir = claudeDir
	}
	return cfg, nil
}

func newStore(cfg *config.Config) *sessions.Store {
	return sessions.NewStore(sessions.Options{
		Root:              cfg.ProjectsDir(),
		ShowAgentSessions: cfg.Display.ShowAgentSessions,
		PreviewLines:      cfg.Display.PreviewLines,
	})
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.Setup(config.DataDir(), debugMode)

	store := newStore(cfg)

	// The watcher only drives the stale indicator; the TUI works fine
	// without it when the root doesn't exist yet.
	var events <-chan struct{}
	watcher, err := sessions.NewWatcher(store.Root())
	if err != nil {
		log.Printf("fs watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
		go watcher.Run(cmd.Context())
		events = watcher.Events()
	}

	if err := tui.Run(store, cfg, events); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
