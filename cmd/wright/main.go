package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codewright/cmd/wright/chat"
	"codewright/internal/config"
	"codewright/internal/store"
)

var (
	verbose   bool
	apiKey    string
	provider  string
	model     string
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wright",
	Short: "codewright - diff-mediated coding assistant",
	Long: `codewright turns natural-language instructions into reviewable file
edits. Every proposed change is staged as a diff; nothing touches disk
until you apply it.

Run without arguments to start the interactive chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive chat has its own UI; a terminal logger would
		// fight with it.
		if cmd.CalledAs() == "wright" {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return chat.Run(chat.Options{
			Workspace: workspace,
			APIKey:    apiKey,
			Provider:  provider,
			Model:     model,
		})
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List persisted chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		db, err := store.New(filepath.Join(dir, "wright.db"))
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.Sessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No persisted sessions.")
			return nil
		}
		for _, s := range sessions {
			logger.Debug("session", zap.String("id", s.ID), zap.Int("turns", s.Turns))
			fmt.Printf("%s  %4d turns  last %s\n", s.ID, s.Turns, s.LastSeen.Format(time.RFC3339))
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		file, _ := config.File()
		fmt.Printf("config file: %s\n", file)
		fmt.Printf("provider:    %s\n", cfg.Provider)
		fmt.Printf("model:       %s\n", valueOr(cfg.Model, "(provider default)"))
		fmt.Printf("base url:    %s\n", valueOr(cfg.BaseURL, "(provider default)"))
		fmt.Printf("api key:     %s\n", maskKey(cfg.APIKey))
		fmt.Printf("run timeout: %s\n", cfg.RunTimeout)
		return nil
	},
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "backend API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "backend provider: openai or gemini")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "backend model name")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace root")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
