// Package chat is the interactive TUI shell. It owns terminal concerns
// only; all behavior lives in the session controller, which the shell
// drives through the UI message protocol.
package chat

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"codewright/internal/backend"
	"codewright/internal/browser"
	"codewright/internal/changeset"
	"codewright/internal/command"
	"codewright/internal/config"
	"codewright/internal/logging"
	"codewright/internal/runner"
	"codewright/internal/session"
	"codewright/internal/store"
	"codewright/internal/types"
	"codewright/internal/workspace"
)

// Options carries the CLI flag overrides into the chat shell.
type Options struct {
	Workspace string
	APIKey    string
	Provider  string
	Model     string
}

// Run wires the collaborators and blocks until the user quits.
func Run(opts Options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if opts.Provider != "" {
		cfg.Provider = opts.Provider
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}

	root := opts.Workspace
	if root == "" {
		root = "."
	}
	if err := logging.Initialize(root); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logging.CloseAll()

	files, err := workspace.New(root)
	if err != nil {
		return err
	}

	be, err := backend.New(backend.Options{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	})
	if err != nil {
		return err
	}

	configDir, err := config.Dir()
	if err != nil {
		return err
	}
	db, err := store.New(filepath.Join(configDir, "wright.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	watcher, err := config.NewPromptWatcher(configDir)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		logging.Get(logging.CategoryConfig).Warn("prompt hot reload unavailable: %v", err)
	}
	defer watcher.Stop()

	pages := browser.NewSnapshotter()
	defer pages.Close()

	outbound := make(chan types.Outbound, 32)
	ctrl, err := session.New(session.Options{
		Backend:     be,
		Files:       files,
		Changes:     changeset.NewStore(files),
		Registry:    command.NewDefaultRegistry(),
		Emit:        func(out types.Outbound) { outbound <- out },
		Prompts:     watcher.Prompts,
		Runner:      runner.New(files.Root(), cfg.RunTimeout),
		Pages:       pages,
		Transcripts: db,
	})
	if err != nil {
		return err
	}

	logging.Get(logging.CategoryBoot).Info("session %s started in %s", ctrl.ID(), files.Root())

	m := newModel(ctrl, outbound, cfg.Theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
