package types

import "context"

// Backend is the text-generation collaborator. Generate receives the ordered
// conversation and returns the assistant's raw response text. Failures are
// reported as *BackendError.
type Backend interface {
	Generate(ctx context.Context, turns []ChatTurn) (string, error)
}

// FileStore is the file collaborator consumed by the core. WriteFile creates
// parent directories as needed. ReadFile wraps missing files in ErrNotFound.
type FileStore interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	Delete(path string) error
	MakeDir(path string) error
}

// Stager records a proposed-but-unconfirmed change for later apply/reject.
// Staging the same key twice replaces the earlier proposal (last-proposal-wins).
type Stager interface {
	Stage(resourceKey, original, proposed, rendered string)
}
