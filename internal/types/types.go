// Package types holds the shared data model for codewright: chat turns,
// handler results, the UI message protocol, and the error taxonomy.
// It sits at the bottom of the import graph so every other package can
// depend on it without cycles.
package types

import (
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single entry in the conversation history.
// The history is append-only and owned exclusively by the session controller;
// it is cleared wholesale on mode switch or explicit clear.
type ChatTurn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time,omitempty"`
}

// Mode is the session interaction mode.
type Mode string

const (
	// ModeQuery sends input straight to the backend, with @token resource
	// references expanded inline.
	ModeQuery Mode = "query"
	// ModeAction routes input through the command registry to a handler.
	ModeAction Mode = "action"
)

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == ModeQuery || m == ModeAction
}

// HandlerResult is the immutable outcome of one handler invocation.
// Execute never returns an error past its boundary: failures are folded
// into Success=false with a human-readable Message.
type HandlerResult struct {
	Success bool
	Message string
	// Content carries the handler's primary artifact (e.g. the extracted
	// replacement text, or captured run output) when one exists.
	Content string
	// Stats is optional structured telemetry for the invocation.
	Stats *InvocationStats
}

// InvocationStats is the closed stats payload attached to a HandlerResult.
type InvocationStats struct {
	PromptTokens int
	OutputTokens int
	BackendCalls int
	Elapsed      time.Duration
}

// DiffKind classifies a line in a computed diff.
type DiffKind int

const (
	DiffUnchanged DiffKind = iota
	DiffAdded
	DiffRemoved
)

// DiffLine is one line of a computed diff. Sequences of DiffLine are purely
// derived and never mutated after computation.
type DiffLine struct {
	Kind DiffKind
	Text string
}
