package command

import (
	"fmt"
	"strings"
	"sync"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// Registry holds the registered handlers and resolves free-text input to
// the first handler whose prefix matches. It is constructed explicitly and
// passed to whatever owns the session; there is no package-level instance.
//
// Matching is insertion-ordered, not longest-prefix: callers must register
// more specific prefixes before general ones that could shadow them. The
// built-in set has no overlap today ('#' shares no leading character with
// the '@' family), so NewDefaultRegistry's order is the documented
// precedence list.
type Registry struct {
	mu      sync.RWMutex
	ordered []Handler
	byID    map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Handler)}
}

// Register adds a handler. Registration happens once at startup; a duplicate
// id returns *types.DuplicateHandlerError and is fatal to the caller.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[h.ID()]; exists {
		return &types.DuplicateHandlerError{ID: h.ID()}
	}
	r.byID[h.ID()] = h
	r.ordered = append(r.ordered, h)

	logging.DispatchDebug("registered handler %s (prefix=%q)", h.ID(), h.CommandPrefix())
	return nil
}

// MustRegister registers a handler and panics on error. Use for the static
// built-in set at startup.
func (r *Registry) MustRegister(h Handler) {
	if err := r.Register(h); err != nil {
		panic(fmt.Sprintf("register handler %s: %v", h.ID(), err))
	}
}

// Find returns the first-registered handler whose CanHandle accepts input.
func (r *Registry) Find(input string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.ordered {
		if h.CanHandle(input) {
			return h, true
		}
	}
	return nil, false
}

// List returns all handlers in registration order.
func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handler, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Help renders the prefix+description listing surfaced on an unmatched
// command and in the mode-switch grammar turn.
func (r *Registry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, h := range r.ordered {
		fmt.Fprintf(&sb, "  %-14s %s\n", h.CommandPrefix(), h.Description())
	}
	sb.WriteString("  @<name>        (query mode) expand a resource's content inline\n")
	return sb.String()
}

// NewDefaultRegistry builds a registry with the built-in handlers in their
// documented precedence order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(NewEditHandler())
	r.MustRegister(NewDocHandler())
	r.MustRegister(NewTestHandler())
	r.MustRegister(NewFixHandler())
	r.MustRegister(NewRunHandler())
	r.MustRegister(NewCreateFileHandler())
	r.MustRegister(NewCreateFolderHandler())
	r.MustRegister(NewDeleteFileHandler())
	r.MustRegister(NewDeleteFolderHandler())
	r.MustRegister(NewAnalyzeHandler())
	return r
}
