// Package command implements the prefix-grammar dispatch layer: a registry
// of handlers, the per-invocation context handed to exactly one of them,
// and the built-in handler set (edit, doc, test, fix, run, lifecycle,
// analyze). Handlers differ only in prompt construction and
// post-processing; the invocation contract is uniform.
package command

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"codewright/internal/browser"
	"codewright/internal/config"
	"codewright/internal/diff"
	"codewright/internal/logging"
	"codewright/internal/runner"
	"codewright/internal/types"
)

// Handler is the polymorphic command-execution contract. Execute is a
// catch-all boundary: no error escapes it, failures come back as a result
// with Success=false and a human-readable message.
type Handler interface {
	ID() string
	Name() string
	Description() string
	CommandPrefix() string

	// CanHandle reports whether input starts with this handler's prefix.
	CanHandle(input string) bool

	// Validate pre-checks the invocation context. Callers may skip it;
	// Execute re-checks anything it needs.
	Validate(cc *Context) error

	Execute(ctx context.Context, cc *Context) *types.HandlerResult
}

// Context is the invocation bundle passed to exactly one handler per
// dispatch. It is not retained after the call returns.
type Context struct {
	// Input is the raw text after the matched prefix was stripped.
	Input string
	// ResourcePath and Prompt are Input split on the first whitespace run.
	ResourcePath string
	Prompt       string

	Backend types.Backend
	Files   types.FileStore
	Stager  types.Stager
	Diff    *diff.Engine
	Prompts config.Prompts
	Runner  *runner.Runner
	Pages   *browser.Snapshotter
}

// ParseDirective strips the handler's prefix from input and splits the
// remainder into (resourcePath, prompt) on the first whitespace run.
func ParseDirective(h Handler, input string) (resourcePath, prompt string) {
	rest := strings.TrimSpace(input[len(h.CommandPrefix()):])
	cut := strings.IndexFunc(rest, unicode.IsSpace)
	if cut < 0 {
		return rest, ""
	}
	return rest[:cut], strings.TrimSpace(rest[cut:])
}

// Invoke runs a handler with the panic boundary the dispatch contract
// requires: a panicking handler becomes a failed result, never a crashed
// session.
func Invoke(ctx context.Context, h Handler, cc *Context) (res *types.HandlerResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.HandlerError("handler %s panicked: %v", h.ID(), r)
			res = &types.HandlerResult{
				Success: false,
				Message: fmt.Sprintf("%s failed unexpectedly: %v", h.Name(), r),
			}
		}
	}()

	if err := h.Validate(cc); err != nil {
		return failure(err)
	}
	return h.Execute(ctx, cc)
}

// base carries the descriptor fields shared by every built-in handler.
type base struct {
	id          string
	name        string
	description string
	prefix      string
}

func (b base) ID() string            { return b.id }
func (b base) Name() string          { return b.name }
func (b base) Description() string   { return b.description }
func (b base) CommandPrefix() string { return b.prefix }

func (b base) CanHandle(input string) bool {
	return strings.HasPrefix(input, b.prefix)
}

func (b base) Validate(cc *Context) error {
	if cc.ResourcePath == "" {
		return &types.NoActiveResourceError{Want: "resource path"}
	}
	return nil
}

// failure folds an error into the uniform failed-result shape.
func failure(err error) *types.HandlerResult {
	return &types.HandlerResult{Success: false, Message: err.Error()}
}
