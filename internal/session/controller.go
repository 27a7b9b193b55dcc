// Package session owns the conversation: history, the query/action mode,
// dispatch into the command registry, and the apply/reject lifecycle of
// pending changes. It speaks the UI message protocol and nothing else.
package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"codewright/internal/browser"
	"codewright/internal/changeset"
	"codewright/internal/command"
	"codewright/internal/config"
	"codewright/internal/diff"
	"codewright/internal/logging"
	"codewright/internal/runner"
	"codewright/internal/store"
	"codewright/internal/types"
)

// Options wires the controller's collaborators. Backend, Files, Changes,
// Registry, and Emit are required; Runner, Pages, and Transcripts are
// optional and disable their features when nil.
type Options struct {
	Backend  types.Backend
	Files    types.FileStore
	Changes  *changeset.Store
	Registry *command.Registry
	Emit     types.Emitter

	Prompts func() config.Prompts
	Runner  *runner.Runner
	Pages   *browser.Snapshotter

	// Transcripts persists turns and the apply audit trail.
	Transcripts *store.Store
	// SessionID resumes a persisted session; empty starts a fresh one.
	SessionID string
}

// Controller is the session controller. One instance per interactive
// session; all entry points are safe for concurrent use, but only one
// submission is ever in flight (a second is rejected with a busy notice).
type Controller struct {
	id       string
	backend  types.Backend
	files    types.FileStore
	changes  *changeset.Store
	registry *command.Registry
	emit     types.Emitter
	prompts  func() config.Prompts
	runner   *runner.Runner
	pages    *browser.Snapshotter
	story    *store.Store

	busy *semaphore.Weighted

	mu      sync.Mutex
	mode    types.Mode
	history []types.ChatTurn
}

// New builds a controller in query mode with an empty history. When a
// transcript store and session id are supplied, the prior history is
// restored.
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil || opts.Files == nil || opts.Changes == nil || opts.Registry == nil || opts.Emit == nil {
		return nil, fmt.Errorf("session: backend, files, changes, registry, and emit are required")
	}
	prompts := opts.Prompts
	if prompts == nil {
		defaults := config.DefaultPrompts()
		prompts = func() config.Prompts { return defaults }
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	c := &Controller{
		id:       id,
		backend:  opts.Backend,
		files:    opts.Files,
		changes:  opts.Changes,
		registry: opts.Registry,
		emit:     opts.Emit,
		prompts:  prompts,
		runner:   opts.Runner,
		pages:    opts.Pages,
		story:    opts.Transcripts,
		busy:     semaphore.NewWeighted(1),
		mode:     types.ModeQuery,
	}

	if c.story != nil && opts.SessionID != "" {
		turns, err := c.story.LoadTurns(opts.SessionID)
		if err != nil {
			return nil, fmt.Errorf("restore session %s: %w", opts.SessionID, err)
		}
		c.history = turns
		logging.Session("restored session %s with %d turns", opts.SessionID, len(turns))
	}
	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Mode returns the current interaction mode.
func (c *Controller) Mode() types.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// History returns a copy of the conversation so far.
func (c *Controller) History() []types.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.ChatTurn, len(c.history))
	copy(out, c.history)
	return out
}

// Handle routes one inbound protocol message.
func (c *Controller) Handle(ctx context.Context, in types.Inbound) {
	switch in.Type {
	case types.InboundSendMessage:
		c.Submit(ctx, in.Message)
	case types.InboundSetMode:
		c.SetMode(in.Mode)
	case types.InboundClearChat:
		c.Clear()
	default:
		logging.SessionError("unknown inbound message type %q", in.Type)
	}
}

// Submit processes one user message to completion: append it, run the
// query or action pipeline, append the assistant's reply, and emit the
// updated history. A submission arriving while another is in flight is
// rejected with a busy notice and leaves history untouched.
func (c *Controller) Submit(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	if !c.busy.TryAcquire(1) {
		logging.Session("rejected concurrent submission")
		c.emit(types.Outbound{
			Type:    types.OutboundAddMessage,
			Message: &types.ChatTurn{Role: types.RoleAssistant, Content: "Still working on the previous instruction. Send it again in a moment.", Time: time.Now()},
		})
		return
	}
	defer c.busy.Release(1)

	c.emit(types.Outbound{Type: types.OutboundSetLoading, IsLoading: true})
	defer c.emit(types.Outbound{Type: types.OutboundSetLoading, IsLoading: false})

	c.appendTurn(types.ChatTurn{Role: types.RoleUser, Content: message, Time: time.Now()})

	var reply string
	switch c.Mode() {
	case types.ModeAction:
		reply = c.runAction(ctx, message)
	default:
		reply = c.runQuery(ctx, message)
	}

	c.appendTurn(types.ChatTurn{Role: types.RoleAssistant, Content: reply, Time: time.Now()})
	c.emitHistory()
}

// runQuery expands @token resource references and sends the full history
// to the backend.
func (c *Controller) runQuery(ctx context.Context, message string) string {
	expanded := c.expandResources(message)

	turns := c.History()
	if expanded != message {
		// The backend sees the expanded text; history keeps what the
		// user typed.
		turns[len(turns)-1].Content = expanded
	}

	response, err := c.backend.Generate(ctx, turns)
	if err != nil {
		logging.SessionError("query generation failed: %v", err)
		return fmt.Sprintf("The request failed: %v", err)
	}
	return response
}

// resourceToken matches @name references in query-mode input. A bare '@'
// is not a reference.
var resourceToken = regexp.MustCompile(`@(\S+)`)

// expandResources replaces each @token with an inline inclusion of that
// resource's content. Expansion is best effort: unreadable references are
// logged and left in place.
func (c *Controller) expandResources(message string) string {
	return resourceToken.ReplaceAllStringFunc(message, func(match string) string {
		path := match[1:]
		content, err := c.files.ReadFile(path)
		if err != nil {
			logging.Session("resource expansion skipped for %s: %v", path, err)
			return match
		}
		return fmt.Sprintf("%s\n```\n%s\n```\n", path, content)
	})
}

// runAction dispatches through the registry and folds the handler result
// into one assistant reply.
func (c *Controller) runAction(ctx context.Context, message string) string {
	h, ok := c.registry.Find(message)
	if !ok {
		uerr := &types.UnmatchedCommandError{Input: message, Help: c.registry.Help()}
		logging.Dispatch("no handler for %q", message)
		return fmt.Sprintf("%s\n\n%s", uerr.Error(), uerr.Help)
	}

	resourcePath, prompt := command.ParseDirective(h, message)
	logging.Dispatch("dispatching %q to %s (resource=%q)", message, h.ID(), resourcePath)

	cc := &command.Context{
		Input:        strings.TrimSpace(message[len(h.CommandPrefix()):]),
		ResourcePath: resourcePath,
		Prompt:       prompt,
		Backend:      c.backend,
		Files:        c.files,
		Stager:       c.changes,
		Diff:         diff.NewEngine(),
		Prompts:      c.prompts(),
		Runner:       c.runner,
		Pages:        c.pages,
	}

	res := command.Invoke(ctx, h, cc)
	return formatResult(res)
}

// formatResult renders a handler result as one chat message, attaching the
// artifact (diff or captured output) as a fenced block.
func formatResult(res *types.HandlerResult) string {
	msg := res.Message
	if !res.Success && msg == "" {
		msg = "The command failed."
	}
	if res.Content != "" {
		msg += fmt.Sprintf("\n\n```diff\n%s\n```", strings.TrimRight(res.Content, "\n"))
	}
	if res.Stats != nil && res.Stats.BackendCalls > 0 {
		msg += fmt.Sprintf("\n\n_%d prompt tokens, %d output tokens, %s_",
			res.Stats.PromptTokens, res.Stats.OutputTokens, res.Stats.Elapsed.Round(time.Millisecond))
	}
	return msg
}

// SetMode switches between query and action. The history is cleared
// wholesale and one synthetic assistant turn describes the new mode's
// grammar.
func (c *Controller) SetMode(mode types.Mode) {
	if !mode.Valid() {
		logging.SessionError("ignoring invalid mode %q", mode)
		return
	}

	c.mu.Lock()
	c.mode = mode
	c.history = nil
	c.mu.Unlock()

	if c.story != nil {
		if err := c.story.ClearSession(c.id); err != nil {
			logging.SessionError("clear transcript on mode switch: %v", err)
		}
	}

	c.appendTurn(types.ChatTurn{Role: types.RoleAssistant, Content: c.grammarNotice(mode), Time: time.Now()})

	c.emit(types.Outbound{Type: types.OutboundSetMode, Mode: mode})
	c.emitHistory()
	logging.Session("mode switched to %s", mode)
}

func (c *Controller) grammarNotice(mode types.Mode) string {
	if mode == types.ModeAction {
		return "Action mode. Instructions are dispatched by prefix.\n\n" + c.registry.Help()
	}
	return "Query mode. Ask anything; reference a file inline with @<path> to include its content."
}

// Clear empties the history without changing mode.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()

	if c.story != nil {
		if err := c.story.ClearSession(c.id); err != nil {
			logging.SessionError("clear transcript: %v", err)
		}
	}
	c.emitHistory()
}

// ApplyPending writes every staged change to disk, records the audit
// trail, and reports per-resource outcomes. The pending set is empty
// afterward regardless of individual failures.
func (c *Controller) ApplyPending() {
	outcomes := c.changes.ApplyAll()
	if len(outcomes) == 0 {
		c.notice("Nothing is staged.")
		return
	}

	var sb strings.Builder
	applied := 0
	for _, o := range outcomes {
		if o.Err == nil {
			applied++
			fmt.Fprintf(&sb, "applied %s\n", o.Key)
			if c.story != nil {
				c.story.RecordApply(c.id, o.Key, true, "")
			}
			continue
		}
		fmt.Fprintf(&sb, "failed %s: %v\n", o.Key, o.Err)
		if c.story != nil {
			c.story.RecordApply(c.id, o.Key, false, o.Err.Error())
		}
	}

	c.notice(fmt.Sprintf("Applied %d of %d staged changes.\n%s", applied, len(outcomes), strings.TrimRight(sb.String(), "\n")))
}

// RejectPending discards every staged change without writing anything.
func (c *Controller) RejectPending() {
	n := c.changes.RejectAll()
	if n == 0 {
		c.notice("Nothing is staged.")
		return
	}
	c.notice(fmt.Sprintf("Rejected %d staged change(s).", n))
}

// notice appends an assistant turn and pushes the history to the UI.
func (c *Controller) notice(text string) {
	c.appendTurn(types.ChatTurn{Role: types.RoleAssistant, Content: text, Time: time.Now()})
	c.emitHistory()
}

func (c *Controller) appendTurn(turn types.ChatTurn) {
	c.mu.Lock()
	c.history = append(c.history, turn)
	c.mu.Unlock()

	if c.story != nil {
		if err := c.story.SaveTurn(c.id, turn); err != nil {
			logging.SessionError("persist turn: %v", err)
		}
	}
}

func (c *Controller) emitHistory() {
	c.emit(types.Outbound{Type: types.OutboundUpdateChatHistory, History: c.History()})
}
