package types

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a read of a resource that does not exist. It is wrapped
// by ResourceIOError so callers can test with errors.Is.
var ErrNotFound = errors.New("resource not found")

// NoActiveResourceError reports that a handler needed a resource path or
// content that was missing from its invocation context.
type NoActiveResourceError struct {
	Want string // what was missing, e.g. "resource path"
}

func (e *NoActiveResourceError) Error() string {
	return fmt.Sprintf("no active resource: %s required", e.Want)
}

// UnmatchedCommandError reports that no registered handler's prefix matched
// the input. Help carries the rendered prefix+description list so the
// message surfaced to the user is self-explanatory.
type UnmatchedCommandError struct {
	Input string
	Help  string
}

func (e *UnmatchedCommandError) Error() string {
	return fmt.Sprintf("no command matches %q", e.Input)
}

// ResourceIOError wraps a read/write failure against the file collaborator.
type ResourceIOError struct {
	Op   string // "read", "write", "delete", "mkdir"
	Path string
	Err  error
}

func (e *ResourceIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceIOError) Unwrap() error { return e.Err }

// BackendError wraps a failed text-generation call.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("backend %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("backend: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// MalformedBackendOutputError reports that structured data expected from the
// backend (e.g. a JSON execution plan) could not be parsed. Callers in the
// run-analysis flow fall back to a conservative default instead of failing.
type MalformedBackendOutputError struct {
	Want string
	Err  error
}

func (e *MalformedBackendOutputError) Error() string {
	return fmt.Sprintf("malformed backend output: expected %s: %v", e.Want, e.Err)
}

func (e *MalformedBackendOutputError) Unwrap() error { return e.Err }

// DuplicateHandlerError reports a second registration under an already-taken
// handler id. Registration happens once at startup, so this is fatal.
type DuplicateHandlerError struct {
	ID string
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("handler %q already registered", e.ID)
}
