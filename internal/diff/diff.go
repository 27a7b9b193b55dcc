// Package diff computes line-granularity diffs using the sergi/go-diff
// engine. The output is a flat ordered partition: every line of both inputs
// appears exactly once as unchanged, removed, or added, with removed lines
// preceding the added lines that replace them. There is no hunk/context
// windowing; rendering is a separate deterministic step and staging a change
// is the caller's explicit decision.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// Engine wraps a diffmatchpatch instance configured for code diffs.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates a diff engine.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // Disable timeout for accuracy
	return &Engine{dmp: dmp}
}

// Compute produces the ordered line partition between old and new content.
func (e *Engine) Compute(oldContent, newContent string) []types.DiffLine {
	timer := logging.StartTimer(logging.CategoryDiff, "compute")
	defer timer.Stop()

	// Line-level reduction avoids newline boundary artifacts when converting
	// to line ops. A final line without a separator must still tokenize the
	// same as its terminated counterpart, so both sides are normalized.
	a, b, lineArray := e.dmp.DiffLinesToChars(terminated(oldContent), terminated(newContent))
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	var out []types.DiffLine
	for _, d := range diffs {
		lines := splitLines(d.Text)
		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out = append(out, types.DiffLine{Kind: types.DiffUnchanged, Text: line})
			case diffmatchpatch.DiffDelete:
				out = append(out, types.DiffLine{Kind: types.DiffRemoved, Text: line})
			case diffmatchpatch.DiffInsert:
				out = append(out, types.DiffLine{Kind: types.DiffAdded, Text: line})
			}
		}
	}
	return out
}

// terminated guarantees a trailing line separator on non-empty content.
func terminated(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// splitLines splits an op's text into its component lines. In line mode each
// op text is a concatenation of whole lines, so a trailing separator yields
// one empty fragment that is not a line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Render produces the human-viewable form: a header naming the resource,
// then exactly one output line per DiffLine in order, prefixed "+", "-",
// or " ".
func (e *Engine) Render(resourceKey string, lines []types.DiffLine) string {
	var sb strings.Builder
	sb.WriteString("--- a/" + resourceKey + "\n")
	sb.WriteString("+++ b/" + resourceKey + "\n")
	for _, l := range lines {
		switch l.Kind {
		case types.DiffAdded:
			sb.WriteString("+")
		case types.DiffRemoved:
			sb.WriteString("-")
		default:
			sb.WriteString(" ")
		}
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewContent replays the partition keeping unchanged and added lines,
// reconstructing the new side.
func NewContent(lines []types.DiffLine) string {
	var kept []string
	for _, l := range lines {
		if l.Kind == types.DiffUnchanged || l.Kind == types.DiffAdded {
			kept = append(kept, l.Text)
		}
	}
	return strings.Join(kept, "\n")
}

// OldContent replays the partition keeping unchanged and removed lines,
// reconstructing the old side.
func OldContent(lines []types.DiffLine) string {
	var kept []string
	for _, l := range lines {
		if l.Kind == types.DiffUnchanged || l.Kind == types.DiffRemoved {
			kept = append(kept, l.Text)
		}
	}
	return strings.Join(kept, "\n")
}

// Counts returns the number of added and removed lines in a partition.
func Counts(lines []types.DiffLine) (added, removed int) {
	for _, l := range lines {
		switch l.Kind {
		case types.DiffAdded:
			added++
		case types.DiffRemoved:
			removed++
		}
	}
	return added, removed
}
