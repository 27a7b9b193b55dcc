// Package extract pulls a single best-candidate code artifact out of a
// loosely structured model response. Responses mix prose with zero or more
// fenced code segments; the caller wants exactly one deterministic blob.
package extract

import (
	"regexp"
	"strings"

	"codewright/internal/logging"
)

// Elided-code placeholders the backend sometimes re-emits verbatim when it
// shortens a file. Three syntactic variants: line comment, block comment,
// and markup comment.
var elisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^[ \t]*//+[ \t]*\.\.\..*$\n?`),
	regexp.MustCompile(`(?s)/\*[ \t]*\.\.\..*?\*/[ \t]*\n?`),
	regexp.MustCompile(`(?s)<!--[ \t]*\.\.\..*?-->[ \t]*\n?`),
}

const fence = "```"

// Code extracts the best candidate code segment from a model response.
//
// All fenced segments are collected (an optional language tag on the opening
// fence is discarded), elision placeholders are stripped from each, and the
// longest surviving segment wins; ties keep the first found. When the
// response contains no complete fenced segment, the trimmed input is
// returned verbatim. An unmatched opening fence is simply not a match.
func Code(response string) string {
	segs := segments(response)
	if len(segs) == 0 {
		logging.Get(logging.CategoryExtract).Debug("no fenced segment, returning trimmed input (len=%d)", len(response))
		return strings.TrimSpace(response)
	}

	best := segs[0]
	for _, s := range segs[1:] {
		if len(s) > len(best) {
			best = s
		}
	}
	logging.Get(logging.CategoryExtract).Debug("selected segment len=%d of %d candidates", len(best), len(segs))
	return best
}

// segments scans for complete fenced segments and returns their cleaned
// contents in order of appearance. Empty contents are valid candidates.
func segments(text string) []string {
	var out []string
	rest := text
	for {
		open := strings.Index(rest, fence)
		if open == -1 {
			break
		}
		// The opening fence line may carry a language tag; content starts
		// after the first newline.
		afterTag := rest[open+len(fence):]
		nl := strings.IndexByte(afterTag, '\n')
		if nl == -1 {
			// Opening fence with nothing after it: not a match.
			break
		}
		body := afterTag[nl+1:]
		closing := strings.Index(body, fence)
		if closing == -1 {
			// Unterminated fence: not a match.
			break
		}
		out = append(out, clean(body[:closing]))
		rest = body[closing+len(fence):]
	}
	return out
}

// clean strips elision placeholders and trims surrounding whitespace.
func clean(segment string) string {
	for _, re := range elisionPatterns {
		segment = re.ReplaceAllString(segment, "")
	}
	return strings.TrimSpace(segment)
}
