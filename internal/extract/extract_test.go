package extract

import (
	"testing"
)

func TestCode_SingleFencedSegment(t *testing.T) {
	response := "Sure! ```\nconst x = 1;\n``` done"
	got := Code(response)
	if got != "const x = 1;" {
		t.Errorf("expected %q, got %q", "const x = 1;", got)
	}
}

func TestCode_LanguageTagDiscarded(t *testing.T) {
	response := "Here you go:\n```go\npackage main\n\nfunc main() {}\n```"
	got := Code(response)
	want := "package main\n\nfunc main() {}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCode_NoFenceReturnsTrimmedInput(t *testing.T) {
	response := "  just prose, no code here  "
	got := Code(response)
	if got != "just prose, no code here" {
		t.Errorf("expected trimmed input, got %q", got)
	}
}

func TestCode_LongestSegmentWins(t *testing.T) {
	response := "```\nshort\n```\nsome prose\n```\na much longer candidate\n```"
	got := Code(response)
	if got != "a much longer candidate" {
		t.Errorf("expected longest segment, got %q", got)
	}
}

func TestCode_TieKeepsFirst(t *testing.T) {
	response := "```\naaaa\n```\n```\nbbbb\n```"
	got := Code(response)
	if got != "aaaa" {
		t.Errorf("expected first of tied segments, got %q", got)
	}
}

func TestCode_UnterminatedFenceIgnored(t *testing.T) {
	response := "```\ncomplete\n```\ntrailing ```\nnot closed"
	got := Code(response)
	if got != "complete" {
		t.Errorf("expected only the complete segment, got %q", got)
	}
}

func TestCode_OnlyUnterminatedFence(t *testing.T) {
	response := "```go\nfunc broken() {"
	got := Code(response)
	// No complete segment: trimmed input comes back verbatim.
	if got != "```go\nfunc broken() {" {
		t.Errorf("expected verbatim input, got %q", got)
	}
}

func TestCode_EmptySegmentIsValid(t *testing.T) {
	response := "```\n```"
	got := Code(response)
	if got != "" {
		t.Errorf("expected empty candidate, got %q", got)
	}
}

func TestCode_StripsElisionMarkers(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "line comment",
			in:   "```go\nfunc a() {}\n// ... existing code ...\nfunc b() {}\n```",
			want: "func a() {}\nfunc b() {}",
		},
		{
			name: "block comment",
			in:   "```\nfunc a() {}\n/* ... rest of code ... */\nfunc b() {}\n```",
			want: "func a() {}\nfunc b() {}",
		},
		{
			name: "markup comment",
			in:   "```html\n<div></div>\n<!-- ... unchanged markup ... -->\n<p></p>\n```",
			want: "<div></div>\n<p></p>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Code(tc.in)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCode_Idempotent(t *testing.T) {
	response := "Some explanation.\n```go\nx := compute()\n// ... existing code ...\nreturn x\n```\nHope that helps!"
	first := Code(response)
	rewrapped := "```go\n" + first + "\n```"
	second := Code(rewrapped)
	if first != second {
		t.Errorf("extraction not idempotent: first=%q second=%q", first, second)
	}
}

func TestCode_NeverLongerThanLongestBlock(t *testing.T) {
	response := "prose prose prose\n```\nabc\n```\nmore prose\n```\nde\n```"
	got := Code(response)
	if len(got) > 3 {
		t.Errorf("result longer than longest block: %q", got)
	}
}
