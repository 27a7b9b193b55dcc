package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"codewright/internal/types"
)

func TestCompute_ExactPartition(t *testing.T) {
	engine := NewEngine()
	got := engine.Compute("keep\nold body\nkeep2", "keep\nnew body\nkeep2")

	want := []types.DiffLine{
		{Kind: types.DiffUnchanged, Text: "keep"},
		{Kind: types.DiffRemoved, Text: "old body"},
		{Kind: types.DiffAdded, Text: "new body"},
		{Kind: types.DiffUnchanged, Text: "keep2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partition mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_SimpleAddition(t *testing.T) {
	oldContent := "line1\nline2"
	newContent := "line1\nline2\nline3"

	engine := NewEngine()
	lines := engine.Compute(oldContent, newContent)

	var added, unchanged, removed int
	for _, l := range lines {
		switch l.Kind {
		case types.DiffAdded:
			added++
			if l.Text != "line3" {
				t.Errorf("expected added line %q, got %q", "line3", l.Text)
			}
		case types.DiffUnchanged:
			unchanged++
		case types.DiffRemoved:
			removed++
		}
	}

	if added != 1 || unchanged != 2 || removed != 0 {
		t.Errorf("expected 1 added / 2 unchanged / 0 removed, got %d/%d/%d", added, unchanged, removed)
	}
}

func TestCompute_SimpleDeletion(t *testing.T) {
	oldContent := "line1\nline2\nline3\nline4"
	newContent := "line1\nline2\nline4"

	engine := NewEngine()
	lines := engine.Compute(oldContent, newContent)

	hasRemoval := false
	for _, l := range lines {
		if l.Kind == types.DiffRemoved && l.Text == "line3" {
			hasRemoval = true
		}
	}
	if !hasRemoval {
		t.Error("expected to find removed line 'line3'")
	}
}

func TestCompute_RemovedBeforeAdded(t *testing.T) {
	oldContent := "keep\nold body\nkeep2"
	newContent := "keep\nnew body\nkeep2"

	engine := NewEngine()
	lines := engine.Compute(oldContent, newContent)

	removedAt, addedAt := -1, -1
	for i, l := range lines {
		if l.Kind == types.DiffRemoved && removedAt == -1 {
			removedAt = i
		}
		if l.Kind == types.DiffAdded && addedAt == -1 {
			addedAt = i
		}
	}
	if removedAt == -1 || addedAt == -1 {
		t.Fatalf("expected both removed and added lines, got %+v", lines)
	}
	if removedAt > addedAt {
		t.Errorf("removed line at %d should precede added line at %d", removedAt, addedAt)
	}
}

// Replaying the partition must reconstruct both sides exactly.
func TestCompute_ReconstructsBothSides(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
	}{
		{"addition", "line1\nline2", "line1\nline2\nline3"},
		{"deletion", "a\nb\nc", "a\nc"},
		{"replacement", "func a() {\n\treturn 1\n}", "func a() {\n\treturn 2\n}"},
		{"disjoint", "completely\ndifferent", "nothing\nshared\nhere"},
		{"identical", "same\ncontent", "same\ncontent"},
		{"empty old", "", "brand\nnew"},
		{"empty new", "goodbye\nworld", ""},
		{"both empty", "", ""},
		{"interleaved", "one\ntwo\nthree\nfour\nfive", "one\n2\nthree\n4\nfive\nsix"},
	}

	engine := NewEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := engine.Compute(tc.old, tc.new)
			if got := OldContent(lines); got != tc.old {
				t.Errorf("old side: expected %q, got %q", tc.old, got)
			}
			if got := NewContent(lines); got != tc.new {
				t.Errorf("new side: expected %q, got %q", tc.new, got)
			}
		})
	}
}

func TestCompute_EveryLineAppearsOnce(t *testing.T) {
	oldContent := "a\nb\nc\nd"
	newContent := "a\nx\nc\ny\nz"

	engine := NewEngine()
	lines := engine.Compute(oldContent, newContent)

	oldSeen := 0
	newSeen := 0
	for _, l := range lines {
		if l.Kind == types.DiffUnchanged || l.Kind == types.DiffRemoved {
			oldSeen++
		}
		if l.Kind == types.DiffUnchanged || l.Kind == types.DiffAdded {
			newSeen++
		}
	}
	if oldSeen != 4 {
		t.Errorf("expected 4 old-side lines, got %d", oldSeen)
	}
	if newSeen != 5 {
		t.Errorf("expected 5 new-side lines, got %d", newSeen)
	}
}

func TestRender_OneOutputLinePerDiffLine(t *testing.T) {
	engine := NewEngine()
	lines := engine.Compute("line1\nline2", "line1\nline2\nline3")
	rendered := engine.Render("a.txt", lines)

	out := strings.Split(strings.TrimSuffix(rendered, "\n"), "\n")
	// Two header lines plus one line per DiffLine.
	if len(out) != 2+len(lines) {
		t.Fatalf("expected %d rendered lines, got %d:\n%s", 2+len(lines), len(out), rendered)
	}
	if out[0] != "--- a/a.txt" || out[1] != "+++ b/a.txt" {
		t.Errorf("unexpected header: %q %q", out[0], out[1])
	}
	if out[len(out)-1] != "+line3" {
		t.Errorf("expected final rendered line %q, got %q", "+line3", out[len(out)-1])
	}
}

func TestRender_Deterministic(t *testing.T) {
	engine := NewEngine()
	lines := engine.Compute("x\ny", "x\nz")
	first := engine.Render("f.go", lines)
	second := engine.Render("f.go", lines)
	if first != second {
		t.Error("rendering the same partition twice produced different output")
	}
}

func TestCounts(t *testing.T) {
	engine := NewEngine()
	lines := engine.Compute("a\nb", "a\nc\nd")
	added, removed := Counts(lines)
	if added != 2 || removed != 1 {
		t.Errorf("expected 2 added / 1 removed, got %d/%d", added, removed)
	}
}
