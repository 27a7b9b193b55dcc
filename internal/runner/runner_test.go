package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"codewright/internal/types"
)

func TestParsePlan_PlainJSON(t *testing.T) {
	p, err := ParsePlan(`{"command": "go", "args": ["run", "main.go"]}`)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.Command != "go" || len(p.Args) != 2 {
		t.Errorf("unexpected plan %+v", p)
	}
}

func TestParsePlan_FencedJSON(t *testing.T) {
	response := "Here is the plan:\n```json\n{\"command\": \"python3\", \"args\": [\"app.py\"]}\n```"
	p, err := ParsePlan(response)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.Command != "python3" {
		t.Errorf("unexpected command %q", p.Command)
	}
}

func TestParsePlan_MalformedIsTypedError(t *testing.T) {
	_, err := ParsePlan("I think you should probably just run it manually.")
	if err == nil {
		t.Fatal("expected error")
	}
	var malformed *types.MalformedBackendOutputError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedBackendOutputError, got %T", err)
	}
}

func TestParsePlan_EmptyCommandRejected(t *testing.T) {
	_, err := ParsePlan(`{"command": "", "args": []}`)
	var malformed *types.MalformedBackendOutputError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedBackendOutputError, got %v", err)
	}
}

func TestDefaultPlan_ByExtension(t *testing.T) {
	cases := []struct {
		path string
		cmd  string
	}{
		{"main.go", "go"},
		{"script.py", "python3"},
		{"app.js", "node"},
		{"run.sh", "sh"},
		{"bin/tool", "bin/tool"},
	}
	for _, tc := range cases {
		if p := DefaultPlan(tc.path); p.Command != tc.cmd {
			t.Errorf("DefaultPlan(%q).Command = %q, want %q", tc.path, p.Command, tc.cmd)
		}
	}
}

func TestRun_CapturesOutput(t *testing.T) {
	r := New(t.TempDir(), 10*time.Second)
	out, err := r.Run(context.Background(), Plan{Command: "echo", Args: []string{"hello", "runner"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "hello runner" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_NonZeroExitIsError(t *testing.T) {
	r := New(t.TempDir(), 10*time.Second)
	_, err := r.Run(context.Background(), Plan{Command: "sh", Args: []string{"-c", "exit 3"}})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestRun_TimeoutBounds(t *testing.T) {
	r := New(t.TempDir(), 100*time.Millisecond)
	start := time.Now()
	_, err := r.Run(context.Background(), Plan{Command: "sleep", Args: []string{"5"}})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not bound execution")
	}
}
