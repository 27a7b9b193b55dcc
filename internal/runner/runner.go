// Package runner executes workspace programs for the run and test handlers.
// A Runner is an explicit, scoped resource owned by its caller; nothing here
// is a lazily-created ambient singleton, and every execution is bounded by a
// context deadline.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"codewright/internal/extract"
	"codewright/internal/logging"
	"codewright/internal/types"
)

// Plan describes one command execution proposed by the backend.
type Plan struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// String renders the plan as a shell-like line for display.
func (p Plan) String() string {
	if len(p.Args) == 0 {
		return p.Command
	}
	return p.Command + " " + strings.Join(p.Args, " ")
}

// Runner executes commands inside the workspace with a bounded lifetime.
type Runner struct {
	workDir string
	timeout time.Duration
}

// New creates a runner rooted at workDir. A non-positive timeout falls back
// to two minutes.
func New(workDir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Runner{workDir: workDir, timeout: timeout}
}

// ParsePlan extracts a Plan from a backend response. The response may wrap
// the JSON in prose or a code fence. A response that cannot be parsed
// produces a MalformedBackendOutputError; callers fall back to DefaultPlan.
func ParsePlan(response string) (Plan, error) {
	raw := extract.Code(response)

	var p Plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Plan{}, &types.MalformedBackendOutputError{Want: "execution plan JSON", Err: err}
	}
	if p.Command == "" {
		return Plan{}, &types.MalformedBackendOutputError{Want: "execution plan JSON", Err: fmt.Errorf("empty command")}
	}
	return p, nil
}

// DefaultPlan is the conservative fallback used when the backend's plan is
// malformed: run the resource with the stock interpreter for its extension.
func DefaultPlan(resourcePath string) Plan {
	ext := strings.ToLower(filepath.Ext(resourcePath))
	switch ext {
	case ".go":
		return Plan{Command: "go", Args: []string{"run", resourcePath}}
	case ".py":
		return Plan{Command: "python3", Args: []string{resourcePath}}
	case ".js", ".mjs":
		return Plan{Command: "node", Args: []string{resourcePath}}
	case ".sh":
		return Plan{Command: "sh", Args: []string{resourcePath}}
	case ".rb":
		return Plan{Command: "ruby", Args: []string{resourcePath}}
	default:
		// No interpreter mapping: attempt direct execution.
		return Plan{Command: resourcePath}
	}
}

// TestPlan returns the test invocation for a resource, keyed by extension.
func TestPlan(resourcePath string) Plan {
	ext := strings.ToLower(filepath.Ext(resourcePath))
	dir := filepath.Dir(resourcePath)
	switch ext {
	case ".go":
		return Plan{Command: "go", Args: []string{"test", "./" + dir + "/..."}}
	case ".py":
		return Plan{Command: "python3", Args: []string{"-m", "pytest", dir}}
	case ".js", ".mjs", ".ts":
		return Plan{Command: "npx", Args: []string{"jest", dir}}
	default:
		return Plan{Command: "make", Args: []string{"test"}}
	}
}

// Run executes a plan and returns its combined output. The error is non-nil
// for spawn failures and non-zero exits alike; partial output is returned
// either way.
func (r *Runner) Run(ctx context.Context, plan Plan) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logging.Runner("executing: %s (dir=%s)", plan.String(), r.workDir)
	start := time.Now()

	cmd := exec.CommandContext(runCtx, plan.Command, plan.Args...)
	cmd.Dir = r.workDir
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)
	output := string(out)

	if err != nil {
		logging.RunnerError("%s failed after %v: %v (output_len=%d)", plan.Command, duration, err, len(output))
		return output, fmt.Errorf("execution failed: %w", err)
	}

	logging.Runner("%s completed in %v (output_len=%d)", plan.Command, duration, len(output))
	return output, nil
}
