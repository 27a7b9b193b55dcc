package command

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"codewright/internal/runner"
	"codewright/internal/types"
)

type testHandler struct {
	base
}

// NewTestHandler builds the '@test' test generation-and-run handler. It
// stages a test file next to the target and, when a runner is wired,
// reports the current suite result so the reviewer sees the baseline the
// new tests land on.
func NewTestHandler() Handler {
	return &testHandler{base{
		id:          "test",
		name:        "Test",
		description: "generate tests for a file and run the suite: @test <path> [notes]",
		prefix:      "@test",
	}}
}

// TestFilePath derives the conventional sibling test file for a source
// path: foo.go becomes foo_test.go, anything else gets _test before its
// extension.
func TestFilePath(resourcePath string) string {
	ext := path.Ext(resourcePath)
	stem := strings.TrimSuffix(resourcePath, ext)
	return stem + "_test" + ext
}

func (h *testHandler) Execute(ctx context.Context, cc *Context) *types.HandlerResult {
	source, err := cc.Files.ReadFile(cc.ResourcePath)
	if err != nil {
		return failure(err)
	}

	testPath := TestFilePath(cc.ResourcePath)
	existing, err := cc.Files.ReadFile(testPath)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return failure(err)
		}
		existing = ""
	}

	prompt := fmt.Sprintf(cc.Prompts.Test, cc.Prompt, cc.ResourcePath, source)
	res := stageRewrite(ctx, cc, testPath, existing, prompt, "test")
	if !res.Success || cc.Runner == nil {
		return res
	}

	out, runErr := cc.Runner.Run(ctx, runner.TestPlan(cc.ResourcePath))
	if runErr != nil {
		res.Message += fmt.Sprintf("\nCurrent suite fails before the change: %v", runErr)
	} else {
		res.Message += "\nCurrent suite passes before the change."
	}
	if out = strings.TrimSpace(out); out != "" {
		res.Content += "\n\n" + out
	}
	return res
}
