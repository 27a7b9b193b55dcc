package command

import (
	"context"
	"fmt"
	"time"

	"codewright/internal/backend"
	"codewright/internal/diff"
	"codewright/internal/extract"
	"codewright/internal/logging"
	"codewright/internal/types"
)

// stageRewrite is the generate-extract-diff-stage pipeline shared by the
// content-rewriting handlers. It reads targetPath, asks the backend for a
// full replacement using the rendered prompt, extracts the code artifact,
// and stages the resulting change for review. Nothing is written to disk
// here; that happens only on apply.
func stageRewrite(ctx context.Context, cc *Context, targetPath, original, renderedPrompt, verb string) *types.HandlerResult {
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryHandler, verb+" "+targetPath)
	defer timer.Stop()

	turns := []types.ChatTurn{{Role: types.RoleUser, Content: renderedPrompt}}
	response, err := cc.Backend.Generate(ctx, turns)
	if err != nil {
		return failure(err)
	}

	proposed := extract.Code(response)
	lines := cc.Diff.Compute(original, proposed)
	rendered := cc.Diff.Render(targetPath, lines)
	cc.Stager.Stage(targetPath, original, proposed, rendered)

	added, removed := diff.Counts(lines)
	logging.Handler("%s staged %s (+%d -%d)", verb, targetPath, added, removed)

	return &types.HandlerResult{
		Success: true,
		Message: fmt.Sprintf("Staged %s for %s (+%d -%d). Review the diff, then apply or reject.", verb, targetPath, added, removed),
		Content: rendered,
		Stats: &types.InvocationStats{
			PromptTokens: backend.CountTokens(renderedPrompt),
			OutputTokens: backend.CountTokens(response),
			BackendCalls: 1,
			Elapsed:      time.Since(start),
		},
	}
}

// rewriteHandler covers the three handlers whose only difference is the
// prompt template: edit, doc, and fix.
type rewriteHandler struct {
	base
	verb     string
	template func(cc *Context) string
}

func (h *rewriteHandler) Execute(ctx context.Context, cc *Context) *types.HandlerResult {
	original, err := cc.Files.ReadFile(cc.ResourcePath)
	if err != nil {
		return failure(err)
	}
	prompt := fmt.Sprintf(h.template(cc), cc.Prompt, cc.ResourcePath, original)
	return stageRewrite(ctx, cc, cc.ResourcePath, original, prompt, h.verb)
}

// NewEditHandler builds the '#' content-edit handler.
func NewEditHandler() Handler {
	return &rewriteHandler{
		base: base{
			id:          "edit",
			name:        "Edit",
			description: "rewrite a file per an instruction: # <path> <instruction>",
			prefix:      "#",
		},
		verb:     "edit",
		template: func(cc *Context) string { return cc.Prompts.Edit },
	}
}

// NewDocHandler builds the '@doc' documentation-generation handler.
func NewDocHandler() Handler {
	return &rewriteHandler{
		base: base{
			id:          "doc",
			name:        "Document",
			description: "add documentation comments: @doc <path> [notes]",
			prefix:      "@doc",
		},
		verb:     "doc",
		template: func(cc *Context) string { return cc.Prompts.Doc },
	}
}

// NewFixHandler builds the '@fix' error-remediation handler.
func NewFixHandler() Handler {
	return &rewriteHandler{
		base: base{
			id:          "fix",
			name:        "Fix",
			description: "fix a described problem: @fix <path> <problem>",
			prefix:      "@fix",
		},
		verb:     "fix",
		template: func(cc *Context) string { return cc.Prompts.Fix },
	}
}
