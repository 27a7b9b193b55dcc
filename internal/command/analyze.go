package command

import (
	"context"
	"fmt"
	"time"

	"codewright/internal/backend"
	"codewright/internal/types"
)

type analyzeHandler struct {
	base
}

// NewAnalyzeHandler builds the '@analyze' UI-analysis handler: capture a
// rendered page as text and have the backend review it. The resource here
// is a URL, not a workspace path.
func NewAnalyzeHandler() Handler {
	return &analyzeHandler{base{
		id:          "analyze",
		name:        "Analyze",
		description: "review a rendered page: @analyze <url> [request]",
		prefix:      "@analyze",
	}}
}

func (h *analyzeHandler) Validate(cc *Context) error {
	if cc.ResourcePath == "" {
		return &types.NoActiveResourceError{Want: "page URL"}
	}
	if cc.Pages == nil {
		return fmt.Errorf("no browser configured")
	}
	return nil
}

func (h *analyzeHandler) Execute(ctx context.Context, cc *Context) *types.HandlerResult {
	start := time.Now()

	snap, err := cc.Pages.Capture(ctx, cc.ResourcePath)
	if err != nil {
		return failure(fmt.Errorf("capture %s: %w", cc.ResourcePath, err))
	}

	prompt := fmt.Sprintf(cc.Prompts.Analyze, cc.Prompt, cc.ResourcePath, snap.Text)
	analysis, err := cc.Backend.Generate(ctx, []types.ChatTurn{{Role: types.RoleUser, Content: prompt}})
	if err != nil {
		return failure(err)
	}

	title := snap.Title
	if title == "" {
		title = cc.ResourcePath
	}
	return &types.HandlerResult{
		Success: true,
		Message: fmt.Sprintf("Analysis of %s:\n\n%s", title, analysis),
		Content: analysis,
		Stats: &types.InvocationStats{
			PromptTokens: backend.CountTokens(prompt),
			OutputTokens: backend.CountTokens(analysis),
			BackendCalls: 1,
			Elapsed:      time.Since(start),
		},
	}
}
