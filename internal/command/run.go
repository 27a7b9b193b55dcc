package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codewright/internal/backend"
	"codewright/internal/logging"
	"codewright/internal/runner"
	"codewright/internal/types"
)

type runHandler struct {
	base
}

// NewRunHandler builds the '@run' execution handler. The backend proposes
// a JSON execution plan for the target; malformed plans fall back to the
// conservative extension-based default instead of failing the invocation.
func NewRunHandler() Handler {
	return &runHandler{base{
		id:          "run",
		name:        "Run",
		description: "execute a file: @run <path> [notes]",
		prefix:      "@run",
	}}
}

func (h *runHandler) Validate(cc *Context) error {
	if err := h.base.Validate(cc); err != nil {
		return err
	}
	if cc.Runner == nil {
		return fmt.Errorf("no runner configured")
	}
	return nil
}

func (h *runHandler) Execute(ctx context.Context, cc *Context) *types.HandlerResult {
	start := time.Now()

	if _, err := cc.Files.ReadFile(cc.ResourcePath); err != nil {
		return failure(err)
	}

	prompt := fmt.Sprintf(cc.Prompts.Run, cc.Prompt, cc.ResourcePath)
	response, err := cc.Backend.Generate(ctx, []types.ChatTurn{{Role: types.RoleUser, Content: prompt}})
	if err != nil {
		return failure(err)
	}

	plan, perr := runner.ParsePlan(response)
	if perr != nil {
		logging.Runner("plan parse failed for %s, using default: %v", cc.ResourcePath, perr)
		plan = runner.DefaultPlan(cc.ResourcePath)
	}

	out, runErr := cc.Runner.Run(ctx, plan)
	res := &types.HandlerResult{
		Success: runErr == nil,
		Content: strings.TrimSpace(out),
		Stats: &types.InvocationStats{
			PromptTokens: backend.CountTokens(prompt),
			OutputTokens: backend.CountTokens(response),
			BackendCalls: 1,
			Elapsed:      time.Since(start),
		},
	}
	if runErr != nil {
		res.Message = fmt.Sprintf("`%s` failed: %v", plan, runErr)
	} else {
		res.Message = fmt.Sprintf("Ran `%s`.", plan)
	}
	return res
}
