package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codewright/internal/config"
	"codewright/internal/diff"
	"codewright/internal/runner"
	"codewright/internal/types"
)

type fakeBackend struct {
	response string
	err      error
	turns    [][]types.ChatTurn
}

func (f *fakeBackend) Generate(_ context.Context, turns []types.ChatTurn) (string, error) {
	f.turns = append(f.turns, turns)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeFiles struct {
	contents map[string]string
	writes   map[string]string
	deleted  []string
	dirs     []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		contents: make(map[string]string),
		writes:   make(map[string]string),
	}
}

func (f *fakeFiles) ReadFile(path string) (string, error) {
	content, ok := f.contents[path]
	if !ok {
		return "", &types.ResourceIOError{Op: "read", Path: path, Err: types.ErrNotFound}
	}
	return content, nil
}

func (f *fakeFiles) WriteFile(path, content string) error {
	f.writes[path] = content
	f.contents[path] = content
	return nil
}

func (f *fakeFiles) Delete(path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.contents, path)
	return nil
}

func (f *fakeFiles) MakeDir(path string) error {
	f.dirs = append(f.dirs, path)
	return nil
}

type staged struct {
	key, original, proposed, rendered string
}

type fakeStager struct {
	calls []staged
}

func (f *fakeStager) Stage(key, original, proposed, rendered string) {
	f.calls = append(f.calls, staged{key, original, proposed, rendered})
}

func newContext(be types.Backend, files *fakeFiles, stager *fakeStager) *Context {
	return &Context{
		Backend: be,
		Files:   files,
		Stager:  stager,
		Diff:    diff.NewEngine(),
		Prompts: config.DefaultPrompts(),
	}
}

func TestEditHandlerStagesExtractedProposal(t *testing.T) {
	files := newFakeFiles()
	files.contents["app.js"] = "const a = 1;\n"
	stager := &fakeStager{}
	be := &fakeBackend{response: "Here you go:\n```js\nconst a = 2;\n```\nDone."}

	cc := newContext(be, files, stager)
	cc.ResourcePath = "app.js"
	cc.Prompt = "bump a to 2"

	res := Invoke(context.Background(), NewEditHandler(), cc)
	require.True(t, res.Success, res.Message)

	require.Len(t, stager.calls, 1)
	assert.Equal(t, "app.js", stager.calls[0].key)
	assert.Equal(t, "const a = 1;\n", stager.calls[0].original)
	assert.Equal(t, "const a = 2;", stager.calls[0].proposed)
	assert.Contains(t, stager.calls[0].rendered, "-const a = 1;")
	assert.Contains(t, stager.calls[0].rendered, "+const a = 2;")

	// Nothing is written until apply.
	assert.Empty(t, files.writes)

	require.Len(t, be.turns, 1)
	sent := be.turns[0][0].Content
	assert.Contains(t, sent, "bump a to 2")
	assert.Contains(t, sent, "const a = 1;")
}

func TestEditHandlerMissingResource(t *testing.T) {
	cc := newContext(&fakeBackend{}, newFakeFiles(), &fakeStager{})
	cc.ResourcePath = "ghost.js"

	res := Invoke(context.Background(), NewEditHandler(), cc)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "ghost.js")
}

func TestValidateRequiresResourcePath(t *testing.T) {
	cc := newContext(&fakeBackend{}, newFakeFiles(), &fakeStager{})

	res := Invoke(context.Background(), NewEditHandler(), cc)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "resource path")
}

func TestBackendFailureBecomesFailedResult(t *testing.T) {
	files := newFakeFiles()
	files.contents["a.go"] = "package a\n"
	be := &fakeBackend{err: &types.BackendError{Provider: "test", Err: fmt.Errorf("quota")}}

	cc := newContext(be, files, &fakeStager{})
	cc.ResourcePath = "a.go"

	res := Invoke(context.Background(), NewFixHandler(), cc)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "quota")
}

func TestInvokeRecoversPanic(t *testing.T) {
	files := newFakeFiles()
	files.contents["a.go"] = "package a\n"

	// A nil diff engine makes the pipeline panic; the boundary must turn
	// that into a failed result.
	cc := &Context{
		Backend:      &fakeBackend{response: "```\nx\n```"},
		Files:        files,
		Stager:       &fakeStager{},
		Prompts:      config.DefaultPrompts(),
		ResourcePath: "a.go",
	}

	res := Invoke(context.Background(), NewEditHandler(), cc)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
}

func TestTestHandlerStagesSiblingTestFile(t *testing.T) {
	files := newFakeFiles()
	files.contents["pkg/math.go"] = "package pkg\n\nfunc Add(a, b int) int { return a + b }\n"
	stager := &fakeStager{}
	be := &fakeBackend{response: "```go\npackage pkg\n\nimport \"testing\"\n\nfunc TestAdd(t *testing.T) {}\n```"}

	cc := newContext(be, files, stager)
	cc.ResourcePath = "pkg/math.go"

	res := Invoke(context.Background(), NewTestHandler(), cc)
	require.True(t, res.Success, res.Message)
	require.Len(t, stager.calls, 1)
	assert.Equal(t, "pkg/math_test.go", stager.calls[0].key)
	assert.Contains(t, stager.calls[0].proposed, "func TestAdd")
}

func TestTestFilePath(t *testing.T) {
	cases := map[string]string{
		"pkg/math.go":  "pkg/math_test.go",
		"lib/utils.py": "lib/utils_test.py",
		"script":       "script_test",
	}
	for in, want := range cases {
		assert.Equal(t, want, TestFilePath(in))
	}
}

func TestRunHandlerExecutesBackendPlan(t *testing.T) {
	dir := t.TempDir()
	files := newFakeFiles()
	files.contents["hello.sh"] = "echo hi"

	be := &fakeBackend{response: `{"command":"echo","args":["planned"]}`}
	cc := newContext(be, files, &fakeStager{})
	cc.ResourcePath = "hello.sh"
	cc.Runner = runner.New(dir, 5*time.Second)

	res := Invoke(context.Background(), NewRunHandler(), cc)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "planned", res.Content)
	assert.Contains(t, res.Message, "echo planned")
}

func TestRunHandlerFallsBackOnMalformedPlan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.sh"), []byte("echo fallback\n"), 0o755))

	files := newFakeFiles()
	files.contents["hello.sh"] = "echo fallback\n"

	be := &fakeBackend{response: "I would run it with bash, probably."}
	cc := newContext(be, files, &fakeStager{})
	cc.ResourcePath = "hello.sh"
	cc.Runner = runner.New(dir, 5*time.Second)

	res := Invoke(context.Background(), NewRunHandler(), cc)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "fallback", strings.TrimSpace(res.Content))
}

func TestRunHandlerRequiresRunner(t *testing.T) {
	files := newFakeFiles()
	files.contents["hello.sh"] = "echo hi"
	cc := newContext(&fakeBackend{}, files, &fakeStager{})
	cc.ResourcePath = "hello.sh"

	res := Invoke(context.Background(), NewRunHandler(), cc)
	assert.False(t, res.Success)
}

func TestLifecycleHandlers(t *testing.T) {
	files := newFakeFiles()
	cc := newContext(&fakeBackend{}, files, &fakeStager{})
	cc.ResourcePath = "notes/todo.md"

	res := Invoke(context.Background(), NewCreateFileHandler(), cc)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "", files.writes["notes/todo.md"])

	res = Invoke(context.Background(), NewCreateFolderHandler(), cc)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"notes/todo.md"}, files.dirs)

	res = Invoke(context.Background(), NewDeleteFileHandler(), cc)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"notes/todo.md"}, files.deleted)
}

func TestRewriteResultCarriesStats(t *testing.T) {
	files := newFakeFiles()
	files.contents["a.txt"] = "one\n"
	be := &fakeBackend{response: "```\ntwo\n```"}

	cc := newContext(be, files, &fakeStager{})
	cc.ResourcePath = "a.txt"

	res := Invoke(context.Background(), NewDocHandler(), cc)
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.Stats)
	assert.Equal(t, 1, res.Stats.BackendCalls)
	assert.Greater(t, res.Stats.PromptTokens, 0)
	assert.Greater(t, res.Stats.OutputTokens, 0)
}
