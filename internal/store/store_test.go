package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codewright/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "wright.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadTurns(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveTurn("s1", types.ChatTurn{Role: types.RoleUser, Content: "hello"}))
	require.NoError(t, s.SaveTurn("s1", types.ChatTurn{Role: types.RoleAssistant, Content: "hi there"}))
	require.NoError(t, s.SaveTurn("s2", types.ChatTurn{Role: types.RoleUser, Content: "other session"}))

	turns, err := s.LoadTurns("s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, types.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, types.RoleAssistant, turns[1].Role)
	assert.Equal(t, "hi there", turns[1].Content)
}

func TestLoadTurnsUnknownSession(t *testing.T) {
	s := newTestStore(t)

	turns, err := s.LoadTurns("nope")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestClearSessionKeepsOtherSessions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTurn("s1", types.ChatTurn{Role: types.RoleUser, Content: "a"}))
	require.NoError(t, s.SaveTurn("s2", types.ChatTurn{Role: types.RoleUser, Content: "b"}))

	require.NoError(t, s.ClearSession("s1"))

	turns, err := s.LoadTurns("s1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	turns, err = s.LoadTurns("s2")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestSessionsOrderedByRecency(t *testing.T) {
	s := newTestStore(t)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, s.SaveTurn("old", types.ChatTurn{Role: types.RoleUser, Content: "a", Time: old}))
	require.NoError(t, s.SaveTurn("new", types.ChatTurn{Role: types.RoleUser, Content: "b", Time: time.Now()}))

	sessions, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
	assert.Equal(t, 1, sessions[0].Turns)
}

func TestAuditTrail(t *testing.T) {
	s := newTestStore(t)

	s.RecordApply("s1", "a.txt", true, "")
	s.RecordApply("s1", "b.txt", false, "write b.txt: permission denied")
	s.RecordApply("s2", "c.txt", true, "")

	entries, err := s.AuditTrail("s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].ResourceKey)
	assert.True(t, entries[0].Applied)
	assert.Equal(t, "b.txt", entries[1].ResourceKey)
	assert.False(t, entries[1].Applied)
	assert.Contains(t, entries[1].Detail, "permission denied")
}

func TestAuditSurvivesClearSession(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveTurn("s1", types.ChatTurn{Role: types.RoleUser, Content: "a"}))
	s.RecordApply("s1", "a.txt", true, "")

	require.NoError(t, s.ClearSession("s1"))

	entries, err := s.AuditTrail("s1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
