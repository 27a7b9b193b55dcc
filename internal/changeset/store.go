// Package changeset manages pending changes: proposals that have been staged
// against a resource but not yet confirmed. A resource key holds at most one
// live record; staging again overwrites it. Apply and reject are
// deliberately global: both flush the entire pending set in one decision,
// matching the single review surface the assistant presents. There is no
// per-key apply or reject.
package changeset

import (
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// Record is one staged, unconfirmed change.
type Record struct {
	ID       string
	Key      string
	Original string
	Proposed string
	Rendered string
	StagedAt time.Time
}

// ApplyOutcome reports the write attempt for one record during ApplyAll.
type ApplyOutcome struct {
	Key string
	Err error
}

// Store holds pending change records keyed by normalized resource
// identifier. All mutation happens on the session's single logical thread;
// the mutex only guards against a UI goroutine observing a flush mid-way.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
	files   types.FileStore
}

// NewStore creates a change set store writing through the given file
// collaborator on apply.
func NewStore(files types.FileStore) *Store {
	return &Store{
		records: make(map[string]*Record),
		files:   files,
	}
}

// NormalizeKey canonicalizes a resource path into a store key: trimmed,
// slash-separated, and path-cleaned. The file extension is preserved; two
// resources that differ only by extension are distinct.
func NormalizeKey(resourcePath string) string {
	k := strings.TrimSpace(resourcePath)
	k = strings.ReplaceAll(k, "\\", "/")
	k = path.Clean(k)
	k = strings.TrimPrefix(k, "./")
	return k
}

// Stage records a proposed change, replacing any existing record for the
// same key. Last proposal wins; there is no merging.
func (s *Store) Stage(resourceKey, original, proposed, rendered string) {
	key := NormalizeKey(resourceKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, replaced := s.records[key]; replaced {
		logging.Changeset("restaged %s, previous proposal discarded", key)
	} else {
		s.order = append(s.order, key)
		logging.Changeset("staged %s", key)
	}
	s.records[key] = &Record{
		ID:       uuid.NewString(),
		Key:      key,
		Original: original,
		Proposed: proposed,
		Rendered: rendered,
		StagedAt: time.Now(),
	}
}

// Get returns the pending record for a resource, if any.
func (s *Store) Get(resourcePath string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[NormalizeKey(resourcePath)]
	return r, ok
}

// Pending returns the staged records in staging order.
func (s *Store) Pending() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Len returns the number of pending records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ApplyAll writes every staged proposal to its resource through the file
// collaborator. Each record is attempted independently: one write failure
// does not stop the others. After all attempts the store is cleared
// unconditionally, whatever the individual outcomes.
func (s *Store) ApplyAll() []ApplyOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomes := make([]ApplyOutcome, 0, len(s.order))
	for _, key := range s.order {
		r := s.records[key]
		err := s.files.WriteFile(r.Key, r.Proposed)
		if err != nil {
			logging.ChangesetError("apply %s failed: %v", r.Key, err)
		} else {
			logging.Changeset("applied %s (%d bytes)", r.Key, len(r.Proposed))
		}
		outcomes = append(outcomes, ApplyOutcome{Key: r.Key, Err: err})
	}

	s.clearLocked()
	return outcomes
}

// RejectAll discards every staged proposal without writing anything.
func (s *Store) RejectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	if n > 0 {
		logging.Changeset("rejected %d pending change(s)", n)
	}
	s.clearLocked()
	return n
}

func (s *Store) clearLocked() {
	s.records = make(map[string]*Record)
	s.order = nil
}
