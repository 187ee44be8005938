package core

// audit.go keeps a bounded in-memory trail of workflow actions so an
// operator can answer "who moved this listing and when" without any
// storage beyond the process. The trail is volatile like the
// collections it describes: a restart clears it.

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the kind of workflow action recorded.
type AuditAction string

const (
	ActionIngest   AuditAction = "ingest"
	ActionSeed     AuditAction = "seed"
	ActionDispatch AuditAction = "dispatch"
	ActionSubmit   AuditAction = "submit"
	ActionDelete   AuditAction = "delete"
)

// AuditEntry is one recorded action.
type AuditEntry struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Actor     string      `json:"actor"`
	ListingID string      `json:"listingId,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// defaultAuditCapacity bounds the trail so a long-running process
// cannot grow without limit.
const defaultAuditCapacity = 1000

// AuditTrail is a fixed-capacity ring of audit entries. When full, the
// oldest entry is evicted.
type AuditTrail struct {
	mu      sync.Mutex
	entries []AuditEntry
	next    int
	full    bool
}

// NewAuditTrail creates a trail holding at most capacity entries.
// A non-positive capacity falls back to the default.
func NewAuditTrail(capacity int) *AuditTrail {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditTrail{entries: make([]AuditEntry, capacity)}
}

// Record appends an entry, evicting the oldest when the trail is full.
func (t *AuditTrail) Record(action AuditAction, actor, listingID, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[t.next] = AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		Actor:     actor,
		ListingID: listingID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	t.next++
	if t.next == len(t.entries) {
		t.next = 0
		t.full = true
	}
}

// Entries returns the recorded entries, newest first.
func (t *AuditTrail) Entries() []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.next
	if t.full {
		n = len(t.entries)
	}

	out := make([]AuditEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := t.next - i
		if idx < 0 {
			idx += len(t.entries)
		}
		out = append(out, t.entries[idx])
	}
	return out
}

// Len returns the number of recorded entries.
func (t *AuditTrail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.full {
		return len(t.entries)
	}
	return t.next
}
