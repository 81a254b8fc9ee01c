package audit

import (
	"context"
	"strconv"
	"sync"
)

// Recorder is an in-memory Sink for tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Log(_ context.Context, entry Entry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ApprovalStatus == "" {
		entry.ApprovalStatus = ApprovalNotRequired
	}

	if entry.SecurityLevel == "" {
		entry.SecurityLevel = LevelInternal
	}

	r.entries = append(r.entries, entry)

	return "memory:" + strconv.Itoa(len(r.entries)-1), nil
}

// Entries returns a snapshot of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)

	return out
}

// ByAction filters the recorded entries by action name.
func (r *Recorder) ByAction(action string) []Entry {
	var out []Entry

	for _, entry := range r.Entries() {
		if entry.Action == action {
			out = append(out, entry)
		}
	}

	return out
}
