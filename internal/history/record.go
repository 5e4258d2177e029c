package history

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is the entry shape trafficlab itself appends. The store treats it
// like any other entry.
type Record struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Params     any             `json:"params,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Failed reports whether the recorded test ended in an error.
func (r Record) Failed() bool {
	return r.Error != ""
}

// DecodeRecord parses an entry as a Record. ok is false when the entry is not
// an object with at least an id and a kind, i.e. it was written by someone else.
func DecodeRecord(entry json.RawMessage) (rec Record, ok bool) {
	if err := json.Unmarshal(entry, &rec); err != nil {
		return Record{}, false
	}
	if rec.ID == "" || rec.Kind == "" {
		return Record{}, false
	}
	return rec, true
}

// IDGenerator produces record IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record IDs.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns predetermined IDs in order, for tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceGenerator creates a generator that returns ids in order.
func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed, so a test that records more than
// it expected fails immediately.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
