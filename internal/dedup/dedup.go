// Package dedup guards against emitting the same transaction twice.
package dedup

import (
	"fmt"
	"sync"
	"time"

	"github.com/cleared-dev/smsledger/internal/model"
)

// Mode selects how long a key is remembered.
type Mode string

const (
	// ModeBatch remembers keys for the life of the guard. The pipeline gives
	// every batch its own guard from ForBatch.
	ModeBatch Mode = "batch"
	// ModeRolling remembers keys for Window, measured on the records'
	// receive times. Used for live ingestion.
	ModeRolling Mode = "rolling"
)

const DefaultCapacity = 10000

// Admission is the guard's verdict on one record.
type Admission int

const (
	Accepted Admission = iota
	RejectedAsDuplicate
)

func (a Admission) String() string {
	switch a {
	case Accepted:
		return "accepted"
	case RejectedAsDuplicate:
		return "rejected_duplicate"
	default:
		return fmt.Sprintf("Admission(%d)", int(a))
	}
}

// Options configures a Guard.
type Options struct {
	Mode     Mode
	Window   time.Duration
	Capacity int
}

type seenKey struct {
	key string
	at  time.Time
}

// Guard is a bounded set of recently admitted keys. The first record with a
// key is accepted; later ones are rejected until the key is forgotten. All
// methods are safe for concurrent use and admissions are serialized, so two
// callers racing on one key never both get Accepted.
type Guard struct {
	opts Options

	mu    sync.Mutex
	seen  map[string]time.Time
	order []seenKey // admission order, oldest first
}

// New returns an empty Guard.
func New(opts Options) (*Guard, error) {
	if opts.Mode == "" {
		opts.Mode = ModeBatch
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	switch {
	case opts.Mode != ModeBatch && opts.Mode != ModeRolling:
		return nil, fmt.Errorf("unknown dedup mode %q", opts.Mode)
	case opts.Capacity < 0:
		return nil, fmt.Errorf("dedup capacity must be positive, got %d", opts.Capacity)
	case opts.Mode == ModeRolling && opts.Window <= 0:
		return nil, fmt.Errorf("rolling dedup needs a positive window, got %s", opts.Window)
	}
	return &Guard{opts: opts, seen: make(map[string]time.Time)}, nil
}

// Mode returns the guard's mode.
func (g *Guard) Mode() Mode {
	return g.opts.Mode
}

// Admit records key as seen at the given time unless it is already known.
func (g *Guard) Admit(key string, at time.Time) Admission {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expire(at)
	if prev, ok := g.seen[key]; ok && !g.expired(prev, at) {
		return RejectedAsDuplicate
	}

	g.seen[key] = at
	g.order = append(g.order, seenKey{key: key, at: at})
	for len(g.seen) > g.opts.Capacity {
		g.evictOldest()
	}
	return Accepted
}

// AdmitRecord admits r by its dedup key and receive time.
func (g *Guard) AdmitRecord(r model.TransactionRecord) Admission {
	return g.Admit(r.DedupKey, r.ReceivedAt)
}

// ForBatch returns an empty guard with g's settings for one batch of size
// events. Its capacity is at least size, so no key from the batch is
// evicted before the batch ends.
func (g *Guard) ForBatch(size int) *Guard {
	opts := g.opts
	opts.Capacity = max(opts.Capacity, size)
	return &Guard{opts: opts, seen: make(map[string]time.Time)}
}

// Len returns the number of remembered keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

func (g *Guard) expired(seenAt, now time.Time) bool {
	return g.opts.Mode == ModeRolling && now.Sub(seenAt) > g.opts.Window
}

// expire drops keys from the front of the admission order while they are
// past the window. Entries that were re-admitted later are skipped.
func (g *Guard) expire(now time.Time) {
	if g.opts.Mode != ModeRolling {
		return
	}
	for len(g.order) > 0 && g.expired(g.order[0].at, now) {
		g.evictOldest()
	}
}

func (g *Guard) evictOldest() {
	if len(g.order) == 0 {
		return
	}
	oldest := g.order[0]
	g.order = g.order[1:]
	if at, ok := g.seen[oldest.key]; ok && at.Equal(oldest.at) {
		delete(g.seen, oldest.key)
	}
}
