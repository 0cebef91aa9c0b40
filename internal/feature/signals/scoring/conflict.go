package scoring

import (
	"context"
	"sync"
	"time"

	"pattern_scanner/internal/feature/signals/domain/entity"
)

// ConflictWindow is how long an opposite-direction signal for the same symbol counts as conflicting.
const ConflictWindow = 30 * time.Minute

// ConflictTracker remembers the most recent signal direction per symbol.
//
// CheckAndRecord reports whether a signal at `at` with direction dir conflicts
// with the tracked one. A conflicting signal is not recorded; any other signal
// replaces the tracked one. Calls for the same symbol are serialised.
// Reset forgets everything; it is best effort with respect to in-flight calls.
type ConflictTracker interface {
	CheckAndRecord(ctx context.Context, symbol string, at time.Time, dir entity.Direction) bool
	Reset(ctx context.Context)
}

// Conflicts reports whether a new signal conflicts with a tracked one.
func Conflicts(prevAt time.Time, prevDir entity.Direction, at time.Time, dir entity.Direction) bool {
	if prevDir == dir {
		return false
	}
	d := at.Sub(prevAt)
	if d < 0 {
		d = -d
	}
	return d <= ConflictWindow
}

type trackedSignal struct {
	mu  sync.Mutex
	set bool
	at  time.Time
	dir entity.Direction
}

// MemoryTracker is an in-process ConflictTracker with one lock per symbol.
type MemoryTracker struct {
	slots sync.Map // symbol -> *trackedSignal
}

var _ ConflictTracker = (*MemoryTracker)(nil)

// NewMemoryTracker returns an empty tracker.
func NewMemoryTracker() *MemoryTracker { return &MemoryTracker{} }

func (m *MemoryTracker) CheckAndRecord(_ context.Context, symbol string, at time.Time, dir entity.Direction) bool {
	v, _ := m.slots.LoadOrStore(symbol, &trackedSignal{})
	slot := v.(*trackedSignal)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.set && Conflicts(slot.at, slot.dir, at, dir) {
		return true
	}
	slot.set, slot.at, slot.dir = true, at, dir
	return false
}

func (m *MemoryTracker) Reset(context.Context) { m.slots.Clear() }
