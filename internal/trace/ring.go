package trace

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RingTracer keeps the most recent events in memory for crash dumps.
type RingTracer struct {
	mu      sync.RWMutex
	events  []Event
	total   uint64 // events ever stored; total % len(events) is the next slot
	level   Level
	started time.Time
}

// NewRingTracer creates a ring holding up to capacity events (4096 when <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		events:  make([]Event, capacity),
		level:   level,
		started: time.Now(),
	}
}

// Emit stores a copy of ev, overwriting the oldest entry once full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}

	t.mu.Lock()
	t.events[t.total%uint64(len(t.events))] = stored
	t.total++
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := uint64(len(t.events))
	if t.total <= size {
		return append([]Event(nil), t.events[:t.total]...)
	}
	head := t.total % size
	out := make([]Event, 0, size)
	out = append(out, t.events[head:]...)
	return append(out, t.events[:head]...)
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if size := uint64(len(t.events)); t.total > size {
		return t.total - size
	}
	return 0
}

// Dump writes the stored events in the given format. Text dumps start with a
// line counting overwritten events, if any.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier events dropped\n", dropped); err != nil {
			return err
		}
	}
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format, t.started)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
