package trace

import "errors"

// MultiTracer fans events out to several sinks, used for --trace-mode both.
type MultiTracer struct {
	sinks []Tracer
	level Level
}

// NewMultiTracer creates a MultiTracer over sinks.
func NewMultiTracer(level Level, sinks ...Tracer) *MultiTracer {
	return &MultiTracer{sinks: sinks, level: level}
}

// Emit gives each sink its own copy so sequence numbers stay per-sink.
func (t *MultiTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

// Ring returns the first RingTracer among the sinks, if any.
func (t *MultiTracer) Ring() *RingTracer {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

// Flush flushes every sink and joins their errors.
func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.sinks))
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
