package script

import (
	"borrowck/internal/borrow"
	"borrowck/internal/source"
)

// Program is a parsed script. Spans[i] is the source line of Events[i];
// events lowered from one closure line share its span.
type Program struct {
	File     *source.File
	Events   []borrow.Event
	Spans    []source.Span
	Closures map[string]borrow.Closure
}

func (p *Program) emit(sp source.Span, evs ...borrow.Event) {
	for _, ev := range evs {
		p.Events = append(p.Events, ev)
		p.Spans = append(p.Spans, sp)
	}
}

// SpanOf returns the span of event i, or an empty span when i is out of range.
func (p *Program) SpanOf(i int) source.Span {
	if p == nil || i < 0 || i >= len(p.Spans) {
		return source.Span{}
	}
	return p.Spans[i]
}
