package engine

import "github.com/roach88/socialgraph/internal/ir"

// EventSink receives domain events. Emit is fire-and-forget: the engine does
// not wait for acknowledgement and never inspects an event after handing it off.
type EventSink interface {
	Emit(ev ir.Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev ir.Event)

func (f SinkFunc) Emit(ev ir.Event) { f(ev) }

type discard struct{}

func (discard) Emit(ir.Event) {}

// Discard drops every event.
var Discard EventSink = discard{}

// MultiSink fans each event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Emit(ev ir.Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}
