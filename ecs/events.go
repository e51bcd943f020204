package ecs

import "fmt"

// Event is a generic ECS event payload.
type Event struct {
	Seq  uint64
	Type string
	Data any
}

// EventQueue keeps events for the frame they are pushed in and the next
// one, so a reader that runs before the writer still sees them.
type EventQueue struct {
	current  []Event
	previous []Event
	seq      uint64
}

// Push adds an event and stamps its sequence number.
func (q *EventQueue) Push(evt Event) {
	q.seq++
	evt.Seq = q.seq
	q.current = append(q.current, evt)
}

// Since returns buffered events with Seq greater than seq, oldest first.
func (q *EventQueue) Since(seq uint64) []Event {
	var out []Event
	for _, buf := range [][]Event{q.previous, q.current} {
		for _, evt := range buf {
			if evt.Seq > seq {
				out = append(out, evt)
			}
		}
	}
	return out
}

// Seq is the sequence number of the newest pushed event.
func (q *EventQueue) Seq() uint64 {
	return q.seq
}

func (q *EventQueue) flush() {
	q.previous = q.current
	q.current = nil
}

// Emit pushes a typed event.
func Emit[T any](w *World, data T) {
	w.events.Push(Event{Type: fmt.Sprintf("%T", data), Data: data})
}

// EventReader yields each event of type T once.
type EventReader[T any] struct {
	last uint64
}

func (r *EventReader[T]) Read(w *World) []T {
	var out []T
	for _, evt := range w.events.Since(r.last) {
		r.last = evt.Seq
		if v, ok := evt.Data.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
