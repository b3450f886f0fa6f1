// Package event provides the handler-dispatch fabric used throughout the
// server core: an insertion-ordered, de-duplicated list of handlers with
// dispatch-all, stop-at-false, and stop-at-true invocation semantics,
// generalizing the teacher's World.systems []System iteration pattern
// (opd-ai-venture pkg/engine world.go) to arbitrary handler shapes.
package event

// Dispatcher holds an insertion-ordered, de-duplicated set of handlers of
// type H (typically a small interface or a func type) and invokes them
// through caller-supplied adapters, since Go generics cannot call an
// arbitrary method by name the way the handler.method(args...) model in
// spec.md §4.3 implies.
//
// H must be comparable so Add can reject duplicates and Remove can find
// the handler to drop; component code typically instantiates Dispatcher
// with a handler interface satisfied by a pointer receiver, which
// compares by identity.
type Dispatcher[H comparable] struct {
	handlers []H
}

// New creates an empty dispatcher.
func New[H comparable]() *Dispatcher[H] {
	return &Dispatcher[H]{}
}

// Add appends h to the handler list if it is not already present.
// Handlers may be added during dispatch; per spec.md §4.3 the addition
// takes effect starting with the next dispatch, never the one in
// progress, because every dispatch method snapshots the slice first.
func (d *Dispatcher[H]) Add(h H) {
	for _, existing := range d.handlers {
		if existing == h {
			return
		}
	}
	d.handlers = append(d.handlers, h)
}

// Remove drops h from the handler list, if present. Like Add, a Remove
// issued from within a handler takes effect on the next dispatch.
func (d *Dispatcher[H]) Remove(h H) {
	for i, existing := range d.handlers {
		if existing == h {
			d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered handlers.
func (d *Dispatcher[H]) Len() int {
	return len(d.handlers)
}

func (d *Dispatcher[H]) snapshot() []H {
	out := make([]H, len(d.handlers))
	copy(out, d.handlers)
	return out
}

// Dispatch invokes invoke(h) for every registered handler, in insertion
// order, ignoring return values.
func (d *Dispatcher[H]) Dispatch(invoke func(H)) {
	for _, h := range d.snapshot() {
		invoke(h)
	}
}

// StopAtFalse invokes handlers in order, stopping at the first one whose
// invoke call returns false. Returns true if every handler returned true
// or the handler list was empty; used to let any handler veto an action
// (e.g. onPlayerRequestClass).
func (d *Dispatcher[H]) StopAtFalse(invoke func(H) bool) bool {
	for _, h := range d.snapshot() {
		if !invoke(h) {
			return false
		}
	}
	return true
}

// StopAtTrue invokes handlers in order, stopping at the first one whose
// invoke call returns true, and returning true. Returns false if no
// handler returned true or the handler list was empty.
func (d *Dispatcher[H]) StopAtTrue(invoke func(H) bool) bool {
	for _, h := range d.snapshot() {
		if invoke(h) {
			return true
		}
	}
	return false
}
