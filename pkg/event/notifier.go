// Package event provides an ordered multi-listener callback registry used
// by nodes to broadcast lifecycle and parameter-change notifications.
package event

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Registration is the handle returned by Subscribe. It stays valid until
// passed to Unsubscribe; the registered callbacks must outlive it.
type Registration struct {
	removed atomic.Bool
}

// Notifier dispatches events to listeners in registration order. Dispatch
// is synchronous and single-threaded: Publish never runs listeners
// concurrently. A listener may unsubscribe itself (or any other listener)
// from inside a callback; removed listeners are tombstoned so an
// in-flight dispatch never invokes them after removal.
type Notifier[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
}

type entry[T any] struct {
	reg       *Registration
	callbacks T
	data      any
}

// Subscribe appends a listener and returns its registration handle.
func (n *Notifier[T]) Subscribe(callbacks T, data any) *Registration {
	e := &entry[T]{
		reg:       &Registration{},
		callbacks: callbacks,
		data:      data,
	}
	n.mu.Lock()
	n.entries = append(n.entries, e)
	n.mu.Unlock()
	return e.reg
}

// Unsubscribe detaches the listener. The caller keeps ownership of the
// callback set; unsubscribing an already removed or nil registration is a
// no-op.
func (n *Notifier[T]) Unsubscribe(reg *Registration) {
	if reg == nil || !reg.removed.CompareAndSwap(false, true) {
		return
	}
	n.mu.Lock()
	for i, e := range n.entries {
		if e.reg == reg {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			break
		}
	}
	n.mu.Unlock()
}

// Publish invokes dispatch once per registered listener, in registration
// order, on the calling goroutine. Fan-out is best effort: a listener
// error does not stop delivery to the remaining listeners; all errors are
// joined and returned after the last listener ran.
func (n *Notifier[T]) Publish(dispatch func(callbacks T, data any) error) error {
	n.mu.Lock()
	snapshot := make([]*entry[T], len(n.entries))
	copy(snapshot, n.entries)
	n.mu.Unlock()

	var errs []error
	for _, e := range snapshot {
		if e.reg.removed.Load() {
			continue
		}
		if err := dispatch(e.callbacks, e.data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of registered listeners.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}
