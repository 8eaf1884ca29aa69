package session

import (
	"slices"
	"sync"

	"github.com/cwbudde/algo-fx/dsp/state"
)

// Listeners holds error and state subscribers.
type Listeners struct {
	mu     sync.Mutex
	next   int
	errs   map[int]func(error)
	states map[int]func(state.AudioState)
	closed bool
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{
		errs:   make(map[int]func(error)),
		states: make(map[int]func(state.AudioState)),
	}
}

// OnError registers fn for session errors. The returned func removes it.
func (l *Listeners) OnError(fn func(error)) (unregister func()) {
	return register(l, l.errs, fn)
}

// OnState registers fn for state changes. The returned func removes it.
func (l *Listeners) OnState(fn func(state.AudioState)) (unregister func()) {
	return register(l, l.states, fn)
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.errs) + len(l.states)
}

// Close removes every listener. Later registrations are ignored.
func (l *Listeners) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.errs)
	clear(l.states)
	l.closed = true
}

func register[F any](l *Listeners, set map[int]F, fn F) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return func() {}
	}

	id := l.next
	l.next++
	set[id] = fn

	var once sync.Once

	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()

			delete(set, id)
		})
	}
}

func (l *Listeners) emitError(err error) {
	for _, fn := range snapshot(l, l.errs) {
		fn(err)
	}
}

func (l *Listeners) emitState(st state.AudioState) {
	for _, fn := range snapshot(l, l.states) {
		fn(st)
	}
}

// snapshot copies the subscribers in registration order so callbacks run
// without the lock held.
func snapshot[F any](l *Listeners, set map[int]F) []F {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	out := make([]F, len(ids))
	for i, id := range ids {
		out[i] = set[id]
	}

	return out
}
