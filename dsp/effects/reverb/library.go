package reverb

import "sync"

type libraryKey struct {
	kind       Type
	sampleRate float64
}

// Library memoizes type impulses per (type, sample rate) for one seed, so
// the live graph and export renders share identical buffers without
// resynthesizing them. It is safe for concurrent use.
type Library struct {
	seed uint64

	mu       sync.Mutex
	impulses map[libraryKey]*Impulse
}

// NewLibrary creates an empty library.
func NewLibrary(seed uint64) *Library {
	return &Library{seed: seed, impulses: make(map[libraryKey]*Impulse)}
}

// Impulse returns the impulse for t at sampleRate, synthesizing it once.
// Callers must not modify the returned buffer.
func (l *Library) Impulse(t Type, sampleRate float64) (*Impulse, error) {
	key := libraryKey{kind: t, sampleRate: sampleRate}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ir, ok := l.impulses[key]; ok {
		return ir, nil
	}

	ir, err := NewTypeImpulse(t, sampleRate, l.seed)
	if err != nil {
		return nil, err
	}

	l.impulses[key] = ir

	return ir, nil
}

// Seed returns the synthesis seed.
func (l *Library) Seed() uint64 { return l.seed }
