package audiograph

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-fx/dsp/core"
)

var (
	// ErrContextClosed is returned by operations on a closed context.
	ErrContextClosed = errors.New("audiograph: context closed")
	// ErrAlreadyRendered is returned when an offline context is rendered twice.
	ErrAlreadyRendered = errors.New("audiograph: offline context already rendered")
)

// Context is the part of a processing context a graph builder needs.
type Context interface {
	SampleRate() float64
	// Do runs fn with exclusive access to the graph. No quantum is
	// rendered while fn runs.
	Do(fn func(g *Graph) error) error
}

type engine struct {
	mu       sync.Mutex
	graph    *Graph
	channels int
	closed   bool
}

func newEngine(channels int, sampleRate float64) (*engine, error) {
	if err := core.ValidateSampleRate("context", sampleRate); err != nil {
		return nil, err
	}

	if channels < 1 {
		return nil, fmt.Errorf("audiograph: channel count must be >= 1: %d", channels)
	}

	return &engine{graph: newGraph(sampleRate), channels: channels}, nil
}

// SampleRate returns the context sample rate.
func (e *engine) SampleRate() float64 { return e.graph.sampleRate }

// Channels returns the output channel count.
func (e *engine) Channels() int { return e.channels }

// Do runs fn while holding the render lock.
func (e *engine) Do(fn func(g *Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrContextClosed
	}

	return fn(e.graph)
}

// CurrentTime returns the time of the next frame to render in seconds.
func (e *engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.graph.CurrentTime()
}

// OfflineContext renders a fixed number of frames as fast as possible.
type OfflineContext struct {
	*engine

	length   int
	rendered bool
}

// NewOfflineContext returns a context rendering length frames.
func NewOfflineContext(channels, length int, sampleRate float64) (*OfflineContext, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: offline length %d", ErrEmptyBuffer, length)
	}

	e, err := newEngine(channels, sampleRate)
	if err != nil {
		return nil, err
	}

	return &OfflineContext{engine: e, length: length}, nil
}

// Length returns the number of frames that will be rendered.
func (c *OfflineContext) Length() int { return c.length }

// StartRendering renders every frame and returns the result. onQuantum,
// if set, is called after each quantum with the frames rendered so far.
// ctx is checked between quanta.
func (c *OfflineContext) StartRendering(ctx context.Context, onQuantum func(done, total int)) (*Buffer, error) {
	out, err := NewBuffer(c.channels, c.length, c.SampleRate())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.rendered {
		c.mu.Unlock()
		return nil, ErrAlreadyRendered
	}

	c.rendered = true
	c.mu.Unlock()

	for done := 0; done < c.length; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := min(Quantum, c.length-done)
		c.renderInto(out, done, n)
		done += n

		if onQuantum != nil {
			onQuantum(done, c.length)
		}
	}

	return out, nil
}

func (c *OfflineContext) renderInto(out *Buffer, offset, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out.writeBlock(c.graph.render(), offset, n)
}

// RealtimeContext renders on demand as a playback device pulls audio.
// It implements io.Reader producing interleaved float32 little-endian
// frames.
type RealtimeContext struct {
	*engine

	offset  int
	scratch *Buffer
}

// NewRealtimeContext returns a context with the given output channels.
func NewRealtimeContext(channels int, sampleRate float64) (*RealtimeContext, error) {
	e, err := newEngine(channels, sampleRate)
	if err != nil {
		return nil, err
	}

	scratch, err := NewBuffer(channels, Quantum, sampleRate)
	if err != nil {
		return nil, err
	}

	return &RealtimeContext{engine: e, offset: Quantum, scratch: scratch}, nil
}

// RenderFrames fills every channel of dst with the next frames. All dst
// channels must have the same length.
func (c *RealtimeContext) RenderFrames(dst [][]float64) error {
	if len(dst) != c.channels {
		return fmt.Errorf("audiograph: got %d channels, want %d", len(dst), c.channels)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContextClosed
	}

	for i := range len(dst[0]) {
		c.nextFrame()

		for ch := range dst {
			dst[ch][i] = c.scratch.Channels[ch][c.offset]
		}

		c.offset++
	}

	return nil
}

// Read implements io.Reader. Partial frames are never written.
func (c *RealtimeContext) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.EOF
	}

	frameBytes := 4 * c.channels
	frames := len(p) / frameBytes

	for i := range frames {
		c.nextFrame()

		for ch := range c.channels {
			v := float32(c.scratch.Channels[ch][c.offset])
			binary.LittleEndian.PutUint32(p[(i*c.channels+ch)*4:], math.Float32bits(v))
		}

		c.offset++
	}

	return frames * frameBytes, nil
}

// Close stops rendering. Subsequent reads return io.EOF.
func (c *RealtimeContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

// nextFrame renders a new quantum when the pending one is used up.
func (c *RealtimeContext) nextFrame() {
	if c.offset < Quantum {
		return
	}

	c.scratch.writeBlock(c.graph.render(), 0, Quantum)
	c.offset = 0
}
