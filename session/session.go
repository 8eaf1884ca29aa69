package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/effectchain"
	"github.com/cwbudde/algo-fx/dsp/render"
	"github.com/cwbudde/algo-fx/dsp/state"
)

// OutputChannels is the channel count of the live context.
const OutputChannels = 2

var (
	// ErrNoTrack is returned by transport and export calls before a track
	// is loaded.
	ErrNoTrack = errors.New("session: no track loaded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: closed")
)

// Session is one playback session: a loaded track, its AudioState and the
// live graph that plays it. Methods are safe for concurrent use.
type Session struct {
	id        string
	cfg       config
	log       logrus.FieldLogger
	listeners *Listeners

	ctx     *audiograph.RealtimeContext
	builder *effectchain.Builder
	sync    *effectchain.Synchronizer

	mu       sync.Mutex
	st       state.AudioState
	track    *audiograph.Buffer
	player   *player
	position float64
	closed   bool
}

// player is one started source. ended is set on the render goroutine.
type player struct {
	node  *audiograph.BufferSourceNode
	id    audiograph.NodeID
	ended atomic.Bool
}

// New returns a session rendering at sampleRate with default state.
func New(sampleRate float64, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		listeners: NewListeners(),
		st:        state.Default(),
	}
	s.log = cfg.log.WithField("session", s.id)

	ctx, err := audiograph.NewRealtimeContext(OutputChannels, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	builderOpts := append([]effectchain.Option{}, cfg.chainOpts...)
	builderOpts = append(builderOpts, effectchain.WithLogger(s.log))

	builder, err := effectchain.NewBuilder(ctx, builderOpts...)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if _, err := builder.Build(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s.ctx, s.builder = ctx, builder
	s.sync = effectchain.NewSynchronizer(builder)

	if err := s.sync.ApplyState(s.st, true); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s.log.WithField("sampleRate", sampleRate).Debug("session started")

	return s, nil
}

// ID returns the session identifier used in log fields.
func (s *Session) ID() string { return s.id }

// Context returns the live context. Read it to pull rendered audio.
func (s *Session) Context() *audiograph.RealtimeContext { return s.ctx }

// Listeners returns the session's subscriber registry.
func (s *Session) Listeners() *Listeners { return s.listeners }

// State returns the current state with up-to-date transport fields.
func (s *Session) State() state.AudioState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked()

	return s.st
}

// Track returns the loaded track or nil.
func (s *Session) Track() *audiograph.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.track
}

// LoadTrack stops playback, replaces the track and resets the state to
// defaults.
func (s *Session) LoadTrack(buf *audiograph.Buffer) error {
	if err := buf.Validate(); err != nil {
		return s.fail(fmt.Errorf("session: load track: %w", err))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.stopLocked()
	s.track = buf
	s.position = 0

	next := state.Default()
	next.Duration = buf.Duration()

	err := s.commitLocked(next, true)
	st := s.st
	s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}

	s.log.WithFields(logrus.Fields{
		"frames":   buf.Len(),
		"channels": buf.NumChannels(),
		"duration": buf.Duration(),
	}).Info("track loaded")
	s.listeners.emitState(st)

	return nil
}

// Reset restores every effect setting to its default. Transport fields
// are kept.
func (s *Session) Reset() error {
	return s.Update(func(state.AudioState) state.AudioState { return state.Default() })
}

// Update replaces the state with fn's result and ramps the live chain to
// it. Transport fields in the result are ignored; use Play, Pause and
// Seek.
func (s *Session) Update(fn func(state.AudioState) state.AudioState) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.refreshLocked()
	cur := s.st

	next := fn(cur)
	next.IsPlaying = cur.IsPlaying
	next.Progress = cur.Progress
	next.CurrentTime = cur.CurrentTime
	next.Duration = cur.Duration

	err := s.commitLocked(next, false)
	st := s.st
	s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}

	s.listeners.emitState(st)

	return nil
}

// Play starts the track from the current position.
func (s *Session) Play() error {
	s.mu.Lock()
	err := s.playLocked()
	st := s.st
	s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}

	s.listeners.emitState(st)

	return nil
}

// Pause stops the track and keeps the position.
func (s *Session) Pause() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.refreshLocked()
	s.stopLocked()
	s.st.IsPlaying = false
	st := s.st
	s.mu.Unlock()

	s.listeners.emitState(st)

	return nil
}

// Seek moves the position to seconds, clamped to the track. Playback
// continues from there if it was running.
func (s *Session) Seek(seconds float64) error {
	s.mu.Lock()
	if s.track == nil {
		s.mu.Unlock()
		return s.fail(ErrNoTrack)
	}

	if math.IsNaN(seconds) {
		seconds = 0
	}

	s.refreshLocked()
	playing := s.st.IsPlaying
	s.stopLocked()
	s.position = math.Max(0, math.Min(seconds, s.track.Duration()))
	s.setPositionLocked(s.position)

	var err error
	if playing {
		err = s.playLocked()
	}

	st := s.st
	s.mu.Unlock()

	if err != nil {
		return s.fail(err)
	}

	s.listeners.emitState(st)

	return nil
}

// Export renders the loaded track with the current state and speed into
// an independent offline graph. Playback continues meanwhile.
func (s *Session) Export(ctx context.Context, progress render.ProgressFunc) (*render.Result, error) {
	s.mu.Lock()
	track, st := s.track, s.st
	s.mu.Unlock()

	if track == nil {
		return nil, s.fail(ErrNoTrack)
	}

	res, err := render.Render(ctx, track, st, st.Speed, progress,
		render.WithLogger(s.log),
		render.WithChainOptions(s.cfg.chainOpts...),
	)
	if err != nil {
		return nil, s.fail(err)
	}

	return res, nil
}

// Close stops playback, tears the live graph down and drops every
// listener. It is safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.stopLocked()
	s.closed = true
	s.mu.Unlock()

	err := s.builder.Teardown()
	if cerr := s.ctx.Close(); err == nil {
		err = cerr
	}

	s.listeners.Close()
	s.log.Debug("session closed")

	return err
}

func (s *Session) fail(err error) error {
	s.log.WithError(err).Warn("session operation failed")
	s.listeners.emitError(err)

	return err
}

func (s *Session) commitLocked(next state.AudioState, immediate bool) error {
	next = next.Normalize()

	if err := s.sync.ApplyState(next, immediate); err != nil {
		return fmt.Errorf("session: apply state: %w", err)
	}

	if p := s.player; p != nil && next.Speed != s.st.Speed {
		err := s.ctx.Do(func(g *audiograph.Graph) error {
			p.node.PlaybackRate.RampTo(next.Speed, g.CurrentTime(), 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("session: apply speed: %w", err)
		}
	}

	s.st = next

	return nil
}

func (s *Session) playLocked() error {
	if s.closed {
		return ErrClosed
	}

	if s.track == nil {
		return ErrNoTrack
	}

	if s.player != nil {
		return nil
	}

	if s.position >= s.track.Duration() {
		s.position = 0
	}

	p := &player{node: audiograph.NewBufferSource(s.track, s.ctx.SampleRate())}
	p.node.PlaybackRate.SetValue(s.st.Speed)
	p.node.OnEnded(func() { p.ended.Store(true) })

	err := s.ctx.Do(func(g *audiograph.Graph) error {
		chain := s.builder.Current()
		if chain == nil {
			return effectchain.ErrGraphTornDown
		}

		if err := p.node.Start(g.CurrentFrame(), s.position); err != nil {
			return err
		}

		p.id = g.Add(p.node)

		return g.Connect(p.id, chain.Input)
	})
	if err != nil {
		return fmt.Errorf("session: play: %w", err)
	}

	s.player = p
	s.st.IsPlaying = true

	return nil
}

// stopLocked removes the playing source and stores its position.
func (s *Session) stopLocked() {
	p := s.player
	if p == nil {
		return
	}

	_ = s.ctx.Do(func(g *audiograph.Graph) error {
		s.position = p.node.Position()
		g.Remove(p.id)

		return nil
	})

	s.player = nil
}

// refreshLocked updates the transport fields from the playing source.
// A source that reached the end stops playback and rewinds to 0.
func (s *Session) refreshLocked() {
	p := s.player
	if p == nil {
		return
	}

	if p.ended.Load() {
		s.stopLocked()
		s.position = 0
		s.st.IsPlaying = false
		s.setPositionLocked(0)

		return
	}

	_ = s.ctx.Do(func(*audiograph.Graph) error {
		s.position = p.node.Position()
		return nil
	})

	s.setPositionLocked(s.position)
}

func (s *Session) setPositionLocked(seconds float64) {
	s.st.CurrentTime = seconds
	s.st.Progress = 0

	if d := s.st.Duration; d > 0 {
		s.st.Progress = state.ProgressRange.Clamp(seconds / d * 100)
	}
}
