package audiograph

import (
	"errors"
	"math"
)

// ErrSourceStarted is returned when a one-shot source is started twice.
var ErrSourceStarted = errors.New("audiograph: source already started")

// BufferSourceNode plays a Buffer once. PlaybackRate scales the read speed
// and is sampled once per quantum; fractional positions are read with
// linear interpolation. A mono buffer feeds both bus channels.
type BufferSourceNode struct {
	PlaybackRate *Param

	buf       *Buffer
	ratio     float64
	startAt   int64
	stopAt    int64
	pos       float64
	started   bool
	ended     bool
	onEnded   func()
	endedSent bool
}

// NewBufferSource returns a source for buf rendered into a graph running
// at sampleRate.
func NewBufferSource(buf *Buffer, sampleRate float64) *BufferSourceNode {
	return &BufferSourceNode{
		PlaybackRate: NewParam(1, 0, 16),
		buf:          buf,
		ratio:        buf.SampleRate / sampleRate,
		stopAt:       math.MaxInt64,
	}
}

// Start schedules playback at context frame when, reading from offset
// seconds into the buffer.
func (s *BufferSourceNode) Start(when int64, offset float64) error {
	if s.started {
		return ErrSourceStarted
	}

	s.started = true
	s.startAt = when
	s.pos = math.Max(0, offset*s.buf.SampleRate)

	return nil
}

// Stop ends playback at context frame when.
func (s *BufferSourceNode) Stop(when int64) {
	s.stopAt = when
}

// OnEnded registers fn to run once when playback reaches the end of the
// buffer or the stop frame. fn runs on the render goroutine.
func (s *BufferSourceNode) OnEnded(fn func()) { s.onEnded = fn }

// Ended reports whether playback has finished.
func (s *BufferSourceNode) Ended() bool { return s.ended }

// Position returns the current read position in seconds.
func (s *BufferSourceNode) Position() float64 {
	return s.pos / s.buf.SampleRate
}

// Process implements Processor.
func (s *BufferSourceNode) Process(q *QuantumInfo, _, out Block) {
	rate := s.PlaybackRate.ValueAt(q.Time())
	s.PlaybackRate.consume(q.Time() + q.Duration())

	if !s.started || s.ended {
		return
	}

	step := rate * s.ratio
	n := float64(s.buf.Len())

	for i := range out[0] {
		frame := q.Frame + int64(i)
		if frame < s.startAt {
			continue
		}

		if frame >= s.stopAt || s.pos >= n {
			s.finish()
			return
		}

		idx := int(s.pos)
		frac := s.pos - float64(idx)

		for ch := range out {
			a := s.buf.frameAt(ch, idx)
			b := a
			if idx+1 < s.buf.Len() {
				b = s.buf.frameAt(ch, idx+1)
			}

			out[ch][i] = a + (b-a)*frac
		}

		s.pos += step
	}

	if s.pos >= n {
		s.finish()
	}
}

func (s *BufferSourceNode) finish() {
	s.ended = true
	if s.onEnded != nil && !s.endedSent {
		s.endedSent = true
		s.onEnded()
	}
}
