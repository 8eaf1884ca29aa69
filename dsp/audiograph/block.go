package audiograph

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fx/dsp/core"
)

// Channels is the channel count of the internal bus.
const Channels = 2

// Quantum is the number of frames rendered per graph pull.
const Quantum = core.RenderQuantum

// ErrEmptyBuffer is returned for buffers without frames or channels.
var ErrEmptyBuffer = errors.New("audiograph: empty buffer")

// Block is one render quantum of stereo audio.
type Block [Channels][]float64

// NewBlock allocates a zeroed block of one quantum.
func NewBlock() Block {
	var b Block
	for ch := range b {
		b[ch] = make([]float64, Quantum)
	}

	return b
}

// Zero clears every channel.
func (b Block) Zero() {
	for _, ch := range b {
		clear(ch)
	}
}

// CopyFrom copies src into b.
func (b Block) CopyFrom(src Block) {
	for ch := range b {
		copy(b[ch], src[ch])
	}
}

// Slices returns the channels as a slice of slices.
func (b Block) Slices() [][]float64 {
	return b[:]
}

// Buffer is planar multi-channel audio.
type Buffer struct {
	SampleRate float64
	Channels   [][]float64
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, length int, sampleRate float64) (*Buffer, error) {
	if channels < 1 || length < 1 {
		return nil, fmt.Errorf("%w: %d channels, %d frames", ErrEmptyBuffer, channels, length)
	}

	if err := core.ValidateSampleRate("buffer", sampleRate); err != nil {
		return nil, err
	}

	buf := &Buffer{SampleRate: sampleRate, Channels: make([][]float64, channels)}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float64, length)
	}

	return buf, nil
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}

	return len(b.Channels)
}

// Len returns the number of frames.
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Len()) / b.SampleRate
}

// Validate reports buffers that cannot be played.
func (b *Buffer) Validate() error {
	if b.Len() == 0 {
		return ErrEmptyBuffer
	}

	if err := core.ValidateSampleRate("buffer", b.SampleRate); err != nil {
		return err
	}

	n := b.Len()
	for ch, data := range b.Channels {
		if len(data) != n {
			return fmt.Errorf("audiograph: channel %d has %d frames, want %d", ch, len(data), n)
		}
	}

	return nil
}

// frameAt returns channel ch of frame i, reading the last channel for
// missing ones and 0 outside the buffer.
func (b *Buffer) frameAt(ch, i int) float64 {
	if i < 0 || i >= b.Len() {
		return 0
	}

	return b.Channels[min(ch, len(b.Channels)-1)][i]
}

// writeBlock stores the first n frames of blk at offset. A mono buffer gets
// the average of the stereo bus; channels beyond the bus are silent.
func (b *Buffer) writeBlock(blk Block, offset, n int) {
	for ch, dst := range b.Channels {
		dst = dst[offset : offset+n]
		switch {
		case len(b.Channels) == 1:
			for i := range dst {
				dst[i] = 0.5 * (blk[0][i] + blk[1][i])
			}
		case ch < Channels:
			copy(dst, blk[ch][:n])
		default:
			clear(dst)
		}
	}
}

// Peak returns the maximum absolute sample value.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, ch := range b.Channels {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	return peak
}
