package wav

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
)

const (
	// HeaderSize is the size of the RIFF, fmt and data chunk headers.
	HeaderSize = 44

	// BitDepth is the sample width of encoded files.
	BitDepth = 16

	pcmFormat = 1

	negativeScale = 32768.0
	positiveScale = 32767.0
)

// ErrInvalidFile is returned when Decode cannot parse its input.
var ErrInvalidFile = errors.New("wav: invalid file")

// Encode serializes buf as a 16-bit PCM WAV file with the buffer's
// channel count and sample rate. The result is HeaderSize+N*C*2 bytes long.
func Encode(buf *audiograph.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}

	channels := buf.NumChannels()
	frames := buf.Len()
	sampleRate := int(math.Round(buf.SampleRate))

	data := make([]int, frames*channels)
	for i := range frames {
		for ch, samples := range buf.Channels {
			data[i*channels+ch] = Quantize(samples[i])
		}
	}

	out := newMemFile(HeaderSize + len(data)*BitDepth/8)
	enc := wav.NewEncoder(out, sampleRate, BitDepth, channels, pcmFormat)

	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}

	return out.Bytes(), nil
}

// Quantize converts one sample to a 16-bit integer value.
func Quantize(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return int(math.Max(v, -1) * negativeScale)
	default:
		return int(math.Min(v, 1) * positiveScale)
	}
}

// Decode parses a PCM WAV file into a planar buffer scaled to [-1, 1].
func Decode(data []byte) (*audiograph.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return FromIntBuffer(pcm)
}

// FromIntBuffer converts interleaved integer PCM into a planar buffer.
func FromIntBuffer(pcm *audio.IntBuffer) (*audiograph.Buffer, error) {
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels < 1 {
		return nil, ErrInvalidFile
	}

	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels

	buf, err := audiograph.NewBuffer(channels, frames, float64(pcm.Format.SampleRate))
	if err != nil {
		return nil, err
	}

	depth := pcm.SourceBitDepth
	if depth <= 0 {
		depth = BitDepth
	}

	neg := math.Ldexp(1, depth-1)
	pos := neg - 1

	for i := range frames {
		for ch := range channels {
			v := float64(pcm.Data[i*channels+ch])
			if depth == 8 {
				v -= neg
			}

			if v < 0 {
				buf.Channels[ch][i] = v / neg
			} else {
				buf.Channels[ch][i] = v / pos
			}
		}
	}

	return buf, nil
}
