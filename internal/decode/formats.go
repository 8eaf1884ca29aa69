package decode

import (
	"encoding/binary"
	"errors"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/cwbudde/algo-fx/codec/wav"
	"github.com/cwbudde/algo-fx/dsp/audiograph"
)

const (
	mp3Channels = 2
	readFrames  = 4096
)

// WAV decodes PCM WAV files.
type WAV struct{}

// Decode implements Decoder.
func (WAV) Decode(r io.Reader) (*audiograph.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return wav.Decode(data)
}

// MP3 decodes MPEG-1/2 layer III streams. The output is always stereo.
type MP3 struct{}

// Decode implements Decoder.
func (MP3) Decode(r io.Reader) (*audiograph.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	return readPCM16(dec, dec.SampleRate(), mp3Channels)
}

// Vorbis decodes Ogg Vorbis streams.
type Vorbis struct{}

// Decode implements Decoder.
func (Vorbis) Decode(r io.Reader) (*audiograph.Buffer, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}

	return readFloat32(dec)
}

// readPCM16 reads interleaved 16-bit little-endian samples until EOF.
func readPCM16(r io.Reader, sampleRate, channels int) (*audiograph.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	frames := len(data) / (2 * channels)

	buf, err := audiograph.NewBuffer(channels, frames, float64(sampleRate))
	if err != nil {
		return nil, err
	}

	for i := range frames {
		for ch := range channels {
			off := 2 * (i*channels + ch)
			v := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.Channels[ch][i] = float64(v) / 32768
		}
	}

	return buf, nil
}

// floatReader is the part of oggvorbis.Reader readFloat32 uses.
type floatReader interface {
	SampleRate() int
	Channels() int
	Read(p []float32) (int, error)
}

// readFloat32 reads interleaved float frames until EOF.
func readFloat32(r floatReader) (*audiograph.Buffer, error) {
	channels := r.Channels()
	if channels < 1 {
		return nil, audiograph.ErrEmptyBuffer
	}

	planar := make([][]float64, channels)
	chunk := make([]float32, readFrames*channels)

	for {
		n, err := r.Read(chunk)
		for i := range n / channels {
			for ch := range channels {
				planar[ch] = append(planar[ch], float64(chunk[i*channels+ch]))
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if n == 0 {
			break
		}
	}

	return &audiograph.Buffer{SampleRate: float64(r.SampleRate()), Channels: planar}, nil
}
