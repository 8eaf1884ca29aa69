package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-fx/codec/wav"
	"github.com/cwbudde/algo-fx/dsp/audiograph"
)

type mockFloatReader struct {
	rate, channels int
	samples        []float32
	chunk          int
	err            error
}

func (m *mockFloatReader) SampleRate() int { return m.rate }
func (m *mockFloatReader) Channels() int   { return m.channels }

func (m *mockFloatReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}

	if len(m.samples) == 0 {
		return 0, io.EOF
	}

	n := min(len(p), m.chunk, len(m.samples))
	copy(p, m.samples[:n])
	m.samples = m.samples[n:]

	return n, nil
}

func TestRegistryLookup(t *testing.T) {
	r := Default()

	for _, ext := range []string{"wav", ".WAV", "mp3", ".ogg", " Oga "} {
		if _, ok := r.Get(ext); !ok {
			t.Fatalf("no decoder for %q", ext)
		}
	}

	if _, ok := r.Get("flac"); ok {
		t.Fatal("unexpected flac decoder")
	}

	want := []string{"mp3", "oga", "ogg", "wav", "wave"}
	if got := r.Formats(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistryUnsupported(t *testing.T) {
	_, err := NewRegistry().Decode(".flac", bytes.NewReader(nil))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestRegistryRejectsEmptyResult(t *testing.T) {
	r := NewRegistry()
	r.Register("raw", DecoderFunc(func(io.Reader) (*audiograph.Buffer, error) {
		return &audiograph.Buffer{SampleRate: 8000}, nil
	}))

	_, err := r.Decode("raw", bytes.NewReader(nil))
	if !errors.Is(err, audiograph.ErrEmptyBuffer) {
		t.Fatalf("err = %v, want ErrEmptyBuffer", err)
	}
}

func TestDecodeWAVFile(t *testing.T) {
	src := &audiograph.Buffer{SampleRate: 22050, Channels: [][]float64{
		{0, 0.5, -0.5, 0.25},
		{1, -1, 0.125, 0},
	}}

	data, err := wav.Encode(src)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	buf, err := Default().DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}

	if buf.SampleRate != 22050 || buf.NumChannels() != 2 || buf.Len() != 4 {
		t.Fatalf("got %v Hz, %d ch, %d frames", buf.SampleRate, buf.NumChannels(), buf.Len())
	}

	for ch := range src.Channels {
		for i, want := range src.Channels[ch] {
			if math.Abs(buf.Channels[ch][i]-want) > 1.0/32767 {
				t.Fatalf("ch %d frame %d = %v, want %v", ch, i, buf.Channels[ch][i], want)
			}
		}
	}
}

func TestDecodeFileMissing(t *testing.T) {
	if _, err := Default().DecodeFile(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadPCM16(t *testing.T) {
	var raw bytes.Buffer
	for _, v := range []int16{16384, -16384, 32767, -32768, 0} {
		_ = binary.Write(&raw, binary.LittleEndian, v)
	}

	buf, err := readPCM16(&raw, 44100, 2)
	if err != nil {
		t.Fatal(err)
	}

	// The trailing half frame is dropped.
	if buf.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", buf.Len())
	}

	want := [][]float64{{0.5, 32767.0 / 32768}, {-0.5, -1}}
	if !reflect.DeepEqual(buf.Channels, want) {
		t.Fatalf("channels = %v, want %v", buf.Channels, want)
	}
}

func TestReadFloat32Deinterleaves(t *testing.T) {
	r := &mockFloatReader{
		rate:     48000,
		channels: 2,
		samples:  []float32{0.5, -0.5, 0.25, -0.25, 1, -1},
		chunk:    4,
	}

	buf, err := readFloat32(r)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]float64{{0.5, 0.25, 1}, {-0.5, -0.25, -1}}
	if !reflect.DeepEqual(buf.Channels, want) || buf.SampleRate != 48000 {
		t.Fatalf("got %v at %v Hz", buf.Channels, buf.SampleRate)
	}
}

func TestReadFloat32Error(t *testing.T) {
	r := &mockFloatReader{rate: 8000, channels: 1, err: io.ErrUnexpectedEOF}

	if _, err := readFloat32(r); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestCorruptStreams(t *testing.T) {
	garbage := []byte("definitely not audio")

	for _, ext := range []string{"wav", "mp3", "ogg"} {
		if _, err := Default().Decode(ext, bytes.NewReader(garbage)); err == nil {
			t.Fatalf("%s: expected error for garbage input", ext)
		}
	}
}
