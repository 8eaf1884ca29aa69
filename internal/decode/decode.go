// Package decode turns encoded audio files into planar buffers. Decoders
// are looked up by file extension.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
)

// ErrUnsupportedFormat is returned for extensions without a decoder.
var ErrUnsupportedFormat = errors.New("decode: unsupported format")

// Decoder reads a whole stream into memory.
type Decoder interface {
	Decode(r io.Reader) (*audiograph.Buffer, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.Reader) (*audiograph.Buffer, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(r io.Reader) (*audiograph.Buffer, error) { return f(r) }

// Registry maps lower-case extensions without the dot to decoders.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Default returns a registry with the wav, mp3 and ogg decoders.
func Default() *Registry {
	r := NewRegistry()
	r.Register("wav", WAV{})
	r.Register("wave", WAV{})
	r.Register("mp3", MP3{})
	r.Register("ogg", Vorbis{})
	r.Register("oga", Vorbis{})

	return r
}

// Register adds or replaces the decoder for ext.
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[normalizeExt(ext)] = d
}

// Get returns the decoder for ext.
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]

	return d, ok
}

// Formats returns the registered extensions in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		out = append(out, ext)
	}

	sort.Strings(out)

	return out
}

// Decode decodes r with the decoder registered for ext.
func (r *Registry) Decode(ext string, in io.Reader) (*audiograph.Buffer, error) {
	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	buf, err := d.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", normalizeExt(ext), err)
	}

	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", normalizeExt(ext), err)
	}

	return buf, nil
}

// DecodeFile opens path and decodes it by extension.
func (r *Registry) DecodeFile(path string) (*audiograph.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.Decode(filepath.Ext(path), f)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
