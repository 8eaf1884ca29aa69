package audiograph

import (
	"context"
	"testing"
)

func constBuffer(t *testing.T, channels, length int, sr float64, v float64) *Buffer {
	t.Helper()

	buf, err := NewBuffer(channels, length, sr)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	for _, ch := range buf.Channels {
		for i := range ch {
			ch[i] = v
		}
	}

	return buf
}

// renderOffline builds a graph with build and renders length frames.
func renderOffline(t *testing.T, length int, sr float64, build func(g *Graph) error) *Buffer {
	t.Helper()

	oc, err := NewOfflineContext(2, length, sr)
	if err != nil {
		t.Fatalf("NewOfflineContext() error = %v", err)
	}

	if err := oc.Do(build); err != nil {
		t.Fatalf("build error = %v", err)
	}

	out, err := oc.StartRendering(context.Background(), nil)
	if err != nil {
		t.Fatalf("StartRendering() error = %v", err)
	}

	return out
}
