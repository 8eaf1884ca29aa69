package audiograph

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

func buildMovingChain(src *Buffer) func(g *Graph) error {
	return func(g *Graph) error {
		sr := g.SampleRate()

		s := NewBufferSource(src, sr)
		s.PlaybackRate.SetValue(1.25)
		if err := s.Start(0, 0); err != nil {
			return err
		}

		lp := NewBiquad(FilterLowpass, sr)
		lp.Frequency.SetValue(2000)
		lp.Q.SetValue(1.2)

		p := NewPanner()
		p.SetMover(spatial.NewOrbit())

		gain := NewGain(1)
		gain.Gain.RampTo(0.2, 0.01, 0.05)

		return g.Chain(g.Add(s), g.Add(lp), g.Add(p), g.Add(gain), g.Destination())
	}
}

func TestRealtimeMatchesOffline(t *testing.T) {
	const (
		sr     = 44100.0
		length = 3000
	)

	src := &Buffer{SampleRate: sr, Channels: [][]float64{
		testutil.DeterministicNoise(3, 0.5, 4000),
		testutil.DeterministicSine(440, sr, 0.5, 4000),
	}}

	want := renderOffline(t, length, sr, buildMovingChain(src))

	rc, err := NewRealtimeContext(2, sr)
	if err != nil {
		t.Fatalf("NewRealtimeContext() error = %v", err)
	}
	defer rc.Close()

	if err := rc.Do(buildMovingChain(src)); err != nil {
		t.Fatal(err)
	}

	got := [][]float64{make([]float64, length), make([]float64, length)}
	for start, chunk := 0, 1; start < length; chunk = chunk*3 + 1 {
		end := min(length, start+chunk)
		if err := rc.RenderFrames([][]float64{got[0][start:end], got[1][start:end]}); err != nil {
			t.Fatal(err)
		}
		start = end
	}

	for ch := range got {
		for i := range got[ch] {
			if got[ch][i] != want.Channels[ch][i] {
				t.Fatalf("ch %d frame %d: realtime %v, offline %v", ch, i, got[ch][i], want.Channels[ch][i])
			}
		}
	}
}

func TestRealtimeReadEncodesFloat32(t *testing.T) {
	const sr = 8000.0

	rc, err := NewRealtimeContext(2, sr)
	if err != nil {
		t.Fatal(err)
	}

	src := constBuffer(t, 2, 64, sr, 0.5)

	err = rc.Do(func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		return g.Connect(g.Add(s), g.Destination())
	})
	if err != nil {
		t.Fatal(err)
	}

	p := make([]byte, 8*10+3)
	n, err := rc.Read(p)
	if err != nil || n != 80 {
		t.Fatalf("Read() = %d, %v; want 80, nil", n, err)
	}

	for i := 0; i < n; i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); v != 0.5 {
			t.Fatalf("sample %d = %v, want 0.5", i/4, v)
		}
	}

	if err := rc.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rc.Read(p); err == nil {
		t.Fatal("expected EOF after Close")
	}
	if err := rc.Do(func(*Graph) error { return nil }); !errors.Is(err, ErrContextClosed) {
		t.Fatalf("Do after Close = %v, want ErrContextClosed", err)
	}
}

func TestOfflineRenderingProgressAndCancel(t *testing.T) {
	oc, err := NewOfflineContext(1, 300, 8000)
	if err != nil {
		t.Fatal(err)
	}

	var calls []int
	out, err := oc.StartRendering(context.Background(), func(done, total int) {
		if total != 300 {
			t.Fatalf("total = %d", total)
		}
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatal(err)
	}

	if out.NumChannels() != 1 || out.Len() != 300 {
		t.Fatalf("output = %d ch x %d frames", out.NumChannels(), out.Len())
	}
	if len(calls) != 3 || calls[2] != 300 {
		t.Fatalf("progress calls = %v", calls)
	}

	if _, err := oc.StartRendering(context.Background(), nil); !errors.Is(err, ErrAlreadyRendered) {
		t.Fatalf("second render error = %v", err)
	}

	oc2, err := NewOfflineContext(2, 300, 8000)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := oc2.StartRendering(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled render error = %v", err)
	}
}

func TestNewContextValidation(t *testing.T) {
	if _, err := NewOfflineContext(2, 0, 44100); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := NewOfflineContext(0, 10, 44100); err == nil {
		t.Fatal("expected error for zero channels")
	}
	if _, err := NewRealtimeContext(2, math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}
}
