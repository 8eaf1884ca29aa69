package audiograph

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

func rampBuffer(n int, sr float64) *Buffer {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}

	return &Buffer{SampleRate: sr, Channels: [][]float64{data}}
}

func TestBufferSourcePlaybackRate(t *testing.T) {
	const sr = 1000.0

	for _, tc := range []struct {
		rate float64
		want []float64
	}{
		{2, []float64{0, 2, 4, 6, 8, 0, 0}},
		{0.5, []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}},
	} {
		out := renderOffline(t, Quantum, sr, func(g *Graph) error {
			s := NewBufferSource(rampBuffer(10, sr), sr)
			s.PlaybackRate.SetValue(tc.rate)
			if err := s.Start(0, 0); err != nil {
				return err
			}

			return g.Connect(g.Add(s), g.Destination())
		})

		for i, want := range tc.want {
			if got := out.Channels[1][i]; math.Abs(got-want) > 1e-12 {
				t.Fatalf("rate %v frame %d = %v, want %v", tc.rate, i, got, want)
			}
		}
	}
}

func TestBufferSourceOffsetAndEnd(t *testing.T) {
	const sr = 1000.0

	s := NewBufferSource(rampBuffer(10, sr), sr)
	if err := s.Start(4, 0.005); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(0, 0); err == nil {
		t.Fatal("expected error on second Start")
	}

	ended := 0
	s.OnEnded(func() { ended++ })

	out := renderOffline(t, Quantum*2, sr, func(g *Graph) error {
		return g.Connect(g.Add(s), g.Destination())
	})

	want := []float64{0, 0, 0, 0, 5, 6, 7, 8, 9, 0}
	for i, w := range want {
		if got := out.Channels[0][i]; math.Abs(got-w) > 1e-9 {
			t.Fatalf("frame %d = %v, want %v", i, got, w)
		}
	}

	if !s.Ended() || ended != 1 {
		t.Fatalf("ended = %v, callbacks = %d", s.Ended(), ended)
	}
}

func TestGainRampIsSampleAccurate(t *testing.T) {
	const sr = 1000.0

	src := constBuffer(t, 2, Quantum, sr, 1)

	out := renderOffline(t, Quantum, sr, func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		gain := NewGain(0)
		gain.Gain.RampTo(1, 0, 0.1)

		return g.Chain(g.Add(s), g.Add(gain), g.Destination())
	})

	for _, i := range []int{0, 25, 50, 100, 127} {
		want := math.Min(1, float64(i)/100)
		if got := out.Channels[0][i]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("frame %d = %v, want %v", i, got, want)
		}
	}
}

func TestWaveShaperMapsThroughCurve(t *testing.T) {
	n := NewWaveShaper()
	in, out := NewBlock(), NewBlock()

	inputs := []float64{-2, -1, -0.5, 0, 0.25, 1, 3}
	copy(in[0], inputs)

	n.Process(nil, in, out)
	for i, x := range inputs {
		if out[0][i] != x {
			t.Fatalf("passthrough frame %d = %v, want %v", i, out[0][i], x)
		}
	}

	n.SetCurve([]float64{-0.5, 0, 0.5})
	out.Zero()
	n.Process(nil, in, out)

	want := []float64{-0.5, -0.5, -0.25, 0, 0.125, 0.5, 0.5}
	for i, w := range want {
		if math.Abs(out[0][i]-w) > 1e-12 {
			t.Fatalf("shaped frame %d = %v, want %v", i, out[0][i], w)
		}
	}
}

func TestPannerHardRight(t *testing.T) {
	const sr = 8000.0

	src := constBuffer(t, 2, Quantum*2, sr, 1)

	out := renderOffline(t, Quantum*2, sr, func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		p := NewPanner()
		p.PositionX.SetValue(1)

		return g.Chain(g.Add(s), g.Add(p), g.Destination())
	})

	for i := range Quantum * 2 {
		if math.Abs(out.Channels[0][i]) > 1e-12 || math.Abs(out.Channels[1][i]-2) > 1e-12 {
			t.Fatalf("frame %d = (%v, %v), want (0, 2)", i, out.Channels[0][i], out.Channels[1][i])
		}
	}
}

func TestPannerFollowsMover(t *testing.T) {
	const sr = 8000.0

	orbit := spatial.NewOrbit()
	orbit.SetAutoRotate(false)
	if err := orbit.SetManualAngle(270); err != nil {
		t.Fatal(err)
	}

	src := constBuffer(t, 2, Quantum, sr, 1)

	out := renderOffline(t, Quantum, sr, func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		p := NewPanner()
		p.SetMover(orbit)

		return g.Chain(g.Add(s), g.Add(p), g.Destination())
	})

	// 270 degrees on the circle is hard left.
	if math.Abs(out.Channels[0][10]-2) > 1e-12 || math.Abs(out.Channels[1][10]) > 1e-12 {
		t.Fatalf("frame 10 = (%v, %v), want (2, 0)", out.Channels[0][10], out.Channels[1][10])
	}
}

func TestBiquadLowShelfBoostsDC(t *testing.T) {
	const sr = 8000.0

	src := constBuffer(t, 2, 4096, sr, 1)

	out := renderOffline(t, 4096, sr, func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		f := NewBiquad(FilterLowShelf, sr)
		f.Frequency.SetValue(250)
		f.Gain.SetValue(6)

		return g.Chain(g.Add(s), g.Add(f), g.Destination())
	})

	want := math.Pow(10, 6.0/20)
	if got := out.Channels[0][4000]; math.Abs(got-want) > 1e-3 {
		t.Fatalf("settled DC gain = %v, want %v", got, want)
	}
}

func TestOnePoleSettlesToDC(t *testing.T) {
	const sr = 8000.0

	src := constBuffer(t, 2, 2048, sr, 0.5)

	out := renderOffline(t, 2048, sr, func(g *Graph) error {
		s := NewBufferSource(src, sr)
		_ = s.Start(0, 0)

		return g.Chain(g.Add(s), g.Add(NewOnePole(1000, sr)), g.Destination())
	})

	if out.Channels[0][0] >= 0.5 {
		t.Fatalf("first sample = %v, want smoothed", out.Channels[0][0])
	}
	if got := out.Channels[1][2000]; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("settled = %v, want 0.5", got)
	}
}
