package effectchain

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/state"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestBuildOrderAndTopology(t *testing.T) {
	h := newHarness(t, 128)

	names := []string{}
	for _, e := range h.chain.Effects() {
		names = append(names, e.Name())
	}

	want := []string{"flanger", "tremolo", "overdrive", "distortion", "bitcrusher", "muffle", "binaural", "8d", "bass"}
	if len(names) != len(want) {
		t.Fatalf("stages = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("stage %d = %q, want %q", i, names[i], want[i])
		}
	}

	err := h.ctx.Do(func(g *audiograph.Graph) error {
		parents := g.Parents(g.Destination())
		if len(parents) != 1 || parents[0] != h.chain.Bass.out {
			t.Fatalf("destination parents = %v, want bass output", parents)
		}

		// Dry gain plus four convolution branches feed the main gain.
		if n := len(g.Parents(h.chain.Reverb.mainID)); n != 5 {
			t.Fatalf("main gain has %d parents, want 5", n)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRebuildTearsDownPreviousChain(t *testing.T) {
	h := newHarness(t, 128)

	var before int
	_ = h.ctx.Do(func(g *audiograph.Graph) error {
		before = g.Len()
		return nil
	})

	first := h.chain

	second, err := h.builder.Build()
	if err != nil {
		t.Fatal(err)
	}

	if !first.TornDown() || second.TornDown() {
		t.Fatalf("torn flags = (%v, %v), want (true, false)", first.TornDown(), second.TornDown())
	}
	if h.builder.Current() != second {
		t.Fatal("builder does not track the new chain")
	}

	_ = h.ctx.Do(func(g *audiograph.Graph) error {
		if g.Len() != before {
			t.Fatalf("graph has %d nodes after rebuild, want %d", g.Len(), before)
		}
		if len(g.Parents(g.Destination())) != 1 {
			t.Fatal("destination fed by more than one chain")
		}

		return nil
	})

	if err := h.builder.Teardown(); err != nil {
		t.Fatal(err)
	}
	if !second.TornDown() || h.builder.Current() != nil {
		t.Fatal("Teardown left the chain in place")
	}
	if err := h.builder.Teardown(); err != nil {
		t.Fatalf("second Teardown() = %v", err)
	}
}

func TestDegradedStagePassesThrough(t *testing.T) {
	h := newHarness(t, 128)

	var p *pair
	_ = h.ctx.Do(func(g *audiograph.Graph) error {
		gb := &graphBuilder{g: g, chain: &Chain{}}
		p = h.builder.newPair(gb, "broken", errors.New("boom"), audiograph.NewGain(0))

		return gb.err
	})

	if !p.Degraded() {
		t.Fatal("stage not marked degraded")
	}

	entry := h.hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["stage"] != "broken" {
		t.Fatalf("missing degradation warning: %+v", entry)
	}

	p.setEnabled(true, 0, 0)
	if p.Enabled() {
		t.Fatal("degraded stage must stay disabled")
	}
	if wet, dry := p.Mix(0); wet != 0 || dry != 1 {
		t.Fatalf("degraded mix = (%v, %v), want (0, 1)", wet, dry)
	}
}

func TestNewBuilderValidation(t *testing.T) {
	ctx, err := audiograph.NewOfflineContext(2, 128, testRate)
	if err != nil {
		t.Fatal(err)
	}

	for _, opt := range []Option{
		WithRampTime(-1),
		WithLogger(nil),
		WithCrusherMode(CrusherMode(7)),
		WithImpulseLibrary(nil),
	} {
		if _, err := NewBuilder(ctx, opt); err == nil {
			t.Fatal("expected option error")
		}
	}

	if _, err := NewBuilder(nil); err == nil {
		t.Fatal("expected nil context error")
	}
}

func TestParseCrusherMode(t *testing.T) {
	for name, want := range map[string]CrusherMode{"": CrusherInline, "inline": CrusherInline, "Worklet": CrusherWorklet} {
		got, err := ParseCrusherMode(name)
		if err != nil || got != want {
			t.Fatalf("ParseCrusherMode(%q) = %v, %v", name, got, err)
		}
	}

	if _, err := ParseCrusherMode("gpu"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultStateIsTransparent(t *testing.T) {
	h := newHarness(t, 1024)
	src := noiseBuffer(1024)

	out := h.render(t, state.Default(), src)

	for ch := range out.Channels {
		testutil.RequireSliceNearlyEqual(t, out.Channels[ch], src.Channels[ch], 1e-9)
	}
}
