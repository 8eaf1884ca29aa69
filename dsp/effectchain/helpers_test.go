package effectchain

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/state"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

const testRate = 8000.0

type harness struct {
	ctx     *audiograph.OfflineContext
	builder *Builder
	sync    *Synchronizer
	chain   *Chain
	hook    *test.Hook
}

func newHarness(t *testing.T, length int, opts ...Option) *harness {
	t.Helper()

	ctx, err := audiograph.NewOfflineContext(2, length, testRate)
	if err != nil {
		t.Fatalf("NewOfflineContext() error = %v", err)
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	b, err := NewBuilder(ctx, append([]Option{WithLogger(logger), WithSeed(42)}, opts...)...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	chain, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	return &harness{ctx: ctx, builder: b, sync: NewSynchronizer(b), chain: chain, hook: hook}
}

func (h *harness) render(t *testing.T, st state.AudioState, src *audiograph.Buffer) *audiograph.Buffer {
	t.Helper()

	if err := h.sync.ApplyState(st, true); err != nil {
		t.Fatalf("ApplyState() error = %v", err)
	}

	err := h.ctx.Do(func(g *audiograph.Graph) error {
		s := audiograph.NewBufferSource(src, g.SampleRate())
		if err := s.Start(0, 0); err != nil {
			return err
		}

		return g.Connect(g.Add(s), h.chain.Input)
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := h.ctx.StartRendering(context.Background(), nil)
	if err != nil {
		t.Fatalf("StartRendering() error = %v", err)
	}

	return out
}

func noiseBuffer(n int) *audiograph.Buffer {
	return &audiograph.Buffer{SampleRate: testRate, Channels: testutil.StereoNoise(1, 0.5, n)}
}
