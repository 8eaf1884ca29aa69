package worklet

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestHostMatchesInline(t *testing.T) {
	const sr = 44100.0

	params := effects.CrusherParams{Bits: 4, TargetRate: 11025}

	inline, err := effects.NewBitCrusher(sr)
	if err != nil {
		t.Fatal(err)
	}

	host, err := Start(sr, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close()

	src := testutil.DeterministicNoise(7, 0.8, 1000)

	for start := 0; start < len(src); start += 128 {
		end := min(len(src), start+128)

		want := [][]float64{append([]float64(nil), src[start:end]...), append([]float64(nil), src[start:end]...)}
		got := [][]float64{append([]float64(nil), src[start:end]...), append([]float64(nil), src[start:end]...)}

		if err := inline.ProcessBlock(want, params); err != nil {
			t.Fatal(err)
		}
		if err := host.Process(got, params); err != nil {
			t.Fatal(err)
		}

		for ch := range want {
			testutil.RequireSliceNearlyEqual(t, got[ch], want[ch], 0)
		}
	}
}

func TestHostRejectsInvalidParams(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	host, err := Start(44100, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close()

	block := [][]float64{{0.3, 0.4}}
	if err := host.Process(block, effects.CrusherParams{Bits: 0, TargetRate: 8000}); err == nil {
		t.Fatal("expected parameter error")
	}

	if block[0][0] != 0.3 || block[0][1] != 0.4 {
		t.Fatalf("rejected block modified: %v", block[0])
	}
	if len(hook.AllEntries()) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected one warning, got %d entries", len(hook.AllEntries()))
	}
}

func TestHostClosed(t *testing.T) {
	host, err := Start(44100, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := host.Close(); err != nil {
		t.Fatal(err)
	}
	_ = host.Close()

	err = host.Process([][]float64{{0.5}}, effects.CrusherParams{Bits: 8, TargetRate: 22050})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Process after Close = %v, want ErrClosed", err)
	}
}

func TestHostSendsCopyOfBlock(t *testing.T) {
	h := &Host{
		requests: make(chan request),
		done:     make(chan struct{}),
		log:      logrus.StandardLogger(),
	}
	defer h.Close()

	block := [][]float64{{0.1, 0.2, 0.3}, {-0.1, -0.2, -0.3}}
	params := effects.CrusherParams{Bits: 8, TargetRate: 44100}

	errc := make(chan error, 1)
	go func() { errc <- h.Process(block, params) }()

	req := <-h.requests
	for ch := range block {
		if &req.block[ch][0] == &block[ch][0] {
			t.Fatalf("channel %d shares memory with the caller", ch)
		}
		testutil.RequireSliceNearlyEqual(t, req.block[ch], block[ch], 0)
	}

	// Worker output is copied back only once the reply arrives.
	req.block[0][0] = 0.5
	if block[0][0] != 0.1 {
		t.Fatalf("caller block changed before reply: %v", block[0][0])
	}

	req.reply <- nil
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if block[0][0] != 0.5 {
		t.Fatalf("block[0][0] = %v, want worker result 0.5", block[0][0])
	}
}
