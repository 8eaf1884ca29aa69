package modulation

import (
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestFlangerProcessInPlaceMatchesProcess(t *testing.T) {
	f1, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	f2, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	input := testutil.DeterministicSine(1000, 48000, 1, 256)

	want := make([]float64, len(input))
	for i := range want {
		want[i] = f1.Process(input[i])
	}

	got := append([]float64(nil), input...)
	if err := f2.ProcessInPlace(got); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestFlangerResetRestoresState(t *testing.T) {
	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	in := testutil.Impulse(512, 0)

	out1 := make([]float64, len(in))
	for i := range in {
		out1[i] = f.Process(in[i])
	}

	f.Reset()

	out2 := make([]float64, len(in))
	for i := range in {
		out2[i] = f.Process(in[i])
	}

	testutil.RequireSliceNearlyEqual(t, out2, out1, 1e-12)
}

func TestFlangerImpulseAtConfiguredDelayWhenDepthZero(t *testing.T) {
	f, err := NewFlanger(1000,
		WithFlangerDelaySeconds(0.005),
		WithFlangerDepth(0),
		WithFlangerFeedback(0),
	)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	out := make([]float64, 20)
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}
		out[i] = f.Process(x)
	}

	// Inner mix is 50/50: half the impulse passes immediately, half after 5 samples.
	if math.Abs(out[0]-0.5) > 1e-12 {
		t.Fatalf("dry tap = %v, want 0.5", out[0])
	}
	if math.Abs(out[5]-0.5) > 1e-12 {
		t.Fatalf("delayed tap = %v, want 0.5", out[5])
	}
	for i, v := range out {
		if i != 0 && i != 5 && math.Abs(v) > 1e-12 {
			t.Fatalf("unexpected energy at %d: %v", i, v)
		}
	}
}

func TestFlangerFeedbackRegenerates(t *testing.T) {
	f, err := NewFlanger(1000,
		WithFlangerDelaySeconds(0.004),
		WithFlangerDepth(0),
		WithFlangerFeedback(0.5),
		WithFlangerMix(1),
	)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	out := make([]float64, 13)
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}
		out[i] = f.Process(x)
	}

	for _, tc := range []struct {
		idx  int
		want float64
	}{{4, 1}, {8, 0.5}, {12, 0.25}} {
		if math.Abs(out[tc.idx]-tc.want) > 1e-12 {
			t.Fatalf("echo at %d = %v, want %v", tc.idx, out[tc.idx], tc.want)
		}
	}
}

func TestFlangerFullFeedbackStaysBounded(t *testing.T) {
	f, err := NewFlanger(44100, WithFlangerFeedback(1), WithFlangerDepth(1), WithFlangerDelaySeconds(0.02))
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	buf := testutil.DeterministicNoise(1, 0.5, 44100)
	if err := f.ProcessInPlace(buf); err != nil {
		t.Fatal(err)
	}

	testutil.RequireFinite(t, buf)
	for i, v := range buf {
		if math.Abs(v) > 20 {
			t.Fatalf("sample %d diverged: %v", i, v)
		}
	}
}

func TestFlangerValidation(t *testing.T) {
	if _, err := NewFlanger(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	for _, opt := range []FlangerOption{
		WithFlangerRateHz(0.05),
		WithFlangerRateHz(11),
		WithFlangerDepth(1.5),
		WithFlangerFeedback(-0.1),
		WithFlangerDelaySeconds(0.021),
		WithFlangerMix(math.NaN()),
	} {
		if _, err := NewFlanger(48000, opt); err == nil {
			t.Fatal("expected option validation error")
		}
	}

	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.SetRateHz(3); err != nil || f.RateHz() != 3 {
		t.Fatalf("SetRateHz: err=%v rate=%v", err, f.RateHz())
	}
	if err := f.SetDelaySeconds(0.03); err == nil {
		t.Fatal("expected SetDelaySeconds error")
	}
	if f.DelaySeconds() != defaultFlangerDelaySeconds {
		t.Fatalf("delay changed after failed set: %v", f.DelaySeconds())
	}
}

func TestFlangerRateErrorNamesRange(t *testing.T) {
	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatal(err)
	}

	err = f.SetRateHz(11)
	if err == nil {
		t.Fatal("expected rate error")
	}
	if !strings.Contains(err.Error(), "[0.1, 10]") || strings.Contains(err.Error(), "%!") {
		t.Fatalf("error = %q", err)
	}
}
