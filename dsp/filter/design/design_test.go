package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestLowpassShape(t *testing.T) {
	sr := 48000.0
	lp := Lowpass(1000, defaultQ, sr)

	if !almostEqual(lp.MagnitudeDB(10, sr), 0, 0.01) {
		t.Fatalf("DC gain = %v dB, want ~0", lp.MagnitudeDB(10, sr))
	}
	if !almostEqual(lp.MagnitudeDB(1000, sr), -3.0103, 0.01) {
		t.Fatalf("corner gain = %v dB, want ~-3", lp.MagnitudeDB(1000, sr))
	}
	if lp.MagnitudeDB(10000, sr) > -30 {
		t.Fatalf("stopband gain = %v dB, want < -30", lp.MagnitudeDB(10000, sr))
	}
}

func TestLowpassResonanceDBPeaksAtCorner(t *testing.T) {
	sr := 44100.0
	lp := LowpassResonanceDB(2000, 1.2, sr)

	if got := lp.MagnitudeDB(2000, sr); !almostEqual(got, 1.2, 0.05) {
		t.Fatalf("corner gain = %v dB, want ~1.2", got)
	}
}

func TestLowpassAboveNyquistIsPassthrough(t *testing.T) {
	got := Lowpass(12000, 1, 22050)
	if got != biquad.Passthrough() {
		t.Fatalf("coefficients = %+v, want passthrough", got)
	}
}

func TestLowShelfGain(t *testing.T) {
	sr := 44100.0
	ls := LowShelf(250, 12, 0, sr)

	if got := ls.MagnitudeDB(20, sr); !almostEqual(got, 12, 0.2) {
		t.Fatalf("shelf gain = %v dB, want ~12", got)
	}
	if got := ls.MagnitudeDB(250, sr); !almostEqual(got, 6, 0.2) {
		t.Fatalf("corner gain = %v dB, want ~6", got)
	}
	if got := ls.MagnitudeDB(15000, sr); !almostEqual(got, 0, 0.1) {
		t.Fatalf("high band gain = %v dB, want ~0", got)
	}
}

func TestLowShelfZeroGainIsFlat(t *testing.T) {
	sr := 44100.0
	ls := LowShelf(250, 0, 0, sr)
	for _, hz := range []float64{20, 250, 1000, 10000} {
		if got := ls.MagnitudeDB(hz, sr); !almostEqual(got, 0, 1e-9) {
			t.Fatalf("gain at %v Hz = %v dB, want 0", hz, got)
		}
	}
}

func TestOnePoleLowpass(t *testing.T) {
	sr := 44100.0
	c := OnePoleLowpass(1000, sr)

	s := biquad.NewSection(c)
	var y float64
	for range 4096 {
		y = s.ProcessSample(1)
	}
	if !almostEqual(y, 1, 1e-9) {
		t.Fatalf("step response settles at %v, want 1", y)
	}

	if c.MagnitudeDB(10000, sr) > -15 {
		t.Fatalf("gain at 10 kHz = %v dB, want attenuation", c.MagnitudeDB(10000, sr))
	}
}

func TestDesignersRejectInvalidSampleRate(t *testing.T) {
	if got := Lowpass(1000, 1, 0); got != (biquad.Coefficients{}) {
		t.Fatalf("Lowpass with zero rate = %+v", got)
	}
	if got := OnePoleLowpass(1000, math.NaN()); got != biquad.Passthrough() {
		t.Fatalf("OnePoleLowpass with NaN rate = %+v", got)
	}
}
