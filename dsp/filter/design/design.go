package design

import (
	"math"

	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return edgeCoefficients(freq, sampleRate)
	}

	return lowpassAlpha(w0, math.Sin(w0)/(2*normalizedQ(q)))
}

// LowpassResonanceDB designs a lowpass whose resonance is given in dB
// instead of as a quality factor: the peak gain at the corner frequency
// equals resonanceDB.
func LowpassResonanceDB(freq, resonanceDB, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return edgeCoefficients(freq, sampleRate)
	}

	g := math.Pow(10, resonanceDB/20)

	return lowpassAlpha(w0, math.Sin(w0)/(2*g))
}

func lowpassAlpha(w0, alpha float64) biquad.Coefficients {
	cw := math.Cos(w0)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB. A non-positive q
// selects the maximally steep shelf (slope S = 1).
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	a := math.Pow(10, gainDB/40)

	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		if freq >= sampleRate/2 && sampleRate > 0 {
			// The whole band lies below the corner.
			return biquad.Coefficients{B0: a * a}
		}

		return biquad.Passthrough()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// OnePoleLowpass returns a first-order lowpass y[n] = (1-p)x[n] + p*y[n-1]
// with p = exp(-2*pi*freq/sampleRate), expressed as biquad coefficients.
func OnePoleLowpass(freq, sampleRate float64) biquad.Coefficients {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return biquad.Passthrough()
	}

	if freq <= 0 || math.IsNaN(freq) {
		return biquad.Coefficients{}
	}

	p := math.Exp(-2 * math.Pi * math.Min(freq, sampleRate/2) / sampleRate)

	return biquad.Coefficients{B0: 1 - p, A1: -p}
}

func edgeCoefficients(freq, sampleRate float64) biquad.Coefficients {
	if sampleRate > 0 && freq >= sampleRate/2 {
		return biquad.Passthrough()
	}

	return biquad.Coefficients{}
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
