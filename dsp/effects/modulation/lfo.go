package modulation

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the LFO shape.
type Waveform int

const (
	// WaveformSine produces sin(2*pi*phase).
	WaveformSine Waveform = iota
	// WaveformSquare produces +1 for the first half period and -1 for the second.
	WaveformSquare
	// WaveformTriangle starts at 0, peaks at +1 after a quarter period.
	WaveformTriangle
	// WaveformSawtooth starts at 0, rises to +1 and jumps to -1 at half period.
	WaveformSawtooth
)

var waveformNames = map[Waveform]string{
	WaveformSine:     "sine",
	WaveformSquare:   "square",
	WaveformTriangle: "triangle",
	WaveformSawtooth: "sawtooth",
}

// String returns the waveform name.
func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}

	return fmt.Sprintf("waveform(%d)", int(w))
}

// ParseWaveform maps a name such as "triangle" to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	for w, n := range waveformNames {
		if strings.EqualFold(n, name) {
			return w, nil
		}
	}

	return WaveformSine, fmt.Errorf("modulation: unknown waveform %q", name)
}

// WaveformValue evaluates shape at phase (in cycles, wrapped to [0,1)).
// The result lies in [-1, 1].
func WaveformValue(shape Waveform, phase float64) float64 {
	phase -= math.Floor(phase)

	switch shape {
	case WaveformSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveformTriangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case WaveformSawtooth:
		if phase < 0.5 {
			return 2 * phase
		}
		return 2*phase - 2
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// LFO is a low-frequency oscillator advanced one sample at a time.
type LFO struct {
	sampleRate float64
	rateHz     float64
	shape      Waveform
	phase      float64
}

// NewLFO creates an oscillator at rateHz with the given shape.
func NewLFO(sampleRate, rateHz float64, shape Waveform) (*LFO, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("lfo sample rate must be > 0 and finite: %f", sampleRate)
	}

	l := &LFO{sampleRate: sampleRate, shape: shape}

	err := l.SetRateHz(rateHz)
	if err != nil {
		return nil, err
	}

	return l, nil
}

// SetRateHz sets the oscillator frequency. The phase is preserved.
func (l *LFO) SetRateHz(rateHz float64) error {
	if rateHz < 0 || math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
		return fmt.Errorf("lfo rate must be >= 0 and finite: %f", rateHz)
	}

	l.rateHz = rateHz

	return nil
}

// SetWaveform changes the shape without resetting the phase.
func (l *LFO) SetWaveform(shape Waveform) { l.shape = shape }

// Next returns the current value and advances by one sample.
func (l *LFO) Next() float64 {
	v := WaveformValue(l.shape, l.phase)

	l.phase += l.rateHz / l.sampleRate
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
	}

	return v
}

// Reset rewinds the phase to zero.
func (l *LFO) Reset() { l.phase = 0 }

// RateHz returns the oscillator frequency.
func (l *LFO) RateHz() float64 { return l.rateHz }

// Waveform returns the current shape.
func (l *LFO) Waveform() Waveform { return l.shape }

// Phase returns the current phase in cycles.
func (l *LFO) Phase() float64 { return l.phase }
