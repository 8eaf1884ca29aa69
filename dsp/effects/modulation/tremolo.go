package modulation

import (
	"fmt"
	"math"
)

const (
	defaultTremoloRateHz = 5.0
	defaultTremoloDepth  = 0.5

	minTremoloRateHz = 0.1
	maxTremoloRateHz = 20.0
)

// TremoloOption mutates tremolo construction parameters.
type TremoloOption func(*tremoloConfig) error

type tremoloConfig struct {
	rateHz float64
	depth  float64
	shape  Waveform
}

func defaultTremoloConfig() tremoloConfig {
	return tremoloConfig{
		rateHz: defaultTremoloRateHz,
		depth:  defaultTremoloDepth,
		shape:  WaveformSine,
	}
}

// WithTremoloRateHz sets modulation speed in Hz, within [0.1, 20].
func WithTremoloRateHz(rateHz float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		err := validateTremoloRate(rateHz)
		if err != nil {
			return err
		}

		cfg.rateHz = rateHz

		return nil
	}
}

// WithTremoloDepth sets modulation depth in [0, 1].
func WithTremoloDepth(depth float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		err := validateUnit("tremolo depth", depth)
		if err != nil {
			return err
		}

		cfg.depth = depth

		return nil
	}
}

// WithTremoloWaveform selects the LFO shape.
func WithTremoloWaveform(shape Waveform) TremoloOption {
	return func(cfg *tremoloConfig) error {
		cfg.shape = shape
		return nil
	}
}

// Tremolo modulates amplitude with an LFO. With depth d in [0,1] the gain is
//
//	g(t) = (1 - d/2) + (d/2)*lfo(t)
//
// so full depth swings between 0 and 1 for a sine and never inverts.
type Tremolo struct {
	sampleRate float64
	depth      float64
	lfo        *LFO
}

// NewTremolo creates a tremolo with practical defaults and optional overrides.
func NewTremolo(sampleRate float64, opts ...TremoloOption) (*Tremolo, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tremolo sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultTremoloConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	lfo, err := NewLFO(sampleRate, cfg.rateHz, cfg.shape)
	if err != nil {
		return nil, err
	}

	return &Tremolo{sampleRate: sampleRate, depth: cfg.depth, lfo: lfo}, nil
}

// SetRateHz sets modulation speed in Hz.
func (t *Tremolo) SetRateHz(rateHz float64) error {
	if err := validateTremoloRate(rateHz); err != nil {
		return err
	}
	return t.lfo.SetRateHz(rateHz)
}

// SetDepth sets modulation depth in [0, 1].
func (t *Tremolo) SetDepth(depth float64) error {
	if err := validateUnit("tremolo depth", depth); err != nil {
		return err
	}
	t.depth = depth
	return nil
}

// SetWaveform changes the LFO shape without resetting its phase.
func (t *Tremolo) SetWaveform(shape Waveform) {
	t.lfo.SetWaveform(shape)
}

// Reset rewinds the LFO.
func (t *Tremolo) Reset() {
	t.lfo.Reset()
}

// Gain returns the next modulation gain and advances the LFO.
func (t *Tremolo) Gain() float64 {
	half := t.depth / 2
	return (1 - half) + half*t.lfo.Next()
}

// Process processes one sample.
func (t *Tremolo) Process(sample float64) float64 {
	return sample * t.Gain()
}

// ProcessSample is an alias for Process.
func (t *Tremolo) ProcessSample(sample float64) float64 {
	return t.Process(sample)
}

// ProcessInPlace applies tremolo to buf in place.
func (t *Tremolo) ProcessInPlace(buf []float64) error {
	for i := range buf {
		buf[i] = t.Process(buf[i])
	}
	return nil
}

// SampleRate returns sample rate in Hz.
func (t *Tremolo) SampleRate() float64 { return t.sampleRate }

// RateHz returns LFO speed in Hz.
func (t *Tremolo) RateHz() float64 { return t.lfo.RateHz() }

// Depth returns modulation depth in [0, 1].
func (t *Tremolo) Depth() float64 { return t.depth }

// Waveform returns the LFO shape.
func (t *Tremolo) Waveform() Waveform { return t.lfo.Waveform() }

func validateTremoloRate(rateHz float64) error {
	if rateHz < minTremoloRateHz || rateHz > maxTremoloRateHz || math.IsNaN(rateHz) {
		return fmt.Errorf("tremolo rate must be in [%g, %g]: %f", minTremoloRateHz, maxTremoloRateHz, rateHz)
	}
	return nil
}
