package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fx/dsp/delay"
)

const (
	defaultFlangerRateHz       = 0.5
	defaultFlangerDepth        = 0.5
	defaultFlangerFeedback     = 0.5
	defaultFlangerDelaySeconds = 0.005
	defaultFlangerMix          = 0.5

	minFlangerRateHz       = 0.1
	maxFlangerRateHz       = 10.0
	maxFlangerDelaySeconds = 0.020 // 20 ms

	// Ceiling for the regenerative gain; a feedback of 1 maps here.
	maxFlangerFeedbackGain = 0.95
)

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	rateHz    float64
	depth     float64
	feedback  float64
	baseDelay float64
	mix       float64
}

func defaultFlangerConfig() flangerConfig {
	return flangerConfig{
		rateHz:    defaultFlangerRateHz,
		depth:     defaultFlangerDepth,
		feedback:  defaultFlangerFeedback,
		baseDelay: defaultFlangerDelaySeconds,
		mix:       defaultFlangerMix,
	}
}

// WithFlangerRateHz sets modulation speed in Hz, within [0.1, 10].
func WithFlangerRateHz(rateHz float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		err := validateFlangerRate(rateHz)
		if err != nil {
			return err
		}

		cfg.rateHz = rateHz

		return nil
	}
}

// WithFlangerDepth sets the modulation excursion as a fraction of the base
// delay, within [0, 1].
func WithFlangerDepth(depth float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		err := validateUnit("flanger depth", depth)
		if err != nil {
			return err
		}

		cfg.depth = depth

		return nil
	}
}

// WithFlangerFeedback sets regenerative gain within [0, 1].
func WithFlangerFeedback(feedback float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		err := validateUnit("flanger feedback", feedback)
		if err != nil {
			return err
		}

		cfg.feedback = feedback

		return nil
	}
}

// WithFlangerDelaySeconds sets the base delay within [0, 0.02] seconds.
func WithFlangerDelaySeconds(baseDelay float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		err := validateFlangerDelay(baseDelay)
		if err != nil {
			return err
		}

		cfg.baseDelay = baseDelay

		return nil
	}
}

// WithFlangerMix sets the inner wet amount in [0, 1].
func WithFlangerMix(mix float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		err := validateUnit("flanger mix", mix)
		if err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

// Flanger is a short modulated-delay effect. A sine LFO sweeps the delay
// time around the base delay:
//
//	delay(t) = baseDelay * (1 + depth*sin(2*pi*rate*t))
//
// The feedback path is folded into the delay line itself, so the unit is a
// single feed-forward block from the outside.
type Flanger struct {
	sampleRate float64
	feedback   float64
	baseDelay  float64
	depth      float64
	mix        float64

	lfo  *LFO
	line *delay.Line
}

// NewFlanger creates a flanger with practical defaults and optional overrides.
func NewFlanger(sampleRate float64, opts ...FlangerOption) (*Flanger, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("flanger sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultFlangerConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	lfo, err := NewLFO(sampleRate, cfg.rateHz, WaveformSine)
	if err != nil {
		return nil, err
	}

	// Base delay plus full excursion, plus interpolation guard samples.
	line, err := delay.New(int(math.Ceil(2*maxFlangerDelaySeconds*sampleRate)) + 4)
	if err != nil {
		return nil, err
	}

	return &Flanger{
		sampleRate: sampleRate,
		feedback:   cfg.feedback,
		baseDelay:  cfg.baseDelay,
		depth:      cfg.depth,
		mix:        cfg.mix,
		lfo:        lfo,
		line:       line,
	}, nil
}

// SetRateHz sets modulation speed in Hz.
func (f *Flanger) SetRateHz(rateHz float64) error {
	err := validateFlangerRate(rateHz)
	if err != nil {
		return err
	}

	return f.lfo.SetRateHz(rateHz)
}

// SetDepth sets the modulation excursion as a fraction of the base delay.
func (f *Flanger) SetDepth(depth float64) error {
	err := validateUnit("flanger depth", depth)
	if err != nil {
		return err
	}

	f.depth = depth

	return nil
}

// SetFeedback sets regenerative gain in [0, 1].
func (f *Flanger) SetFeedback(feedback float64) error {
	err := validateUnit("flanger feedback", feedback)
	if err != nil {
		return err
	}

	f.feedback = feedback

	return nil
}

// SetDelaySeconds sets the base delay in seconds.
func (f *Flanger) SetDelaySeconds(baseDelay float64) error {
	err := validateFlangerDelay(baseDelay)
	if err != nil {
		return err
	}

	f.baseDelay = baseDelay

	return nil
}

// SetMix sets the inner wet amount in [0, 1].
func (f *Flanger) SetMix(mix float64) error {
	err := validateUnit("flanger mix", mix)
	if err != nil {
		return err
	}

	f.mix = mix

	return nil
}

// Reset clears delay and LFO state.
func (f *Flanger) Reset() {
	f.line.Reset()
	f.lfo.Reset()
}

// Process processes one sample.
func (f *Flanger) Process(sample float64) float64 {
	mod := f.lfo.Next()

	delaySamples := f.baseDelay * (1 + f.depth*mod) * f.sampleRate
	delayed := f.line.ReadFractional(delaySamples)

	f.line.Write(sample + delayed*f.feedbackGain())

	return sample*(1-f.mix) + delayed*f.mix
}

// ProcessSample is an alias for Process.
func (f *Flanger) ProcessSample(sample float64) float64 {
	return f.Process(sample)
}

// ProcessInPlace applies flanging to buf in place.
func (f *Flanger) ProcessInPlace(buf []float64) error {
	for i := range buf {
		buf[i] = f.Process(buf[i])
	}

	return nil
}

// SampleRate returns sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.sampleRate }

// RateHz returns LFO speed in Hz.
func (f *Flanger) RateHz() float64 { return f.lfo.RateHz() }

// Depth returns the modulation excursion as a fraction of the base delay.
func (f *Flanger) Depth() float64 { return f.depth }

// DelaySeconds returns the base delay in seconds.
func (f *Flanger) DelaySeconds() float64 { return f.baseDelay }

// Feedback returns the requested feedback amount in [0, 1].
func (f *Flanger) Feedback() float64 { return f.feedback }

// Mix returns the inner wet amount in [0, 1].
func (f *Flanger) Mix() float64 { return f.mix }

func (f *Flanger) feedbackGain() float64 {
	return math.Min(f.feedback, maxFlangerFeedbackGain)
}

func validateFlangerRate(rateHz float64) error {
	if rateHz < minFlangerRateHz || rateHz > maxFlangerRateHz || math.IsNaN(rateHz) {
		return fmt.Errorf("flanger rate must be in [%g, %g]: %f", minFlangerRateHz, maxFlangerRateHz, rateHz)
	}

	return nil
}

func validateFlangerDelay(baseDelay float64) error {
	if baseDelay < 0 || baseDelay > maxFlangerDelaySeconds || math.IsNaN(baseDelay) {
		return fmt.Errorf("flanger delay must be in [0, %g]: %f", maxFlangerDelaySeconds, baseDelay)
	}

	return nil
}

func validateUnit(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("%s must be in [0, 1]: %f", name, v)
	}

	return nil
}
