package effectchain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
)

const (
	// DefaultSeed seeds impulse synthesis when no seed is configured.
	DefaultSeed uint64 = 0x5eed

	// DefaultRampTime is the length of parameter ramps in seconds.
	DefaultRampTime = 0.05

	maxRampTime = 10.0
)

// CrusherMode selects where the bit crusher kernel runs.
type CrusherMode int

const (
	// CrusherInline runs the kernel on the render goroutine.
	CrusherInline CrusherMode = iota
	// CrusherWorklet runs the kernel on a dedicated worker goroutine.
	CrusherWorklet
)

func (m CrusherMode) String() string {
	switch m {
	case CrusherInline:
		return "inline"
	case CrusherWorklet:
		return "worklet"
	default:
		return fmt.Sprintf("crusher(%d)", int(m))
	}
}

// ParseCrusherMode maps "inline" or "worklet" to a CrusherMode.
func ParseCrusherMode(name string) (CrusherMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "inline":
		return CrusherInline, nil
	case "worklet", "worker":
		return CrusherWorklet, nil
	default:
		return CrusherInline, fmt.Errorf("effectchain: unknown crusher mode %q", name)
	}
}

// Option configures a Builder.
type Option func(*config) error

type config struct {
	seed        uint64
	log         logrus.FieldLogger
	crusherMode CrusherMode
	rampTime    float64
	library     *reverb.Library
}

func defaultConfig() config {
	return config{
		seed:     DefaultSeed,
		log:      logrus.StandardLogger(),
		rampTime: DefaultRampTime,
	}
}

// WithSeed sets the impulse synthesis seed.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithLogger sets the logger for degradation and regeneration events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if log == nil {
			return errors.New("effectchain: nil logger")
		}

		cfg.log = log

		return nil
	}
}

// WithCrusherMode selects inline or worker crushing.
func WithCrusherMode(mode CrusherMode) Option {
	return func(cfg *config) error {
		if mode != CrusherInline && mode != CrusherWorklet {
			return fmt.Errorf("effectchain: invalid crusher mode %d", int(mode))
		}

		cfg.crusherMode = mode

		return nil
	}
}

// WithRampTime sets the non-immediate ramp length in seconds.
func WithRampTime(seconds float64) Option {
	return func(cfg *config) error {
		if seconds < 0 || seconds > maxRampTime || math.IsNaN(seconds) {
			return fmt.Errorf("effectchain: ramp time must be in [0, %g]: %f", maxRampTime, seconds)
		}

		cfg.rampTime = seconds

		return nil
	}
}

// WithImpulseLibrary shares a reverb impulse library between builders.
// Its seed replaces the configured seed for reverb impulses.
func WithImpulseLibrary(lib *reverb.Library) Option {
	return func(cfg *config) error {
		if lib == nil {
			return errors.New("effectchain: nil impulse library")
		}

		cfg.library = lib

		return nil
	}
}
