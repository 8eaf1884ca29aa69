package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fx/dsp/conv"
	"github.com/tphakala/simd/f64"
)

const (
	// Normalization constants matching the browser convolver so
	// procedurally generated impulses land at a comparable loudness.
	normalizeCalibration     = 0.00125 // -58 dB
	normalizeMinPower        = 0.000125
	normalizeCalibrationRate = 44100.0
)

// NormalizationScale returns the gain applied to ir when normalization is
// enabled: the reciprocal RMS power across all channels, floored at a
// minimum power, times a fixed calibration, times 44100/sampleRate.
func NormalizationScale(ir *Impulse) float64 {
	n := ir.Len()
	if n == 0 {
		return 1
	}

	var energy float64
	for _, ch := range ir.Channels {
		energy += f64.DotProduct(ch, ch)
	}

	power := math.Sqrt(energy / float64(len(ir.Channels)*n))
	if math.IsNaN(power) || math.IsInf(power, 0) || power < normalizeMinPower {
		power = normalizeMinPower
	}

	scale := normalizeCalibration / power
	if ir.SampleRate > 0 {
		scale *= normalizeCalibrationRate / ir.SampleRate
	}

	return scale
}

// Convolver applies a mono or stereo impulse response to a stereo signal
// block by block using uniformly partitioned convolution. With a stereo
// impulse, output channel c is input channel c convolved with impulse
// channel c; a mono impulse is used for both channels.
type Convolver struct {
	engines []*conv.Partitioned
	scale   float64
}

// NewConvolver prepares ir for blocks of blockSize frames. When normalize
// is true the impulse is scaled by [NormalizationScale].
func NewConvolver(ir *Impulse, blockSize int, normalize bool) (*Convolver, error) {
	if ir.Len() == 0 {
		return nil, ErrEmptyImpulse
	}

	if len(ir.Channels) > 2 {
		return nil, fmt.Errorf("reverb: impulse must have 1 or 2 channels, got %d", len(ir.Channels))
	}

	scale := 1.0
	if normalize {
		scale = NormalizationScale(ir)
	}

	c := &Convolver{scale: scale}
	kernel := make([]float64, ir.Len())

	for ch := range 2 {
		f64.Scale(kernel, ir.Channels[min(ch, len(ir.Channels)-1)], scale)

		engine, err := conv.NewPartitioned(kernel, blockSize)
		if err != nil {
			return nil, fmt.Errorf("reverb: failed to create convolution engine: %w", err)
		}

		c.engines = append(c.engines, engine)
	}

	return c, nil
}

// Scale returns the normalization gain baked into the kernels.
func (c *Convolver) Scale() float64 { return c.scale }

// ProcessBlock convolves each input channel into the matching dst channel.
// dst and src must hold the same number of channels (at most two) of one
// block each.
func (c *Convolver) ProcessBlock(dst, src [][]float64) error {
	for ch := range dst {
		err := c.engines[ch].ProcessBlock(dst[ch], src[ch])
		if err != nil {
			return err
		}
	}

	return nil
}

// Idle advances the convolution history with src without producing output.
func (c *Convolver) Idle(src [][]float64) error {
	for ch := range src {
		err := c.engines[ch].Idle(src[ch])
		if err != nil {
			return err
		}
	}

	return nil
}

// Reset clears all convolution history.
func (c *Convolver) Reset() {
	for _, e := range c.engines {
		e.Reset()
	}
}
