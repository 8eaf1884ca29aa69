package effects

import (
	"fmt"
	"math"
)

const (
	minCrusherBits       = 1
	maxCrusherBits       = 16
	minCrusherTargetRate = 1000.0
	maxCrusherTargetRate = 44100.0
)

// CrusherParams is the parameter snapshot applied to one block.
type CrusherParams struct {
	// Bits sets the quantization step to 2^-Bits.
	Bits int
	// TargetRate is the emulated sample rate in Hz.
	TargetRate float64
}

// Validate reports whether the parameters lie in their supported domains.
func (p CrusherParams) Validate() error {
	if p.Bits < minCrusherBits || p.Bits > maxCrusherBits {
		return fmt.Errorf("bit crusher bits must be in [%d, %d]: %d", minCrusherBits, maxCrusherBits, p.Bits)
	}

	if p.TargetRate < minCrusherTargetRate || p.TargetRate > maxCrusherTargetRate || math.IsNaN(p.TargetRate) {
		return fmt.Errorf("bit crusher target rate must be in [%g, %g]: %f",
			minCrusherTargetRate, maxCrusherTargetRate, p.TargetRate)
	}

	return nil
}

// Step returns the quantization step 2^-Bits.
func (p CrusherParams) Step() float64 {
	return math.Ldexp(1, -p.Bits)
}

// HoldFrames returns how many frames each captured value is held at
// nativeRate: round(nativeRate/TargetRate), at least 1.
func (p CrusherParams) HoldFrames(nativeRate float64) int {
	if p.TargetRate <= 0 {
		return 1
	}

	return max(1, int(math.Round(nativeRate/p.TargetRate)))
}

// Quantize snaps x to the nearest multiple of step, rounding halves up.
func Quantize(x, step float64) float64 {
	return step * math.Floor(x/step+0.5)
}

// BitCrusher reduces amplitude resolution and effective sample rate of a
// multi-channel signal one block at a time. Every channel captures a
// quantized sample, holds it for HoldFrames frames, then captures again.
//
// The kernel is deterministic for a given input and parameter sequence, so
// it produces identical output whether run inline or on a worker.
type BitCrusher struct {
	sampleRate float64
	counters   []int
	held       []float64
}

// NewBitCrusher creates a crusher for signals at sampleRate.
func NewBitCrusher(sampleRate float64) (*BitCrusher, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("bit crusher sample rate must be > 0 and finite: %f", sampleRate)
	}

	return &BitCrusher{sampleRate: sampleRate}, nil
}

// SampleRate returns the native sample rate in Hz.
func (bc *BitCrusher) SampleRate() float64 { return bc.sampleRate }

// ProcessBlock crushes every channel of block in place using params.
// All channels must have the same length.
func (bc *BitCrusher) ProcessBlock(block [][]float64, params CrusherParams) error {
	err := params.Validate()
	if err != nil {
		return err
	}

	bc.ensureChannels(len(block))

	step := params.Step()
	hold := params.HoldFrames(bc.sampleRate)

	for ch, buf := range block {
		counter := bc.counters[ch]
		if counter >= hold {
			counter = 0
		}

		held := bc.held[ch]
		for i, x := range buf {
			if counter == 0 {
				held = Quantize(x, step)
			}

			buf[i] = held

			counter++
			if counter >= hold {
				counter = 0
			}
		}

		bc.counters[ch] = counter
		bc.held[ch] = held
	}

	return nil
}

// Reset clears the sample-and-hold state.
func (bc *BitCrusher) Reset() {
	clear(bc.counters)
	clear(bc.held)
}

func (bc *BitCrusher) ensureChannels(n int) {
	for len(bc.counters) < n {
		bc.counters = append(bc.counters, 0)
		bc.held = append(bc.held, 0)
	}
}
