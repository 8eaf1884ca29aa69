package reverb

import (
	"fmt"
	"math"
	"sync"
)

const (
	binauralBaseSeconds  = 0.5
	binauralRoomSeconds  = 3.5
	binauralBaseDecay    = 1.5
	binauralDampingDecay = 4.5

	binauralBaseReflections = 3
	binauralRoomReflections = 12
	reflectionAttenuation   = 0.7

	// Reflection spacing grows from 5 ms in a tiny room to 30 ms in a large one.
	reflectionBaseSpacing = 0.005
	reflectionRoomSpacing = 0.025

	lateOnsetSeconds       = 0.05
	interauralDelaySeconds = 0.0006
	smoothCurrent          = 0.9
	smoothPrevious         = 0.1
)

// BinauralParams are the generating parameters of a binaural impulse.
// Both values are percentages in [0, 100].
type BinauralParams struct {
	RoomSize float64
	Damping  float64
}

// Validate checks that both parameters are finite percentages.
func (p BinauralParams) Validate() error {
	if p.RoomSize < 0 || p.RoomSize > 100 || math.IsNaN(p.RoomSize) {
		return fmt.Errorf("binaural room size must be in [0, 100]: %f", p.RoomSize)
	}

	if p.Damping < 0 || p.Damping > 100 || math.IsNaN(p.Damping) {
		return fmt.Errorf("binaural damping must be in [0, 100]: %f", p.Damping)
	}

	return nil
}

// Duration returns the impulse length in seconds: 0.5 + room*3.5.
func (p BinauralParams) Duration() float64 {
	return binauralBaseSeconds + p.RoomSize/100*binauralRoomSeconds
}

// Decay returns the tail envelope exponent: 1.5 + damping*4.5.
func (p BinauralParams) Decay() float64 {
	return binauralBaseDecay + p.Damping/100*binauralDampingDecay
}

// Reflections returns the early reflection count: 3 + room*12.
func (p BinauralParams) Reflections() int {
	return binauralBaseReflections + int(p.RoomSize/100*binauralRoomReflections)
}

// NewBinauralImpulse synthesizes a stereo impulse in two phases. Early
// reflections land at multiples of a room-dependent spacing with gain
// 0.7^j * (1 - damping/200). After 50 ms a diffuse noise tail shaped by
// (1 - i/length)^decay follows. The second channel is the first delayed by
// 0.6 ms and blended 0.9*current + 0.1*previous.
func NewBinauralImpulse(p BinauralParams, sampleRate float64, seed uint64) (*Impulse, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("binaural sample rate must be > 0 and finite: %f", sampleRate)
	}

	length := int(math.Round(sampleRate * p.Duration()))
	if length <= 0 {
		return nil, ErrEmptyImpulse
	}

	rng := newRand(seed, math.Float64bits(p.RoomSize), math.Float64bits(p.Damping))
	first := make([]float64, length)

	spacing := (reflectionBaseSpacing + p.RoomSize/100*reflectionRoomSpacing) * sampleRate
	damp := 1 - p.Damping/200

	for j := range p.Reflections() {
		pos := int(math.Round(float64(j+1) * spacing))
		if pos >= length {
			break
		}

		sign := 1.0
		if rng.IntN(2) == 0 {
			sign = -1
		}

		first[pos] += sign * math.Pow(reflectionAttenuation, float64(j)) * damp
	}

	decay := p.Decay()
	for i := int(lateOnsetSeconds * sampleRate); i < length; i++ {
		env := math.Pow(1-float64(i)/float64(length), decay)
		first[i] += (rng.Float64()*2 - 1) * env
	}

	d := int(math.Round(interauralDelaySeconds * sampleRate))
	second := make([]float64, length)

	for i := d; i < length; i++ {
		prev := 0.0
		if i-d-1 >= 0 {
			prev = first[i-d-1]
		}

		second[i] = smoothCurrent*first[i-d] + smoothPrevious*prev
	}

	return &Impulse{SampleRate: sampleRate, Channels: [][]float64{first, second}}, nil
}

// BinauralCache returns the binaural impulse for the last seen parameters
// and synthesizes a new one only when room size or damping change.
type BinauralCache struct {
	sampleRate float64
	seed       uint64

	mu      sync.Mutex
	last    BinauralParams
	current *Impulse
	builds  int
}

// NewBinauralCache creates an empty cache for sampleRate.
func NewBinauralCache(sampleRate float64, seed uint64) *BinauralCache {
	return &BinauralCache{sampleRate: sampleRate, seed: seed}
}

// Impulse returns the impulse for p and whether it was regenerated.
func (c *BinauralCache) Impulse(p BinauralParams) (*Impulse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && p == c.last {
		return c.current, false, nil
	}

	ir, err := NewBinauralImpulse(p, c.sampleRate, c.seed)
	if err != nil {
		return nil, false, err
	}

	c.current = ir
	c.last = p
	c.builds++

	return ir, true, nil
}

// Builds returns how many impulses the cache has synthesized.
func (c *BinauralCache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.builds
}
