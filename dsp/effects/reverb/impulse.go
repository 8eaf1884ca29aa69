package reverb

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// ErrEmptyImpulse is returned when an impulse has no frames or channels.
var ErrEmptyImpulse = errors.New("reverb: empty impulse response")

// Impulse is a planar multi-channel impulse response.
type Impulse struct {
	SampleRate float64
	Channels   [][]float64
}

// Len returns the number of frames.
func (ir *Impulse) Len() int {
	if ir == nil || len(ir.Channels) == 0 {
		return 0
	}

	return len(ir.Channels[0])
}

// Duration returns the impulse length in seconds.
func (ir *Impulse) Duration() float64 {
	if ir == nil || ir.SampleRate <= 0 {
		return 0
	}

	return float64(ir.Len()) / ir.SampleRate
}

// Type selects one of the fixed reverb characters.
type Type int

const (
	TypeDefault Type = iota
	TypeHall
	TypeRoom
	TypePlate
)

// Types lists every reverb type in graph branch order.
var Types = []Type{TypeDefault, TypeHall, TypeRoom, TypePlate}

type typeShape struct {
	name     string
	duration float64 // seconds
	decay    float64
}

var typeShapes = map[Type]typeShape{
	TypeDefault: {name: "default", duration: 1.0, decay: 4.0},
	TypeHall:    {name: "hall", duration: 3.0, decay: 4.0},
	TypeRoom:    {name: "room", duration: 1.0, decay: 2.0},
	TypePlate:   {name: "plate", duration: 2.0, decay: 3.0},
}

// String returns the type name.
func (t Type) String() string {
	if s, ok := typeShapes[t]; ok {
		return s.name
	}

	return fmt.Sprintf("reverb(%d)", int(t))
}

// Duration returns the impulse duration in seconds for t.
func (t Type) Duration() float64 { return typeShapes[t].duration }

// Decay returns the envelope exponent for t.
func (t Type) Decay() float64 { return typeShapes[t].decay }

// ParseType maps a name such as "hall" to a Type.
func ParseType(name string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}

	return TypeDefault, fmt.Errorf("reverb: unknown type %q", name)
}

// plateShimmer is the depth of the plate's sinusoidal modulation.
const plateShimmer = 0.3

// NewTypeImpulse synthesizes the stereo impulse for t at sampleRate.
// Each sample is uniform noise in [-1, 1) times the envelope
// (1 - i/length)^decay; the plate type is further multiplied by
// 1 + 0.3*sin(0.02*i).
func NewTypeImpulse(t Type, sampleRate float64, seed uint64) (*Impulse, error) {
	shape, ok := typeShapes[t]
	if !ok {
		return nil, fmt.Errorf("reverb: unknown type %d", int(t))
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb sample rate must be > 0 and finite: %f", sampleRate)
	}

	length := int(math.Round(sampleRate * shape.duration))
	if length <= 0 {
		return nil, ErrEmptyImpulse
	}

	ir := &Impulse{SampleRate: sampleRate, Channels: make([][]float64, 2)}
	for ch := range ir.Channels {
		rng := newRand(seed, uint64(t), uint64(ch))
		data := make([]float64, length)

		for i := range data {
			env := math.Pow(1-float64(i)/float64(length), shape.decay)
			v := (rng.Float64()*2 - 1) * env
			if t == TypePlate {
				v *= 1 + plateShimmer*math.Sin(0.02*float64(i))
			}

			data[i] = v
		}

		ir.Channels[ch] = data
	}

	return ir, nil
}

func newRand(seed uint64, stream ...uint64) *rand.Rand {
	s := seed
	for _, v := range stream {
		s = s*0x9E3779B97F4A7C15 + v + 1
	}

	return rand.New(rand.NewPCG(seed, s))
}
