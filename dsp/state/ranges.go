package state

import (
	"fmt"
	"math"
)

// Range is the closed domain of a numeric setting and its UI step.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Clamp limits v to the range. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}

	return math.Max(r.Min, math.Min(r.Max, v))
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Snap clamps v and rounds it to the nearest step from Min.
func (r Range) Snap(v float64) float64 {
	v = r.Clamp(v)
	if r.Step <= 0 {
		return v
	}

	steps := math.Round((v - r.Min) / r.Step)

	return r.Clamp(r.Min + steps*r.Step)
}

// RangeError reports a field outside its domain.
type RangeError struct {
	Field string
	Value float64
	Range Range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("state: %s = %g outside [%g, %g]", e.Field, e.Value, e.Range.Min, e.Range.Max)
}

// Domains of every numeric setting.
var (
	SpeedRange       = Range{Min: 0.5, Max: 2, Step: 0.05}
	ReverbRange      = Range{Min: 0, Max: 100, Step: 1}
	VolumeRange      = Range{Min: 0, Max: 200, Step: 1}
	BassRange        = Range{Min: 0, Max: 100, Step: 1}
	ProgressRange    = Range{Min: 0, Max: 100, Step: 0.1}
	PercentRange     = Range{Min: 0, Max: 100, Step: 1}
	DriveRange       = Range{Min: 0, Max: 100, Step: 1}
	FlangerRateRange = Range{Min: 0.1, Max: 10, Step: 0.1}
	TremoloRateRange = Range{Min: 0.1, Max: 20, Step: 0.1}
	FlangerDelayMs   = Range{Min: 0, Max: 20, Step: 0.1}
	CrusherBits      = Range{Min: 1, Max: 16, Step: 1}
	CrusherRateRange = Range{Min: 1000, Max: 44100, Step: 100}
	RotationSpeed    = Range{Min: 0.1, Max: 2, Step: 0.1}
	ManualPosition   = Range{Min: 0, Max: 360, Step: 1}
)

// RangeOf returns the domain of the numeric field at the JSON path name,
// such as "modulation.flanger.rate".
func RangeOf(name string) (Range, bool) {
	s := Default()
	for _, f := range s.fields() {
		if f.name == name {
			return f.rng, true
		}
	}

	return Range{}, false
}
