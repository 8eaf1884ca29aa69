package state

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

// ErrUnknownField is returned by Set for names that match no setting.
var ErrUnknownField = errors.New("state: unknown field")

// Set returns a copy with the setting at the JSON path name parsed from
// value. Numeric values must lie inside the field's domain; enumerations
// must name a known value.
func (s AudioState) Set(name, value string) (AudioState, error) {
	value = strings.TrimSpace(value)

	for _, f := range s.fields() {
		if f.name != name {
			continue
		}

		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return s, fmt.Errorf("state: %s: %w", name, err)
		}

		if !f.rng.Contains(v) {
			return s, &RangeError{Field: name, Value: v, Range: f.rng}
		}

		*f.ptr = v

		return s, nil
	}

	for _, f := range s.flags() {
		if f.name != name {
			continue
		}

		v, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("state: %s: %w", name, err)
		}

		*f.ptr = v

		return s, nil
	}

	for _, f := range s.enums() {
		if f.name != name {
			continue
		}

		if err := f.parse(value); err != nil {
			return s, fmt.Errorf("state: %s: %w", name, err)
		}

		*f.ptr = strings.ToLower(value)

		return s, nil
	}

	return s, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FieldNames returns every name Set accepts, sorted.
func FieldNames() []string {
	s := Default()

	var names []string
	for _, f := range s.fields() {
		names = append(names, f.name)
	}

	for _, f := range s.flags() {
		names = append(names, f.name)
	}

	for _, f := range s.enums() {
		names = append(names, f.name)
	}

	sort.Strings(names)

	return names
}

type flagField struct {
	name string
	ptr  *bool
}

func (s *AudioState) flags() []flagField {
	m, d, sp := &s.Modulation, &s.Distortion, &s.Spatial

	return []flagField{
		{"etherealEcho", &s.EtherealEcho},
		{"modulation.flanger.enabled", &m.Flanger.Enabled},
		{"modulation.tremolo.enabled", &m.Tremolo.Enabled},
		{"distortion.overdrive.enabled", &d.Overdrive.Enabled},
		{"distortion.distortion.enabled", &d.Distortion.Enabled},
		{"distortion.bitcrusher.enabled", &d.Bitcrusher.Enabled},
		{"spatial.eightD.enabled", &sp.EightD.Enabled},
		{"spatial.eightD.autoRotate", &sp.EightD.AutoRotate},
		{"spatial.binaural.enabled", &sp.Binaural.Enabled},
		{"tone.muffle.enabled", &s.Tone.Muffle.Enabled},
	}
}

type enumField struct {
	name  string
	ptr   *string
	parse func(string) error
}

func (s *AudioState) enums() []enumField {
	return []enumField{
		{"reverbType", &s.ReverbType, func(v string) error {
			_, err := reverb.ParseType(v)
			return err
		}},
		{"modulation.tremolo.shape", &s.Modulation.Tremolo.Shape, func(v string) error {
			_, err := modulation.ParseWaveform(v)
			return err
		}},
		{"spatial.eightD.pattern", &s.Spatial.EightD.Pattern, func(v string) error {
			_, err := spatial.ParsePattern(v)
			return err
		}},
	}
}
