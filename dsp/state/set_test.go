package state

import (
	"errors"
	"slices"
	"testing"

	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

func TestSetParsesEveryKind(t *testing.T) {
	s := Default()

	var err error
	for _, kv := range [][2]string{
		{"reverb", "35"},
		{"modulation.flanger.delay", "7.5"},
		{"spatial.eightD.enabled", "true"},
		{"etherealEcho", "1"},
		{"spatial.eightD.pattern", "Figure8"},
		{"reverbType", "hall"},
	} {
		if s, err = s.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%q, %q) error = %v", kv[0], kv[1], err)
		}
	}

	if s.Reverb != 35 || s.Modulation.Flanger.Delay != 7.5 {
		t.Fatalf("numeric fields not set: %+v", s)
	}
	if !s.Spatial.EightD.Enabled || !s.EtherealEcho {
		t.Fatal("flags not set")
	}
	if s.EightDPattern() != spatial.PatternFigure8 || s.ReverbType != "hall" {
		t.Fatalf("enums not set: %q %q", s.Spatial.EightD.Pattern, s.ReverbType)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	base := Default()

	_, err := base.Set("volume", "250")
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) || rangeErr.Field != "volume" {
		t.Fatalf("err = %v, want *RangeError for volume", err)
	}

	if _, err := base.Set("speed", "NaN"); !errors.As(err, &rangeErr) {
		t.Fatalf("NaN speed: err = %v", err)
	}
	if _, err := base.Set("bass", "loud"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := base.Set("tone.muffle.enabled", "maybe"); err == nil {
		t.Fatal("expected bool parse error")
	}
	if _, err := base.Set("modulation.tremolo.shape", "pulse"); err == nil {
		t.Fatal("expected enum error")
	}
	if _, err := base.Set("chorus.depth", "10"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}

	if base.Volume != 100 {
		t.Fatal("Set mutated the receiver")
	}
}

func TestFieldNames(t *testing.T) {
	names := FieldNames()

	if !slices.IsSorted(names) {
		t.Fatal("FieldNames not sorted")
	}

	for _, want := range []string{"speed", "reverbType", "tone.muffle.enabled", "spatial.binaural.width"} {
		if !slices.Contains(names, want) {
			t.Fatalf("FieldNames missing %q", want)
		}
	}

	s := Default()
	for _, name := range names {
		if _, ok := RangeOf(name); ok {
			continue
		}

		if _, err := s.Set(name, "true"); err == nil {
			continue
		}

		if _, err := s.Set(name, "default"); err != nil && errors.Is(err, ErrUnknownField) {
			t.Fatalf("listed field %q rejected as unknown", name)
		}
	}
}
