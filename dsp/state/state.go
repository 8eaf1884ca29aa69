package state

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

// AudioState is the complete parameter snapshot of a playback session.
type AudioState struct {
	IsPlaying   bool    `json:"isPlaying"`
	Progress    float64 `json:"progress"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`

	Speed        float64 `json:"speed"`
	Reverb       float64 `json:"reverb"`
	Volume       float64 `json:"volume"`
	Bass         float64 `json:"bass"`
	ReverbType   string  `json:"reverbType"`
	EtherealEcho bool    `json:"etherealEcho"`

	Modulation Modulation `json:"modulation"`
	Distortion Distortion `json:"distortion"`
	Spatial    Spatial    `json:"spatial"`
	Tone       Tone       `json:"tone"`
}

// Default returns the state of a freshly loaded track: unity speed and
// volume, no reverb or bass boost, every effect disabled.
func Default() AudioState {
	return AudioState{
		Speed:      1,
		Volume:     100,
		ReverbType: reverb.TypeDefault.String(),
		Modulation: DefaultModulation(),
		Distortion: DefaultDistortion(),
		Spatial:    DefaultSpatial(),
		Tone:       DefaultTone(),
	}
}

// WithSpeed returns a copy with the playback speed set.
func (s AudioState) WithSpeed(v float64) AudioState {
	s.Speed = v
	return s
}

// WithReverb returns a copy with the reverb amount set.
func (s AudioState) WithReverb(v float64) AudioState {
	s.Reverb = v
	return s
}

// WithVolume returns a copy with the volume set.
func (s AudioState) WithVolume(v float64) AudioState {
	s.Volume = v
	return s
}

// WithBass returns a copy with the bass boost set.
func (s AudioState) WithBass(v float64) AudioState {
	s.Bass = v
	return s
}

// WithReverbType returns a copy with the reverb impulse type set.
func (s AudioState) WithReverbType(t reverb.Type) AudioState {
	s.ReverbType = t.String()
	return s
}

// WithEtherealEcho returns a copy with ethereal echo toggled.
func (s AudioState) WithEtherealEcho(on bool) AudioState {
	s.EtherealEcho = on
	return s
}

// ReverbKind parses ReverbType, falling back to the default impulse.
func (s AudioState) ReverbKind() reverb.Type {
	t, err := reverb.ParseType(s.ReverbType)
	if err != nil {
		return reverb.TypeDefault
	}

	return t
}

// TremoloShape parses the tremolo shape, falling back to sine.
func (s AudioState) TremoloShape() modulation.Waveform {
	w, err := modulation.ParseWaveform(s.Modulation.Tremolo.Shape)
	if err != nil {
		return modulation.WaveformSine
	}

	return w
}

// EightDPattern parses the 8D pattern, falling back to circle.
func (s AudioState) EightDPattern() spatial.Pattern {
	p, err := spatial.ParsePattern(s.Spatial.EightD.Pattern)
	if err != nil {
		return spatial.PatternCircle
	}

	return p
}

// Normalize returns a copy with every numeric field clamped to its domain
// and unknown enumerations replaced by their defaults.
func (s AudioState) Normalize() AudioState {
	for _, f := range s.fields() {
		*f.ptr = f.rng.Clamp(*f.ptr)
	}

	s.Distortion.Bitcrusher.Bits = math.Round(s.Distortion.Bitcrusher.Bits)
	s.ReverbType = s.ReverbKind().String()
	s.Modulation.Tremolo.Shape = s.TremoloShape().String()
	s.Spatial.EightD.Pattern = s.EightDPattern().String()

	if s.CurrentTime < 0 || math.IsNaN(s.CurrentTime) {
		s.CurrentTime = 0
	}

	if s.Duration < 0 || math.IsNaN(s.Duration) {
		s.Duration = 0
	}

	return s
}

// Validate returns a *RangeError for the first numeric field outside its
// domain, or an error for an unknown enumeration value.
func (s AudioState) Validate() error {
	for _, f := range s.fields() {
		if !f.rng.Contains(*f.ptr) {
			return &RangeError{Field: f.name, Value: *f.ptr, Range: f.rng}
		}
	}

	if _, err := reverb.ParseType(s.ReverbType); err != nil {
		return fmt.Errorf("state: reverbType: %w", err)
	}

	if _, err := modulation.ParseWaveform(s.Modulation.Tremolo.Shape); err != nil {
		return fmt.Errorf("state: modulation.tremolo.shape: %w", err)
	}

	if _, err := spatial.ParsePattern(s.Spatial.EightD.Pattern); err != nil {
		return fmt.Errorf("state: spatial.eightD.pattern: %w", err)
	}

	return nil
}

// LoadJSON decodes a preset from r over the defaults, so missing fields
// keep their default values, and validates the result.
func LoadJSON(r io.Reader) (AudioState, error) {
	s := Default()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&s); err != nil {
		return AudioState{}, fmt.Errorf("state: decode preset: %w", err)
	}

	if err := s.Validate(); err != nil {
		return AudioState{}, err
	}

	return s, nil
}

type field struct {
	name string
	ptr  *float64
	rng  Range
}

// fields lists the numeric fields in declaration order.
func (s *AudioState) fields() []field {
	m, d, sp := &s.Modulation, &s.Distortion, &s.Spatial

	return []field{
		{"speed", &s.Speed, SpeedRange},
		{"reverb", &s.Reverb, ReverbRange},
		{"volume", &s.Volume, VolumeRange},
		{"bass", &s.Bass, BassRange},
		{"progress", &s.Progress, ProgressRange},
		{"modulation.flanger.rate", &m.Flanger.Rate, FlangerRateRange},
		{"modulation.flanger.depth", &m.Flanger.Depth, PercentRange},
		{"modulation.flanger.feedback", &m.Flanger.Feedback, PercentRange},
		{"modulation.flanger.delay", &m.Flanger.Delay, FlangerDelayMs},
		{"modulation.tremolo.rate", &m.Tremolo.Rate, TremoloRateRange},
		{"modulation.tremolo.depth", &m.Tremolo.Depth, PercentRange},
		{"distortion.overdrive.drive", &d.Overdrive.Drive, DriveRange},
		{"distortion.overdrive.tone", &d.Overdrive.Tone, PercentRange},
		{"distortion.overdrive.level", &d.Overdrive.Level, PercentRange},
		{"distortion.distortion.drive", &d.Distortion.Drive, DriveRange},
		{"distortion.distortion.tone", &d.Distortion.Tone, PercentRange},
		{"distortion.distortion.level", &d.Distortion.Level, PercentRange},
		{"distortion.bitcrusher.bits", &d.Bitcrusher.Bits, CrusherBits},
		{"distortion.bitcrusher.sampleRate", &d.Bitcrusher.SampleRate, CrusherRateRange},
		{"spatial.eightD.rotationSpeed", &sp.EightD.RotationSpeed, RotationSpeed},
		{"spatial.eightD.manualPosition", &sp.EightD.ManualPosition, ManualPosition},
		{"spatial.binaural.roomSize", &sp.Binaural.RoomSize, PercentRange},
		{"spatial.binaural.damping", &sp.Binaural.Damping, PercentRange},
		{"spatial.binaural.width", &sp.Binaural.Width, PercentRange},
		{"tone.muffle.intensity", &s.Tone.Muffle.Intensity, PercentRange},
	}
}
