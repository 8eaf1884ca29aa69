package state

// FlangerSettings configures the flanger stage. Depth and Feedback are
// percentages, Delay is in milliseconds.
type FlangerSettings struct {
	Enabled  bool    `json:"enabled"`
	Rate     float64 `json:"rate"`
	Depth    float64 `json:"depth"`
	Feedback float64 `json:"feedback"`
	Delay    float64 `json:"delay"`
}

// TremoloSettings configures the tremolo stage.
type TremoloSettings struct {
	Enabled bool    `json:"enabled"`
	Rate    float64 `json:"rate"`
	Depth   float64 `json:"depth"`
	Shape   string  `json:"shape"`
}

// Modulation groups the time-varying effects.
type Modulation struct {
	Flanger FlangerSettings `json:"flanger"`
	Tremolo TremoloSettings `json:"tremolo"`
}

// DriveSettings configures an overdrive or distortion stage.
type DriveSettings struct {
	Enabled bool    `json:"enabled"`
	Drive   float64 `json:"drive"`
	Tone    float64 `json:"tone"`
	Level   float64 `json:"level"`
}

// BitcrusherSettings configures the bit and sample-rate reducer.
type BitcrusherSettings struct {
	Enabled    bool    `json:"enabled"`
	Bits       float64 `json:"bits"`
	SampleRate float64 `json:"sampleRate"`
}

// Distortion groups the non-linear effects.
type Distortion struct {
	Overdrive  DriveSettings      `json:"overdrive"`
	Distortion DriveSettings      `json:"distortion"`
	Bitcrusher BitcrusherSettings `json:"bitcrusher"`
}

// EightDSettings configures the rotating spatial placement. Speed is a
// multiple of one turn per second, ManualPosition is in degrees.
type EightDSettings struct {
	Enabled        bool    `json:"enabled"`
	AutoRotate     bool    `json:"autoRotate"`
	RotationSpeed  float64 `json:"rotationSpeed"`
	ManualPosition float64 `json:"manualPosition"`
	Pattern        string  `json:"pattern"`
}

// BinauralSettings configures the binaural room. All fields are
// percentages.
type BinauralSettings struct {
	Enabled  bool    `json:"enabled"`
	RoomSize float64 `json:"roomSize"`
	Damping  float64 `json:"damping"`
	Width    float64 `json:"width"`
}

// Spatial groups the placement effects.
type Spatial struct {
	EightD   EightDSettings   `json:"eightD"`
	Binaural BinauralSettings `json:"binaural"`
}

// MuffleSettings configures the muffle lowpass.
type MuffleSettings struct {
	Enabled   bool    `json:"enabled"`
	Intensity float64 `json:"intensity"`
}

// Tone groups the tonal filters.
type Tone struct {
	Muffle MuffleSettings `json:"muffle"`
}

// DefaultModulation returns disabled flanger and tremolo settings.
func DefaultModulation() Modulation {
	return Modulation{
		Flanger: FlangerSettings{Rate: 0.5, Depth: 50, Feedback: 50, Delay: 5},
		Tremolo: TremoloSettings{Rate: 5, Depth: 50, Shape: "sine"},
	}
}

// DefaultDistortion returns disabled drive and crusher settings.
func DefaultDistortion() Distortion {
	return Distortion{
		Overdrive:  DriveSettings{Drive: 30, Tone: 50, Level: 70},
		Distortion: DriveSettings{Drive: 50, Tone: 50, Level: 50},
		Bitcrusher: BitcrusherSettings{Bits: 8, SampleRate: 22050},
	}
}

// DefaultSpatial returns disabled spatial settings.
func DefaultSpatial() Spatial {
	return Spatial{
		EightD:   EightDSettings{AutoRotate: true, RotationSpeed: 0.5, Pattern: "circle"},
		Binaural: BinauralSettings{RoomSize: 50, Damping: 50, Width: 100},
	}
}

// DefaultTone returns a disabled muffle.
func DefaultTone() Tone {
	return Tone{Muffle: MuffleSettings{Intensity: 50}}
}
