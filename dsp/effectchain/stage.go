package effectchain

import (
	"github.com/cwbudde/algo-fx/dsp/audiograph"
	"github.com/cwbudde/algo-fx/dsp/effects"
	"github.com/cwbudde/algo-fx/dsp/effects/modulation"
	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
	"github.com/cwbudde/algo-fx/internal/worklet"
)

// Effect is one wet/dry stage of the chain. The set of implementations is
// closed: *FlangerStage, *TremoloStage, *DriveStage, *CrusherStage,
// *MuffleStage, *BinauralStage, *EightDStage and *BassStage.
type Effect interface {
	// Name identifies the stage in logs.
	Name() string
	// Enabled reports the last applied switch state.
	Enabled() bool
	// Degraded reports whether construction failed and the stage passes
	// audio through unchanged.
	Degraded() bool
	// Mix returns the wet and dry gains at context time t.
	Mix(t float64) (wet, dry float64)

	base() *pair
}

// pair is the wet/dry crossfade shared by every stage.
type pair struct {
	name     string
	in, out  audiograph.NodeID
	dry, wet *audiograph.GainNode
	enabled  bool
	degraded bool
}

// Name implements Effect.
func (p *pair) Name() string { return p.name }

// Enabled implements Effect.
func (p *pair) Enabled() bool { return p.enabled }

// Degraded implements Effect.
func (p *pair) Degraded() bool { return p.degraded }

// Mix implements Effect.
func (p *pair) Mix(t float64) (float64, float64) {
	return p.wet.Gain.ValueAt(t), p.dry.Gain.ValueAt(t)
}

func (p *pair) base() *pair { return p }

// setEnabled ramps the pair to fully wet or fully dry. A degraded stage
// stays dry.
func (p *pair) setEnabled(on bool, now, ramp float64) {
	on = on && !p.degraded
	p.enabled = on

	wet := 0.0
	if on {
		wet = 1
	}

	p.wet.Gain.RampTo(wet, now, ramp)
	p.dry.Gain.RampTo(1-wet, now, ramp)
}

// FlangerStage runs one flanger per channel with shared settings.
type FlangerStage struct {
	*pair

	units [audiograph.Channels]*modulation.Flanger
}

func (s *FlangerStage) process(_ *audiograph.QuantumInfo, in, out audiograph.Block) {
	for ch, f := range s.units {
		for i, x := range in[ch] {
			out[ch][i] = f.Process(x)
		}
	}
}

// Units returns the per-channel flangers.
func (s *FlangerStage) Units() []*modulation.Flanger { return s.units[:] }

// TremoloStage applies one LFO gain to both channels.
type TremoloStage struct {
	*pair

	trem *modulation.Tremolo
}

func (s *TremoloStage) process(_ *audiograph.QuantumInfo, in, out audiograph.Block) {
	for i := range in[0] {
		g := s.trem.Gain()
		out[0][i] = in[0][i] * g
		out[1][i] = in[1][i] * g
	}
}

// Tremolo returns the modulator.
func (s *TremoloStage) Tremolo() *modulation.Tremolo { return s.trem }

// DriveStage is a waveshaper followed by a tone lowpass and a level gain.
type DriveStage struct {
	*pair

	curves *effects.CurveCache
	shaper *audiograph.WaveShaperNode
	tone   *audiograph.OnePoleNode
	level  *audiograph.GainNode
}

// Curves returns the transfer curve cache.
func (s *DriveStage) Curves() *effects.CurveCache { return s.curves }

// CrusherStage reduces bit depth and sample rate, inline or on a worker.
type CrusherStage struct {
	*pair

	params  effects.CrusherParams
	inline  *effects.BitCrusher
	host    *worklet.Host
	failure func(error)
}

func (s *CrusherStage) process(_ *audiograph.QuantumInfo, in, out audiograph.Block) {
	out.CopyFrom(in)

	var err error
	if s.host != nil {
		err = s.host.Process(out.Slices(), s.params)
	} else {
		err = s.inline.ProcessBlock(out.Slices(), s.params)
	}

	if err != nil {
		// A rejected block is still the untouched copy of in.
		s.failure(err)
	}
}

// Params returns the parameters used for the next block.
func (s *CrusherStage) Params() effects.CrusherParams { return s.params }

// Worklet reports whether the kernel runs on a worker goroutine.
func (s *CrusherStage) Worklet() bool { return s.host != nil }

// MuffleStage is a resonant lowpass.
type MuffleStage struct {
	*pair

	filter *audiograph.BiquadNode
}

// Filter returns the lowpass node.
func (s *MuffleStage) Filter() *audiograph.BiquadNode { return s.filter }

// BinauralStage convolves with a synthesized binaural room and scales the
// result by the width gain.
type BinauralStage struct {
	*pair

	conv  *audiograph.ConvolverNode
	width *audiograph.GainNode
}

// Convolver returns the room convolver.
func (s *BinauralStage) Convolver() *audiograph.ConvolverNode { return s.conv }

// Width returns the width gain node.
func (s *BinauralStage) Width() *audiograph.GainNode { return s.width }

// EightDStage moves the source around the listener.
type EightDStage struct {
	*pair

	orbit  *spatial.Orbit
	panner *audiograph.PannerNode
}

// Orbit returns the position generator.
func (s *EightDStage) Orbit() *spatial.Orbit { return s.orbit }

// BassStage is the fixed 250 Hz low shelf. It has no switch and stays wet.
type BassStage struct {
	*pair

	shelf *audiograph.BiquadNode
}

// Shelf returns the low-shelf node.
func (s *BassStage) Shelf() *audiograph.BiquadNode { return s.shelf }

// ReverbNetwork mixes the dry signal and four typed convolution branches
// into the main gain.
type ReverbNetwork struct {
	Dry      *audiograph.GainNode
	Main     *audiograph.GainNode
	Branches [4]*ReverbBranch

	mainID audiograph.NodeID
}

// ReverbBranch is one convolution branch of the reverb network.
type ReverbBranch struct {
	Conv *audiograph.ConvolverNode
	Gain *audiograph.GainNode
}
