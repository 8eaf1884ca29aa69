package audiograph

import (
	"fmt"

	"github.com/cwbudde/algo-fx/dsp/filter/biquad"
	"github.com/cwbudde/algo-fx/dsp/filter/design"
)

// FilterType selects the response of a BiquadNode.
type FilterType int

const (
	// FilterLowpass is a resonant lowpass; Q is a resonance in dB.
	FilterLowpass FilterType = iota
	// FilterLowShelf boosts or cuts below Frequency by Gain dB.
	FilterLowShelf
)

func (t FilterType) String() string {
	switch t {
	case FilterLowpass:
		return "lowpass"
	case FilterLowShelf:
		return "lowshelf"
	default:
		return fmt.Sprintf("filter(%d)", int(t))
	}
}

// BiquadNode is a stereo second-order filter. Coefficients follow the
// params once per quantum.
type BiquadNode struct {
	Frequency *Param
	Q         *Param
	Gain      *Param

	kind     FilterType
	sections [Channels]*biquad.Section
	last     [3]float64
}

// NewBiquad returns a filter of kind with Web Audio defaults: 350 Hz,
// Q 1, gain 0 dB.
func NewBiquad(kind FilterType, sampleRate float64) *BiquadNode {
	nyquist := sampleRate / 2
	n := &BiquadNode{
		Frequency: NewParam(350, 0, nyquist),
		Q:         NewParam(1, -770, 770),
		Gain:      NewParam(0, -40, 40),
		kind:      kind,
	}

	for ch := range n.sections {
		n.sections[ch] = biquad.NewSection(biquad.Passthrough())
	}

	n.last = [3]float64{-1, -1, -1}

	return n
}

// Type returns the filter response.
func (n *BiquadNode) Type() FilterType { return n.kind }

func (n *BiquadNode) prepare(q *QuantumInfo) {
	t := q.Time()
	cur := [3]float64{n.Frequency.ValueAt(t), n.Q.ValueAt(t), n.Gain.ValueAt(t)}

	end := t + q.Duration()
	n.Frequency.consume(end)
	n.Q.consume(end)
	n.Gain.consume(end)

	if cur == n.last {
		return
	}

	n.last = cur

	var c biquad.Coefficients

	switch n.kind {
	case FilterLowShelf:
		c = design.LowShelf(cur[0], cur[2], 0, q.SampleRate)
	default:
		c = design.LowpassResonanceDB(cur[0], cur[1], q.SampleRate)
	}

	for _, s := range n.sections {
		s.SetCoefficients(c)
	}
}

// Process implements Processor.
func (n *BiquadNode) Process(_ *QuantumInfo, in, out Block) {
	for ch, s := range n.sections {
		s.ProcessBlockTo(out[ch], in[ch])
	}
}

// OnePoleNode is a stereo one-pole lowpass with a cutoff param.
type OnePoleNode struct {
	Cutoff *Param

	sections [Channels]*biquad.Section
	last     float64
}

// NewOnePole returns a one-pole lowpass at cutoff Hz.
func NewOnePole(cutoff, sampleRate float64) *OnePoleNode {
	n := &OnePoleNode{Cutoff: NewParam(cutoff, 0, sampleRate/2), last: -1}
	for ch := range n.sections {
		n.sections[ch] = biquad.NewSection(biquad.Passthrough())
	}

	return n
}

func (n *OnePoleNode) prepare(q *QuantumInfo) {
	cutoff := n.Cutoff.ValueAt(q.Time())
	n.Cutoff.consume(q.Time() + q.Duration())

	if cutoff == n.last {
		return
	}

	n.last = cutoff

	c := design.OnePoleLowpass(cutoff, q.SampleRate)
	for _, s := range n.sections {
		s.SetCoefficients(c)
	}
}

// Process implements Processor.
func (n *OnePoleNode) Process(_ *QuantumInfo, in, out Block) {
	for ch, s := range n.sections {
		s.ProcessBlockTo(out[ch], in[ch])
	}
}
