package audiograph

import "github.com/cwbudde/algo-fx/dsp/interp"

// WaveShaperNode maps every sample through a transfer curve spanning
// [-1, 1]. Inputs outside that range hold the end values. Without a curve
// the node passes audio through.
type WaveShaperNode struct {
	curve []float64
}

// NewWaveShaper returns a shaper without a curve.
func NewWaveShaper() *WaveShaperNode {
	return &WaveShaperNode{}
}

// SetCurve replaces the transfer curve. The slice is retained and must
// not be modified afterwards.
func (n *WaveShaperNode) SetCurve(curve []float64) {
	n.curve = curve
}

// Curve returns the current transfer curve.
func (n *WaveShaperNode) Curve() []float64 { return n.curve }

// Process implements Processor.
func (n *WaveShaperNode) Process(_ *QuantumInfo, in, out Block) {
	if len(n.curve) == 0 {
		out.CopyFrom(in)
		return
	}

	span := float64(len(n.curve) - 1)
	for ch := range out {
		for i, x := range in[ch] {
			out[ch][i] = interp.Table(n.curve, (x+1)*0.5*span)
		}
	}
}
