package audiograph

import (
	"github.com/cwbudde/algo-fx/dsp/effects/reverb"
)

// ConvolverNode convolves its input with a stereo impulse response. With
// Normalize set the impulse is scaled to a common loudness when assigned.
// Without an impulse the node outputs silence.
type ConvolverNode struct {
	Normalize bool

	impulse *reverb.Impulse
	conv    *reverb.Convolver
}

// NewConvolver returns a normalizing convolver without an impulse.
func NewConvolver() *ConvolverNode {
	return &ConvolverNode{Normalize: true}
}

// SetImpulse replaces the impulse response and clears the convolution
// history. A nil impulse silences the node.
func (n *ConvolverNode) SetImpulse(ir *reverb.Impulse) error {
	if ir == nil {
		n.impulse, n.conv = nil, nil
		return nil
	}

	conv, err := reverb.NewConvolver(ir, Quantum, n.Normalize)
	if err != nil {
		return err
	}

	n.impulse, n.conv = ir, conv

	return nil
}

// Impulse returns the current impulse response.
func (n *ConvolverNode) Impulse() *reverb.Impulse { return n.impulse }

// Process implements Processor.
func (n *ConvolverNode) Process(_ *QuantumInfo, in, out Block) {
	if n.conv == nil {
		return
	}

	// Both slices hold exactly one quantum per channel.
	_ = n.conv.ProcessBlock(out.Slices(), in.Slices())
}

// Idle implements Idler.
func (n *ConvolverNode) Idle(_ *QuantumInfo, in Block) {
	if n.conv == nil {
		return
	}

	_ = n.conv.Idle(in.Slices())
}
