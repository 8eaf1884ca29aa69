package audiograph

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Passthrough copies its input to its output.
type Passthrough struct{}

// Process implements Processor.
func (Passthrough) Process(_ *QuantumInfo, in, out Block) {
	out.CopyFrom(in)
}

// GainNode multiplies its input by an a-rate gain.
type GainNode struct {
	Gain *Param

	curve    []float64
	constant bool
}

// NewGain returns a gain node starting at value.
func NewGain(value float64) *GainNode {
	return &GainNode{
		Gain:  NewParam(value, -math.MaxFloat32, math.MaxFloat32),
		curve: make([]float64, Quantum),
	}
}

func (n *GainNode) prepare(q *QuantumInfo) {
	n.constant = n.Gain.Fill(n.curve, q.Time(), q.SampleRate)
	n.Gain.consume(q.Time() + q.Duration())
}

func (n *GainNode) silent() bool {
	return n.constant && n.curve[0] == 0
}

// Process implements Processor.
func (n *GainNode) Process(_ *QuantumInfo, in, out Block) {
	if n.silent() {
		return
	}

	for ch := range out {
		if n.constant {
			vecmath.ScaleBlock(out[ch], in[ch], n.curve[0])
			continue
		}

		vecmath.MulBlock(out[ch], in[ch], n.curve)
	}
}

// FuncNode wraps a per-quantum processing function.
type FuncNode struct {
	fn      func(q *QuantumInfo, in, out Block)
	scratch Block
}

// NewFunc returns a node calling fn for every quantum. fn receives the
// summed input and a zeroed output block.
func NewFunc(fn func(q *QuantumInfo, in, out Block)) *FuncNode {
	return &FuncNode{fn: fn}
}

// Process implements Processor.
func (n *FuncNode) Process(q *QuantumInfo, in, out Block) {
	n.fn(q, in, out)
}

// Idle implements Idler. The node keeps processing into a scratch block
// so its state advances exactly as if it were audible.
func (n *FuncNode) Idle(q *QuantumInfo, in Block) {
	if n.scratch[0] == nil {
		n.scratch = NewBlock()
	}

	n.scratch.Zero()
	n.fn(q, in, n.scratch)
}
