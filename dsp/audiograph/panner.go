package audiograph

import (
	"math"

	"github.com/cwbudde/algo-fx/dsp/effects/spatial"
)

// Mover supplies the source position once per quantum. dt is the quantum
// length in seconds.
type Mover interface {
	Advance(dt float64) spatial.Vec3
}

// PannerNode places a stereo source in 3D around a listener at the origin
// using equal-power panning and the inverse distance model. The position
// is read from PositionX/Y/Z, or from Mover when one is attached. Gains
// are interpolated across each quantum.
type PannerNode struct {
	PositionX *Param
	PositionY *Param
	PositionZ *Param

	mover   Mover
	prev    [4]float64
	next    [4]float64
	started bool
}

// NewPanner returns a panner at the origin.
func NewPanner() *PannerNode {
	limit := math.MaxFloat32
	return &PannerNode{
		PositionX: NewParam(0, -limit, limit),
		PositionY: NewParam(0, -limit, limit),
		PositionZ: NewParam(0, -limit, limit),
	}
}

// SetMover attaches m; nil returns control to the position params.
func (n *PannerNode) SetMover(m Mover) { n.mover = m }

// Position returns the position at context time t.
func (n *PannerNode) Position(t float64) spatial.Vec3 {
	return spatial.Vec3{X: n.PositionX.ValueAt(t), Y: n.PositionY.ValueAt(t), Z: n.PositionZ.ValueAt(t)}
}

func (n *PannerNode) prepare(q *QuantumInfo) {
	t := q.Time()

	if n.mover != nil {
		pos := n.mover.Advance(q.Duration())
		n.PositionX.SetValue(pos.X)
		n.PositionY.SetValue(pos.Y)
		n.PositionZ.SetValue(pos.Z)
	}

	target := spatial.EqualPowerGains(n.Position(t)).Matrix()

	end := t + q.Duration()
	n.PositionX.consume(end)
	n.PositionY.consume(end)
	n.PositionZ.consume(end)

	if !n.started {
		n.prev = target
		n.started = true
	} else {
		n.prev = n.next
	}

	n.next = target
}

// Process implements Processor.
func (n *PannerNode) Process(_ *QuantumInfo, in, out Block) {
	l, r := in[0], in[1]
	for i := range l {
		frac := float64(i+1) / Quantum

		var m [4]float64
		for k := range m {
			m[k] = n.prev[k] + (n.next[k]-n.prev[k])*frac
		}

		out[0][i] = m[0]*l[i] + m[1]*r[i]
		out[1][i] = m[2]*l[i] + m[3]*r[i]
	}
}
