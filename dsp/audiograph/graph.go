package audiograph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrCycle is returned when a connection would make the graph cyclic.
	ErrCycle = errors.New("audiograph: connection would create a cycle")
	// ErrUnknownNode is returned for node IDs that are not in the graph.
	ErrUnknownNode = errors.New("audiograph: unknown node")
)

// NodeID addresses a node inside one Graph.
type NodeID int

// Processor renders one quantum. in holds the sum of all parent outputs,
// out is zeroed before the call.
type Processor interface {
	Process(q *QuantumInfo, in, out Block)
}

// Idler is implemented by stateful processors that can advance their
// history without producing output. The graph calls Idle instead of
// Process when every consumer of the node is a silent gain.
type Idler interface {
	Idle(q *QuantumInfo, in Block)
}

// preparer is implemented by nodes that evaluate their params before the
// graph decides which nodes idle.
type preparer interface {
	prepare(q *QuantumInfo)
}

// silencer reports whether a node outputs silence for the current quantum
// regardless of its input.
type silencer interface {
	silent() bool
}

// QuantumInfo describes the quantum being rendered.
type QuantumInfo struct {
	Frame      int64
	SampleRate float64
}

// Time returns the context time of the first frame.
func (q *QuantumInfo) Time() float64 {
	return float64(q.Frame) / q.SampleRate
}

// Duration returns the length of the quantum in seconds.
func (q *QuantumInfo) Duration() float64 {
	return Quantum / q.SampleRate
}

type graphNode struct {
	proc    Processor
	parents []NodeID
	kids    []NodeID
	out     Block
	idle    bool
}

// Graph is an arena of processors connected as a DAG. A graph is owned
// by exactly one context; nodes are never shared between graphs.
type Graph struct {
	sampleRate  float64
	frame       int64
	nodes       []*graphNode
	order       []NodeID
	destination NodeID
	in          Block
}

func newGraph(sampleRate float64) *Graph {
	g := &Graph{sampleRate: sampleRate, in: NewBlock()}
	g.destination = g.Add(Passthrough{})

	return g
}

// SampleRate returns the graph sample rate.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// CurrentTime returns the context time of the next quantum to render.
// Automation scheduled at this time takes effect on the next quantum.
func (g *Graph) CurrentTime() float64 { return float64(g.frame) / g.sampleRate }

// CurrentFrame returns the index of the next frame to render.
func (g *Graph) CurrentFrame() int64 { return g.frame }

// Destination returns the node whose output the context renders.
func (g *Graph) Destination() NodeID { return g.destination }

// Add inserts an unconnected processor and returns its ID.
func (g *Graph) Add(p Processor) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &graphNode{proc: p, out: NewBlock()})
	g.order = append(g.order, id)

	return id
}

// Node returns the processor registered under id.
func (g *Graph) Node(id NodeID) (Processor, bool) {
	n := g.node(id)
	if n == nil {
		return nil, false
	}

	return n.proc, true
}

// Len returns the number of live nodes, including the destination.
func (g *Graph) Len() int {
	n := 0
	for _, node := range g.nodes {
		if node != nil {
			n++
		}
	}

	return n
}

// Connect routes the output of from into the input of to. Duplicate
// connections are ignored.
func (g *Graph) Connect(from, to NodeID) error {
	src, dst := g.node(from), g.node(to)
	if src == nil || dst == nil {
		return fmt.Errorf("%w: %d -> %d", ErrUnknownNode, from, to)
	}

	if from == to {
		return ErrCycle
	}

	if slices.Contains(src.kids, to) {
		return nil
	}

	src.kids = append(src.kids, to)
	dst.parents = append(dst.parents, from)

	order, err := g.sort()
	if err != nil {
		src.kids = src.kids[:len(src.kids)-1]
		dst.parents = dst.parents[:len(dst.parents)-1]

		return err
	}

	g.order = order

	return nil
}

// Chain connects each node to the next.
func (g *Graph) Chain(ids ...NodeID) error {
	for i := 1; i < len(ids); i++ {
		if err := g.Connect(ids[i-1], ids[i]); err != nil {
			return err
		}
	}

	return nil
}

// Disconnect removes the edge from -> to if present.
func (g *Graph) Disconnect(from, to NodeID) {
	src, dst := g.node(from), g.node(to)
	if src == nil || dst == nil {
		return
	}

	src.kids = slices.DeleteFunc(src.kids, func(id NodeID) bool { return id == to })
	dst.parents = slices.DeleteFunc(dst.parents, func(id NodeID) bool { return id == from })
}

// DisconnectAll removes every outgoing edge of id.
func (g *Graph) DisconnectAll(id NodeID) {
	n := g.node(id)
	if n == nil {
		return
	}

	for _, kid := range slices.Clone(n.kids) {
		g.Disconnect(id, kid)
	}
}

// Remove disconnects id on both sides and frees its slot. The destination
// cannot be removed.
func (g *Graph) Remove(id NodeID) {
	n := g.node(id)
	if n == nil || id == g.destination {
		return
	}

	g.DisconnectAll(id)

	for _, parent := range slices.Clone(n.parents) {
		g.Disconnect(parent, id)
	}

	g.nodes[id] = nil
	g.order = slices.DeleteFunc(g.order, func(o NodeID) bool { return o == id })
}

// Parents returns the nodes feeding id.
func (g *Graph) Parents(id NodeID) []NodeID {
	if n := g.node(id); n != nil {
		return slices.Clone(n.parents)
	}

	return nil
}

// Children returns the nodes fed by id.
func (g *Graph) Children(id NodeID) []NodeID {
	if n := g.node(id); n != nil {
		return slices.Clone(n.kids)
	}

	return nil
}

// Idle reports whether id was idled in the last rendered quantum.
func (g *Graph) Idle(id NodeID) bool {
	if n := g.node(id); n != nil {
		return n.idle
	}

	return false
}

// render processes the next quantum and returns the destination output.
// The returned block is owned by the graph.
func (g *Graph) render() Block {
	q := &QuantumInfo{Frame: g.frame, SampleRate: g.sampleRate}
	g.frame += Quantum

	for _, id := range g.order {
		if p, ok := g.nodes[id].proc.(preparer); ok {
			p.prepare(q)
		}
	}

	for _, id := range g.order {
		n := g.nodes[id]
		n.idle = g.canIdle(n)

		in := g.in
		in.Zero()

		for _, parent := range n.parents {
			src := g.nodes[parent].out
			for ch := range in {
				vecmath.AddBlockInPlace(in[ch], src[ch])
			}
		}

		n.out.Zero()

		if idler, ok := n.proc.(Idler); ok && n.idle {
			idler.Idle(q, in)
			continue
		}

		n.proc.Process(q, in, n.out)
	}

	return g.nodes[g.destination].out
}

// canIdle reports whether every consumer of n is silent this quantum.
func (g *Graph) canIdle(n *graphNode) bool {
	if len(n.kids) == 0 {
		return false
	}

	for _, kid := range n.kids {
		s, ok := g.nodes[kid].proc.(silencer)
		if !ok || !s.silent() {
			return false
		}
	}

	return true
}

// sort orders live nodes topologically with Kahn's algorithm.
func (g *Graph) sort() ([]NodeID, error) {
	indegree := make([]int, len(g.nodes))
	queue := make([]NodeID, 0, len(g.nodes))
	live := 0

	for id, n := range g.nodes {
		if n == nil {
			continue
		}

		live++
		indegree[id] = len(n.parents)

		if indegree[id] == 0 {
			queue = append(queue, NodeID(id))
		}
	}

	order := make([]NodeID, 0, live)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, id)
		for _, kid := range g.nodes[id].kids {
			indegree[kid]--
			if indegree[kid] == 0 {
				queue = append(queue, kid)
			}
		}
	}

	if len(order) != live {
		return nil, ErrCycle
	}

	return order, nil
}

func (g *Graph) node(id NodeID) *graphNode {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}

	return g.nodes[id]
}
