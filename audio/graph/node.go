package graph

import "slices"

// A Node is a vertex of the audio graph. Its inputs are summed before being
// processed.
type Node interface {
	Connect(dst Node)
	Disconnect()

	base() *node
}

type processor interface {
	process(in, out []float64, frame uint64)
}

type node struct {
	ctx  *Context
	proc processor

	inputs  []*node
	outputs []*node

	insum   []float64
	out     []float64
	quantum uint64 // id of the quantum held in out
}

func (n *node) init(ctx *Context, proc processor) {
	n.ctx = ctx
	n.proc = proc
	n.insum = make([]float64, RenderQuantum)
	n.out = make([]float64, RenderQuantum)
}

func (n *node) base() *node { return n }

// Connect routes the output of n into dst. Connecting twice to the same
// destination has no effect.
func (n *node) Connect(dst Node) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	d := dst.base()
	if d.ctx != n.ctx {
		panic("graph: connecting nodes from different contexts")
	}
	if slices.Contains(n.outputs, d) {
		return
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
}

// Disconnect removes all outgoing connections of n.
func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, d := range n.outputs {
		d.inputs = slices.DeleteFunc(d.inputs, func(in *node) bool { return in == n })
	}
	n.outputs = nil
}

// Connected reports whether n has at least one outgoing connection.
func (n *node) Connected() bool {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.outputs) > 0
}

// pull returns the output of n for the given quantum, rendering it once. In
// a cycle, the node sees the output of its previous quantum.
func (n *node) pull(quantum, frame uint64) []float64 {
	if n.quantum == quantum {
		return n.out
	}
	n.quantum = quantum

	clear(n.insum)
	for _, in := range n.inputs {
		for i, v := range in.pull(quantum, frame) {
			n.insum[i] += v
		}
	}
	n.proc.process(n.insum, n.out, frame)
	return n.out
}

// DestinationNode is the final sink of a context.
type DestinationNode struct {
	node
}

func newDestination(ctx *Context) *DestinationNode {
	d := &DestinationNode{}
	d.init(ctx, d)
	return d
}

func (d *DestinationNode) process(in, out []float64, _ uint64) {
	copy(out, in)
}

// NumInputs returns the number of nodes connected to the destination.
func (d *DestinationNode) NumInputs() int {
	d.ctx.mu.Lock()
	defer d.ctx.mu.Unlock()
	return len(d.inputs)
}
