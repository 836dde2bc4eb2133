package graph

// GainNode multiplies its input by the Gain parameter.
type GainNode struct {
	node
	Gain *Param

	gbuf []float64
}

// NewGain creates a gain node with unity gain.
func (c *Context) NewGain() *GainNode {
	g := &GainNode{
		Gain: newParam(c, 1),
		gbuf: make([]float64, RenderQuantum),
	}
	g.init(c, g)
	return g
}

func (g *GainNode) process(in, out []float64, frame uint64) {
	g.Gain.fill(g.gbuf, frame)
	for i := range out {
		out[i] = in[i] * g.gbuf[i]
	}
}
