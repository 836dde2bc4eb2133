package graph

import "math"

const DefaultMaxDelay = 1.0

// DelayNode outputs its input delayed by DelayTime seconds. The delay is
// clamped to [0, MaxDelay]. Fractional delays are linearly interpolated.
type DelayNode struct {
	node
	DelayTime *Param

	maxDelay float64
	ring     []float64
	w        int
	dbuf     []float64
}

// NewDelay creates a delay node able to delay up to maxDelay seconds. A
// non-positive maxDelay selects DefaultMaxDelay.
func (c *Context) NewDelay(maxDelay float64) *DelayNode {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	size := int(math.Ceil(maxDelay*c.sampleRate)) + 2
	d := &DelayNode{
		DelayTime: newParam(c, 0),
		maxDelay:  maxDelay,
		ring:      make([]float64, size),
		dbuf:      make([]float64, RenderQuantum),
	}
	d.init(c, d)
	return d
}

func (d *DelayNode) MaxDelay() float64 { return d.maxDelay }

func (d *DelayNode) process(in, out []float64, frame uint64) {
	d.DelayTime.fill(d.dbuf, frame)

	size := len(d.ring)
	sr := d.ctx.sampleRate
	for i := range out {
		d.ring[d.w] = in[i]

		delay := min(max(d.dbuf[i], 0), d.maxDelay) * sr
		whole := math.Floor(delay)
		frac := delay - whole

		r0 := d.w - int(whole)
		for r0 < 0 {
			r0 += size
		}
		r1 := r0 - 1
		if r1 < 0 {
			r1 += size
		}
		out[i] = d.ring[r0]*(1-frac) + d.ring[r1]*frac

		d.w++
		if d.w == size {
			d.w = 0
		}
	}
}
