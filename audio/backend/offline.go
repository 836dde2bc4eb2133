package backend

import (
	"math"
	"time"

	"famisynth/audio/graph"
)

// Offline is an output nobody listens to. Its clock only advances when asked
// to, which makes it deterministic.
type Offline struct {
	ctx     *graph.Context
	scratch []float32
}

func NewOffline(sampleRate int) *Offline {
	return &Offline{
		ctx:     graph.NewContext(float64(sampleRate)),
		scratch: make([]float32, graph.RenderQuantum*16),
	}
}

func (o *Offline) Context() *graph.Context { return o.ctx }

// Advance renders, and discards, d worth of audio.
func (o *Offline) Advance(d time.Duration) {
	n := int(math.Round(d.Seconds() * o.ctx.SampleRate()))
	for n > 0 {
		buf := o.scratch[:min(n, len(o.scratch))]
		o.ctx.Render(buf)
		n -= len(buf)
	}
}

func (o *Offline) Close() error {
	o.ctx.Close()
	return nil
}
