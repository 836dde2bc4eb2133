// Package graph implements a small audio node graph: oscillators, gain and
// delay stages connected to a destination, rendered quantum by quantum
// against an audio clock. Parameter changes are scheduled at a time on that
// clock rather than applied to the render path directly.
package graph

import (
	"sync"

	"famisynth/log"
)

// RenderQuantum is the number of frames rendered at once. Parameter changes
// and graph edits become audible at quantum boundaries.
const RenderQuantum = 128

// A Context owns a node graph and its audio clock.
//
// Control calls (scheduling, connecting, disconnecting) and rendering are
// serialized by a mutex held for the duration of one render quantum at most.
type Context struct {
	mu sync.Mutex

	sampleRate float64
	frame      uint64 // frames rendered so far, the audio clock.
	quantum    uint64 // id of the quantum being rendered, starts at 1.
	closed     bool

	dest *DestinationNode

	qbuf []float32 // last rendered quantum
	qoff int       // first unread frame in qbuf
}

func NewContext(sampleRate float64) *Context {
	if sampleRate <= 0 {
		panic("graph: non-positive sample rate")
	}
	c := &Context{
		sampleRate: sampleRate,
		qbuf:       make([]float32, RenderQuantum),
		qoff:       RenderQuantum,
	}
	c.dest = newDestination(c)
	return c
}

func (c *Context) SampleRate() float64 { return c.sampleRate }

// Destination returns the sink whose inputs get rendered.
func (c *Context) Destination() *DestinationNode { return c.dest }

// CurrentTime returns the audio clock, in seconds. It's the time at which the
// next rendered quantum starts.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / c.sampleRate
}

// Render fills out with the next len(out) frames of the destination output.
// Once the context is closed, it renders silence and the clock stops.
func (c *Context) Render(out []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		clear(out)
		return
	}

	for len(out) > 0 {
		if c.qoff == len(c.qbuf) {
			c.renderQuantum()
		}
		n := copy(out, c.qbuf[c.qoff:])
		c.qoff += n
		out = out[n:]
	}
}

func (c *Context) renderQuantum() {
	c.quantum++
	buf := c.dest.pull(c.quantum, c.frame)
	for i, v := range buf {
		c.qbuf[i] = float32(v)
	}
	c.qoff = 0
	c.frame += RenderQuantum
}

// Close stops rendering. Nodes can still be created and edited, but nothing
// will be heard from them.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	log.ModGraph.DebugZ("context closed").Float64("time", c.now()).End()
}
