package audio

import (
	"math/rand/v2"

	"github.com/go-faster/errors"

	"famisynth/audio/graph"
)

// Clock gives the current time of the audio clock, in seconds.
type Clock interface {
	CurrentTime() float64
}

// A Channel is one synthesized voice. Parameter changes are scheduled at the
// current audio clock time, never applied to the render path directly.
//
// Start must be called exactly once, Destroy at most once, and a destroyed
// channel must not be used anymore.
type Channel interface {
	Start()
	SetVolume(volume float64, clock Clock)
	SetFrequency(hz float64)
	SetDutyRatio(ratio float64)
	Destroy()

	State() ChannelState
}

func newChannel(ctx *graph.Context, typ ChannelType, rnd *rand.Rand) (Channel, error) {
	switch typ {
	case Pulse:
		return newPulseChannel(ctx), nil
	case Triangle:
		return newTriangleChannel(ctx), nil
	case Noise:
		return newNoiseChannel(ctx, rnd), nil
	case Sawtooth:
		return newSawtoothChannel(ctx), nil
	}
	return nil, errors.Wrapf(ErrChannelType, "%d", uint8(typ))
}

// baseChannel owns the gain stage every channel ends with. Its frequency and
// duty setters do nothing.
type baseChannel struct {
	typ  ChannelType
	ctx  *graph.Context
	gain *graph.GainNode
}

func newBaseChannel(ctx *graph.Context, typ ChannelType) baseChannel {
	gain := ctx.NewGain()
	gain.Gain.SetValueAtTime(0, ctx.CurrentTime())
	return baseChannel{
		typ:  typ,
		ctx:  ctx,
		gain: gain,
	}
}

func (c *baseChannel) Start() {}

// SetVolume doesn't clamp volume, that's up to the caller.
func (c *baseChannel) SetVolume(volume float64, clock Clock) {
	c.gain.Gain.SetValueAtTime(volume, clock.CurrentTime())
}

func (c *baseChannel) SetFrequency(float64) {}
func (c *baseChannel) SetDutyRatio(float64) {}

func (c *baseChannel) Destroy() {
	c.gain.Disconnect()
}

func (c *baseChannel) State() ChannelState {
	return ChannelState{
		Type:      c.typ,
		Gain:      c.gain.Gain.Value(),
		Connected: c.gain.Connected(),
		Changes:   c.gain.Gain.Scheduled(),
	}
}

// oscChannel is a channel driven by a single oscillator.
type oscChannel struct {
	baseChannel
	osc  *graph.OscillatorNode
	freq float64 // 0 until set
}

func newOscChannel(ctx *graph.Context, typ ChannelType, shape graph.OscillatorType) oscChannel {
	return oscChannel{
		baseChannel: newBaseChannel(ctx, typ),
		osc:         ctx.NewOscillator(shape),
	}
}

func (c *oscChannel) Start() {
	c.osc.Start()
}

func (c *oscChannel) SetFrequency(hz float64) {
	c.freq = hz
	c.osc.Frequency.SetValueAtTime(hz, c.ctx.CurrentTime())
}

func (c *oscChannel) Destroy() {
	c.baseChannel.Destroy()
	c.osc.Disconnect()
}

func (c *oscChannel) State() ChannelState {
	st := c.baseChannel.State()
	st.Frequency = c.freq
	st.Changes += c.osc.Frequency.Scheduled()
	return st
}

// connect wires osc → gain → destination.
func (c *oscChannel) connect() {
	c.osc.Connect(c.gain)
	c.gain.Connect(c.ctx.Destination())
}
