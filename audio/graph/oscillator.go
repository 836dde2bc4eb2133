package graph

import (
	"math"

	"famisynth/log"
)

//go:generate go tool stringer -type=OscillatorType -trimprefix=Osc

type OscillatorType uint8

const (
	OscSine OscillatorType = iota
	OscSquare
	OscSawtooth
	OscTriangle
	OscCustom
)

// OscillatorNode generates a periodic waveform at the frequency given by the
// Frequency parameter. It outputs silence until started.
type OscillatorNode struct {
	node
	Frequency *Param

	typ     OscillatorType
	wave    *PeriodicWave
	started bool
	phase   float64 // in [0, 1)
	fbuf    []float64
}

// NewOscillator creates a 440Hz oscillator of the given native shape. Use
// SetPeriodicWave for a custom waveform.
func (c *Context) NewOscillator(typ OscillatorType) *OscillatorNode {
	if typ == OscCustom {
		panic("graph: custom oscillators need a periodic wave")
	}
	o := &OscillatorNode{
		Frequency: newParam(c, 440),
		typ:       typ,
		fbuf:      make([]float64, RenderQuantum),
	}
	o.init(c, o)
	return o
}

func (o *OscillatorNode) Type() OscillatorType {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.typ
}

// SetPeriodicWave makes o generate w.
func (o *OscillatorNode) SetPeriodicWave(w *PeriodicWave) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	o.wave = w
	o.typ = OscCustom
}

// Start begins generation at the next render quantum.
func (o *OscillatorNode) Start() {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if o.started {
		log.ModGraph.WarnZ("oscillator already started").Stringer("type", o.typ).End()
		return
	}
	o.started = true
}

func (o *OscillatorNode) process(_, out []float64, frame uint64) {
	if !o.started {
		clear(out)
		return
	}

	o.Frequency.fill(o.fbuf, frame)
	sr := o.ctx.sampleRate
	for i := range out {
		out[i] = o.sample(o.phase)
		o.phase += o.fbuf[i] / sr
		o.phase -= math.Floor(o.phase)
	}
}

// sample returns the waveform value at phase p, in [0, 1). All shapes start
// at 0 and rise, as a sine does.
func (o *OscillatorNode) sample(p float64) float64 {
	switch o.typ {
	case OscSine:
		return math.Sin(2 * math.Pi * p)
	case OscSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case OscSawtooth:
		return 2 * (p - math.Floor(p+0.5))
	case OscTriangle:
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	case OscCustom:
		return o.wave.at(p)
	}
	return 0
}
