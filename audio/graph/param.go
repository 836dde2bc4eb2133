package graph

import "sort"

type event struct {
	t float64 // seconds, on the audio clock
	v float64
}

// A Param is a node parameter whose changes are scheduled on the audio clock.
type Param struct {
	ctx *Context

	base   float64 // value before the first pending event
	events []event // pending events, sorted by time
	count  uint64  // number of events ever scheduled
}

func newParam(ctx *Context, v float64) *Param {
	return &Param{ctx: ctx, base: v}
}

// SetValueAtTime schedules the parameter to jump to v at time t. Events
// scheduled for the same time apply in call order.
func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	p.fold(p.ctx.now())

	idx := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].t > t
	})
	p.events = append(p.events, event{})
	copy(p.events[idx+1:], p.events[idx:])
	p.events[idx] = event{t: t, v: v}
	p.count++
}

// Value returns the parameter value at the current time.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(p.ctx.now())
}

// Scheduled returns how many changes have ever been scheduled on p.
func (p *Param) Scheduled() uint64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.count
}

func (p *Param) valueAt(t float64) float64 {
	v := p.base
	for _, ev := range p.events {
		if ev.t > t {
			break
		}
		v = ev.v
	}
	return v
}

// fold merges the events up to time t into the base value.
func (p *Param) fold(t float64) {
	n := 0
	for n < len(p.events) && p.events[n].t <= t {
		p.base = p.events[n].v
		n++
	}
	if n > 0 {
		p.events = append(p.events[:0], p.events[n:]...)
	}
}

// fill writes the per-frame values for the frames starting at frame.
func (p *Param) fill(buf []float64, frame uint64) {
	if len(p.events) == 0 {
		for i := range buf {
			buf[i] = p.base
		}
		return
	}

	sr := p.ctx.sampleRate
	v := p.base
	ev := 0
	for i := range buf {
		t := float64(frame+uint64(i)) / sr
		for ev < len(p.events) && p.events[ev].t <= t {
			v = p.events[ev].v
			ev++
		}
		buf[i] = v
	}

	p.base = v
	p.events = append(p.events[:0], p.events[ev:]...)
}
