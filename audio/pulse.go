package audio

import (
	"famisynth/audio/graph"
	"famisynth/log"
)

// A pulseChannel produces a rectangular wave of variable duty ratio out of a
// sawtooth oscillator, the difference between a sawtooth and a delayed copy
// of itself being a pulse wave:
//
//	              +----------+
//	         +--->| gain ×-1 |----+
//	+-----+  |    +----------+    |    +------+
//	| saw |--+                    +--->| gain |---> destination
//	+-----+  |    +----------+    |    +------+
//	         +--->|  delay   |----+
//	              +----------+
//
// with a delay of (1-duty)/frequency seconds. Changing either the frequency or
// the duty ratio reschedules the delay time.
type pulseChannel struct {
	oscChannel
	inverter *graph.GainNode
	delay    *graph.DelayNode

	duty float64
}

func newPulseChannel(ctx *graph.Context) *pulseChannel {
	pc := &pulseChannel{
		oscChannel: newOscChannel(ctx, Pulse, graph.OscSawtooth),
		inverter:   ctx.NewGain(),
		delay:      ctx.NewDelay(graph.DefaultMaxDelay),
		duty:       0.5,
	}

	pc.inverter.Gain.SetValueAtTime(-1, ctx.CurrentTime())
	pc.osc.Connect(pc.inverter)
	pc.inverter.Connect(pc.gain)

	pc.osc.Connect(pc.delay)
	pc.delay.Connect(pc.gain)

	pc.gain.Connect(ctx.Destination())
	return pc
}

func (pc *pulseChannel) SetFrequency(hz float64) {
	if pc.freq == hz {
		return
	}
	pc.oscChannel.SetFrequency(hz)
	pc.updateDelay()
}

func (pc *pulseChannel) SetDutyRatio(ratio float64) {
	if pc.duty == ratio {
		return
	}
	pc.duty = ratio
	pc.updateDelay()
}

// updateDelay schedules the delay matching the current frequency and duty. It
// does nothing until a positive frequency is known.
func (pc *pulseChannel) updateDelay() {
	if pc.freq <= 0 {
		return
	}

	delay := (1 - pc.duty) / pc.freq
	if delay > pc.delay.MaxDelay() {
		log.ModAudio.DebugZ("pulse delay clamped").
			Float64("freq", pc.freq).
			Float64("duty", pc.duty).
			Float64("delay", delay).
			End()
		delay = pc.delay.MaxDelay()
	}
	pc.delay.DelayTime.SetValueAtTime(delay, pc.ctx.CurrentTime())
}

func (pc *pulseChannel) Destroy() {
	pc.oscChannel.Destroy()
	pc.inverter.Disconnect()
	pc.delay.Disconnect()
}

func (pc *pulseChannel) State() ChannelState {
	st := pc.oscChannel.State()
	st.Duty = pc.duty
	st.Delay = pc.delay.DelayTime.Value()
	st.Changes += pc.delay.DelayTime.Scheduled()
	return st
}
