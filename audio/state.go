package audio

import "github.com/go-faster/jx"

// ChannelState is a snapshot of a channel, for debug views.
type ChannelState struct {
	Type      ChannelType
	Frequency float64 // last frequency set, 0 if never set
	Duty      float64 // pulse only
	Volume    float64 // last volume requested, before master volume
	Gain      float64 // gain applied at the current audio time
	Delay     float64 // pulse only: scheduled delay, in seconds
	Connected bool
	Changes   uint64 // parameter changes ever scheduled
}

// Encode writes s as a JSON object.
func (s ChannelState) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("type")
	e.Str(s.Type.String())
	e.FieldStart("frequency")
	e.Float64(s.Frequency)
	if s.Type == Pulse {
		e.FieldStart("duty")
		e.Float64(s.Duty)
		e.FieldStart("delay")
		e.Float64(s.Delay)
	}
	e.FieldStart("volume")
	e.Float64(s.Volume)
	e.FieldStart("gain")
	e.Float64(s.Gain)
	e.FieldStart("connected")
	e.Bool(s.Connected)
	e.FieldStart("changes")
	e.UInt64(s.Changes)
	e.ObjEnd()
}
