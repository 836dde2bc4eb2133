package audio

import (
	"math/rand/v2"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"famisynth/audio/graph"
	"famisynth/log"
)

// A Manager owns the channels of an emulated sound chip. Channels are
// addressed by the order in which they were added.
//
// Without audio output every operation is a silent no-op, so that emulation
// can run without sound. A Manager is meant to be driven from a single
// goroutine, the emulation one.
type Manager struct {
	ctx      *graph.Context // nil when there's no audio output
	channels []managedChannel
	master   float64
	rnd      *rand.Rand
}

type managedChannel struct {
	Channel
	volume float64 // last volume requested, before master volume
}

// NewManager creates a manager playing on the output of h, which may be nil.
func NewManager(h *Host) *Manager {
	return &Manager{
		ctx:    h.Context(),
		master: 1.0,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Enabled reports whether m has an audio output.
func (m *Manager) Enabled() bool { return m.ctx != nil }

// Context returns the audio context channels are built in, or nil.
func (m *Manager) Context() *graph.Context { return m.ctx }

// SetNoiseSeed seeds the random source used to build noise channels.
func (m *Manager) SetNoiseSeed(seed uint64) {
	m.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	log.ModAudio.DebugZ("noise seed").Uint64("seed", seed).End()
}

// AddChannel creates and starts a channel of the given type, which gets the
// next channel number.
func (m *Manager) AddChannel(typ ChannelType) error {
	if m.ctx == nil {
		return nil
	}

	ch, err := newChannel(m.ctx, typ, m.rnd)
	if err != nil {
		return err
	}
	ch.Start()
	m.channels = append(m.channels, managedChannel{Channel: ch})

	log.ModAudio.DebugZ("add channel").
		Stringer("type", typ).
		Int("index", len(m.channels)-1).
		End()
	return nil
}

func (m *Manager) ChannelCount() int {
	return len(m.channels)
}

func (m *Manager) channel(idx int) (*managedChannel, error) {
	if idx < 0 || idx >= len(m.channels) {
		return nil, errors.Wrapf(ErrNoChannel, "channel %d (have %d)", idx, len(m.channels))
	}
	return &m.channels[idx], nil
}

func (m *Manager) SetChannelFrequency(idx int, hz float64) error {
	if m.ctx == nil {
		return nil
	}
	ch, err := m.channel(idx)
	if err != nil {
		return err
	}
	ch.SetFrequency(hz)
	return nil
}

// SetChannelVolume sets the volume of a channel, scaled by the master volume.
func (m *Manager) SetChannelVolume(idx int, volume float64) error {
	if m.ctx == nil {
		return nil
	}
	ch, err := m.channel(idx)
	if err != nil {
		return err
	}
	ch.volume = volume
	ch.SetVolume(volume*m.master, m.ctx)
	return nil
}

func (m *Manager) SetChannelDutyRatio(idx int, ratio float64) error {
	if m.ctx == nil {
		return nil
	}
	ch, err := m.channel(idx)
	if err != nil {
		return err
	}
	ch.SetDutyRatio(ratio)
	return nil
}

// SetMasterVolume sets the volume applied on top of all channel volumes. A
// volume of 0 or less immediately silences all channels. Raising it again
// doesn't restore them: the next SetChannelVolume of each channel does.
func (m *Manager) SetMasterVolume(volume float64) {
	if m.ctx == nil {
		return
	}

	m.master = volume
	if volume <= 0 {
		for i := range m.channels {
			m.channels[i].SetVolume(0, m.ctx)
		}
	}

	log.ModAudio.DebugZ("master volume").Float64("volume", volume).End()
}

func (m *Manager) MasterVolume() float64 {
	return m.master
}

// Release destroys all channels. The manager can be reused afterwards.
func (m *Manager) Release() {
	for i := range m.channels {
		m.channels[i].Destroy()
	}
	log.ModAudio.DebugZ("release channels").Int("count", len(m.channels)).End()

	clear(m.channels)
	m.channels = m.channels[:0]
}

// ChannelStates returns the state of all channels, in channel number order.
func (m *Manager) ChannelStates() []ChannelState {
	states := make([]ChannelState, len(m.channels))
	for i, ch := range m.channels {
		states[i] = ch.State()
		states[i].Volume = ch.volume
	}
	return states
}

// EncodeState writes the manager state as a JSON object.
func (m *Manager) EncodeState(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("enabled")
	e.Bool(m.Enabled())
	if m.ctx != nil {
		e.FieldStart("time")
		e.Float64(m.ctx.CurrentTime())
	}
	e.FieldStart("master_volume")
	e.Float64(m.master)
	e.FieldStart("channels")
	e.ArrStart()
	for _, st := range m.ChannelStates() {
		st.Encode(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}
