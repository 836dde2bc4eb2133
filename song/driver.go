package song

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"famisynth/audio"
	"famisynth/log"
)

// A Driver plays a song on the channels of a manager, one tick at a time.
// Like the manager it drives, it's not safe for concurrent use.
type Driver struct {
	m     *audio.Manager
	song  *Song
	notes [][]Note // per voice
	base  int      // index of the first channel of the song

	tick   int
	row    int
	muted  bool
	master float64
}

// NewDriver adds one channel per voice of s to m. Duty ratios are set once
// and for all. If a channel can't be set up, all channels of m are released.
func NewDriver(m *audio.Manager, s *Song) (*Driver, error) {
	d := &Driver{
		m:      m,
		song:   s,
		notes:  make([][]Note, len(s.Voices)),
		base:   m.ChannelCount(),
		master: m.MasterVolume(),
	}

	for i, v := range s.Voices {
		d.notes[i] = make([]Note, len(v.Notes))
		for j, n := range v.Notes {
			note, err := ParseNote(n)
			if err != nil {
				return nil, errors.Wrapf(err, "voice %d, row %d", i, j)
			}
			d.notes[i][j] = note
		}
	}

	if err := d.addChannels(); err != nil {
		m.Release()
		return nil, err
	}

	log.ModDriver.InfoZ("song loaded").
		String("title", s.Title).
		Int("voices", len(s.Voices)).
		Int("rows", s.Rows()).
		End()
	return d, nil
}

func (d *Driver) addChannels() error {
	for i, v := range d.song.Voices {
		if err := d.m.AddChannel(v.Type); err != nil {
			return errors.Wrapf(err, "voice %d", i)
		}
		if v.Type == audio.Pulse && v.Duty != 0 {
			if err := d.m.SetChannelDutyRatio(d.channel(i), v.Duty); err != nil {
				return errors.Wrapf(err, "voice %d", i)
			}
		}
	}
	return nil
}

func (d *Driver) channel(voice int) int { return d.base + voice }

// Done reports whether all rows have been played.
func (d *Driver) Done() bool { return d.row >= d.song.Rows() }

// Row returns the next row to play.
func (d *Driver) Row() int { return d.row }

// Tick advances the song by one tick. Notes change on the first tick of a row.
func (d *Driver) Tick() error {
	if d.Done() {
		return nil
	}

	if d.tick == 0 {
		if err := d.playRow(); err != nil {
			return err
		}
	}
	d.tick++
	if d.tick == d.song.Speed {
		d.tick = 0
		d.row++
	}
	return nil
}

func (d *Driver) playRow() error {
	for i, v := range d.song.Voices {
		ch := d.channel(i)

		note := Note{Rest: true}
		if d.row < len(d.notes[i]) {
			note = d.notes[i][d.row]
		}

		switch {
		case note.Hold:
			continue
		case note.Rest:
			if err := d.m.SetChannelVolume(ch, 0); err != nil {
				return err
			}
		default:
			if err := d.m.SetChannelFrequency(ch, note.Freq); err != nil {
				return err
			}
			if err := d.m.SetChannelVolume(ch, v.Volume); err != nil {
				return err
			}
		}
	}

	log.ModDriver.DebugZ("row").Int("row", d.row).End()
	return nil
}

// SetMuted mutes or unmutes the song. Muting silences all channels at once
// while unmuted channels get their volume back on their next note.
func (d *Driver) SetMuted(muted bool) {
	if muted == d.muted {
		return
	}
	d.muted = muted
	log.ModDriver.DebugZ("mute").Bool("muted", muted).End()
	if muted {
		d.master = d.m.MasterVolume()
		d.m.SetMasterVolume(0)
	} else {
		d.m.SetMasterVolume(d.master)
	}
}

func (d *Driver) Muted() bool { return d.muted }

// Release destroys the channels of the manager.
func (d *Driver) Release() {
	d.m.Release()
}

// An Advancer renders audio on demand.
type Advancer interface {
	Advance(d time.Duration)
}

// Render plays the whole song, rendering a tick of audio on out after each
// tick. It returns the rendered duration.
func (d *Driver) Render(out Advancer, tickRate int) (time.Duration, error) {
	period := time.Second / time.Duration(tickRate)

	var total time.Duration
	for !d.Done() {
		if err := d.Tick(); err != nil {
			return total, err
		}
		out.Advance(period)
		total += period
	}
	return total, nil
}

// Play plays the song in real time, until it ends or ctx is cancelled.
func (d *Driver) Play(ctx context.Context, tickRate int) error {
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	for !d.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Tick(); err != nil {
				return err
			}
		}
	}
	return nil
}
