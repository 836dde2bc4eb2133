package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"golang.org/x/sync/errgroup"

	"famisynth/audio"
	"famisynth/audio/backend"
	"famisynth/config"
	"famisynth/log"
	"famisynth/song"
)

// newManager returns a manager playing on host, configured after cfg.
func newManager(cfg config.Config, host *audio.Host) *audio.Manager {
	m := audio.NewManager(host)
	if seed := cfg.Driver.NoiseSeed; seed != 0 {
		m.SetNoiseSeed(seed)
	}
	m.SetMasterVolume(cfg.Audio.MasterVolume)
	return m
}

// openFunc returns how to open the real-time output selected by cfg. WAV
// files aren't real-time outputs, play renders them instead.
func openFunc(cfg config.Config) audio.OpenFunc {
	if cfg.Audio.Backend != config.BackendSDL {
		return nil
	}
	return func() (audio.Output, error) {
		out, err := backend.OpenSDL(cfg.Output())
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// play plays s in real time, until it ends or the user interrupts it.
func play(cfg config.Config, s *song.Song, mute bool) error {
	if cfg.Audio.Backend == config.BackendWAV {
		return render(cfg, s, cfg.Audio.WAVPath, mute)
	}

	host := audio.NewHost(openFunc(cfg))
	defer host.Close()

	m := newManager(cfg, host)
	if !m.Enabled() {
		log.ModAudio.WarnZ("playing without sound").Error("err", host.Err()).End()
	}

	drv, err := song.NewDriver(m, s)
	if err != nil {
		return err
	}
	drv.SetMuted(mute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		return drv.Play(ctx, cfg.Driver.TickRate)
	})
	g.Go(func() error {
		reportProgress(ctx, done, m, drv)
		return nil
	})

	err = g.Wait()
	drv.Release()
	if errors.Is(err, context.Canceled) {
		log.ModDriver.InfoZ("interrupted").Int("row", drv.Row()).End()
		err = nil
	}
	if cerr := host.Close(); err == nil {
		err = cerr
	}
	return err
}

// reportProgress periodically logs the audio clock until done is closed or
// ctx is cancelled. Only the audio clock is read, the manager belongs to the
// driver goroutine.
func reportProgress(ctx context.Context, done <-chan struct{}, m *audio.Manager, drv *song.Driver) {
	actx := m.Context()
	if actx == nil {
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			log.ModDriver.InfoZ("playing").Float64("time", actx.CurrentTime()).End()
		}
	}
}

// render renders s to a WAV file at path, as fast as possible.
func render(cfg config.Config, s *song.Song, path string, mute bool) error {
	out, err := backend.OpenWAV(path, cfg.Output())
	if err != nil {
		return err
	}
	host := audio.NewHost(func() (audio.Output, error) { return out, nil })
	defer host.Close()

	m := newManager(cfg, host)
	drv, err := song.NewDriver(m, s)
	if err != nil {
		return err
	}
	drv.SetMuted(mute)

	total, err := drv.Render(out, cfg.Driver.TickRate)
	drv.Release()
	if err != nil {
		return err
	}
	if err := host.Close(); err != nil {
		return err
	}

	log.ModDriver.InfoZ("rendered").
		String("path", path).
		Duration("duration", total).
		Int("samples", out.Samples()).
		End()
	return nil
}

// dump renders s offline, up to until (or the whole song if 0), then writes
// the manager state as JSON to w.
func dump(cfg config.Config, s *song.Song, until time.Duration, mute bool, w io.Writer) error {
	out := backend.NewOffline(cfg.Audio.SampleRate)
	host := audio.NewHost(func() (audio.Output, error) { return out, nil })
	defer host.Close()

	m := newManager(cfg, host)
	drv, err := song.NewDriver(m, s)
	if err != nil {
		return err
	}
	drv.SetMuted(mute)
	defer drv.Release()

	period := time.Second / time.Duration(cfg.Driver.TickRate)
	for elapsed := time.Duration(0); !drv.Done(); elapsed += period {
		if until != 0 && elapsed >= until {
			break
		}
		if err := drv.Tick(); err != nil {
			return err
		}
		out.Advance(period)
	}

	e := &jx.Encoder{}
	e.SetIdent(2)
	m.EncodeState(e)
	if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write state")
	}
	return nil
}
