package backend

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/arl/blip/wave"
	"github.com/go-faster/errors"

	"famisynth/audio/graph"
	"famisynth/log"
)

// WAV writes what a graph renders to a mono WAV file. Like Offline, it
// renders only when advanced.
type WAV struct {
	ctx   *graph.Context
	mixer *Mixer
	path  string

	// the wave file, only written and closed.
	write     func([]int16) error
	closeFile func() error

	buf      []int16
	nsamples int
	rate     int
	err      error // first write error
}

func OpenWAV(path string, cfg Config) (*WAV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create wav directory")
	}

	f, err := wave.NewFile(path, cfg.SampleRate)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}

	ctx := graph.NewContext(cfg.graphRate())
	log.ModBackend.InfoZ("wav output").
		String("path", path).
		Int("rate", cfg.SampleRate).
		Int("oversample", cfg.Oversample).
		End()

	return &WAV{
		ctx:   ctx,
		mixer: NewMixer(ctx, cfg.SampleRate),
		path:  path,
		write: func(samples []int16) error {
			_, err := f.Write(samples)
			return err
		},
		closeFile: func() error {
			return f.Close()
		},
		buf:  make([]int16, mixChunk),
		rate: cfg.SampleRate,
	}, nil
}

func (w *WAV) Context() *graph.Context { return w.ctx }

// Advance renders d worth of audio into the file. After a write error, the
// audio is still rendered but nothing gets written anymore; Err and Close
// report that error.
func (w *WAV) Advance(d time.Duration) {
	n := int(math.Round(d.Seconds() * float64(w.rate)))
	for n > 0 {
		buf := w.buf[:min(n, len(w.buf))]
		w.mixer.MixMono(buf)
		n -= len(buf)

		if w.err != nil {
			continue
		}
		if err := w.write(buf); err != nil {
			w.err = errors.Wrapf(err, "write %s", w.path)
			log.ModBackend.ErrorZ("wav write failed").Error("err", err).End()
			continue
		}
		w.nsamples += len(buf)
	}
}

// Samples returns the number of samples successfully written so far.
func (w *WAV) Samples() int { return w.nsamples }

// Err returns the first error met while writing the file.
func (w *WAV) Err() error { return w.err }

// Close finalizes the file. It returns the first write error if any, or
// the error met while closing.
func (w *WAV) Close() error {
	w.ctx.Close()
	err := w.closeFile()

	log.ModBackend.InfoZ("wav closed").
		String("path", w.path).
		Int("samples", w.nsamples).
		End()

	if w.err != nil {
		return w.err
	}
	if err != nil {
		return errors.Wrapf(err, "close %s", w.path)
	}
	return nil
}
