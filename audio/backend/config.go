// Package backend provides the outputs an audio graph can be rendered to:
// an SDL audio device, a WAV file, or nothing at all.
package backend

import "github.com/go-faster/errors"

// Config describes an audio output.
type Config struct {
	SampleRate int // output sample rate, in Hz
	Oversample int // the graph renders at SampleRate*Oversample
	BufferSize int // frames queued ahead on the device
}

var DefaultConfig = Config{
	SampleRate: 48000,
	Oversample: 2,
	BufferSize: 4096,
}

// Validate checks that cfg describes a usable output.
func (cfg Config) Validate() error {
	switch {
	case cfg.SampleRate <= 0:
		return errors.Errorf("invalid sample rate %d", cfg.SampleRate)
	case cfg.Oversample <= 0:
		return errors.Errorf("invalid oversampling factor %d", cfg.Oversample)
	case cfg.BufferSize <= 0:
		return errors.Errorf("invalid buffer size %d", cfg.BufferSize)
	}
	return nil
}

// graphRate is the sample rate the graph is rendered at.
func (cfg Config) graphRate() float64 {
	return float64(cfg.SampleRate * cfg.Oversample)
}
