package audio

import (
	"sync"

	"github.com/go-faster/errors"

	"famisynth/audio/graph"
)

// ErrNoBackend is reported by Host.Err when no output was provided.
var ErrNoBackend = errors.New("no audio backend")

// An Output is an audio device, or anything consuming what a graph renders.
type Output interface {
	Context() *graph.Context
	Close() error
}

// OpenFunc opens an Output.
type OpenFunc func() (Output, error)

// A Host owns the audio output shared by all channels of a process. The
// output is opened at most once, on first use. If that's not possible, the
// host stays without output for good: it never retries.
type Host struct {
	mu          sync.Mutex
	open        OpenFunc
	initialized bool
	closed      bool
	out         Output
	err         error
}

// NewHost returns a host which opens its output with open. A nil open means
// audio is disabled.
func NewHost(open OpenFunc) *Host {
	return &Host{open: open}
}

// Context returns the audio context of the output, or nil if there's none.
func (h *Host) Context() *graph.Context {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.setup()
	if h.out == nil || h.closed {
		return nil
	}
	return h.out.Context()
}

func (h *Host) setup() {
	if h.initialized {
		return
	}
	h.initialized = true

	if h.open == nil {
		h.err = ErrNoBackend
		return
	}
	out, err := h.open()
	if err != nil {
		h.err = err
		return
	}
	h.out = out
}

// Err reports why the host has no output, if that's the case.
func (h *Host) Err() error {
	if h == nil {
		return ErrNoBackend
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Close closes the output. A closed host never opens it again.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.initialized = true
	if h.closed {
		return nil
	}
	h.closed = true
	if h.out == nil {
		return nil
	}
	return h.out.Close()
}
