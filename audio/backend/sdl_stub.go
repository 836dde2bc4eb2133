//go:build nosdl

package backend

import (
	"github.com/go-faster/errors"

	"famisynth/audio/graph"
)

var errNoSDL = errors.New("SDL audio is not supported by this build")

// SDL is not available in nosdl builds. OpenSDL always fails.
type SDL struct{}

func OpenSDL(Config) (*SDL, error) { return nil, errNoSDL }

func (*SDL) Context() *graph.Context { return nil }
func (*SDL) Close() error            { return nil }
