//go:build !nosdl

package backend

import (
	"sync"
	"time"
	"unsafe"

	"github.com/go-faster/errors"
	"github.com/veandco/go-sdl2/sdl"

	"famisynth/audio/graph"
	"famisynth/log"
)

const (
	AudioFormat   = sdl.AUDIO_S16LSB
	AudioChannels = 2
)

// SDL plays a graph on the default SDL audio device. A goroutine keeps the
// device queue filled with Config.BufferSize frames ahead.
type SDL struct {
	dev   sdl.AudioDeviceID
	ctx   *graph.Context
	mixer *Mixer
	cfg   Config

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// OpenSDL opens the default audio device and starts playing.
func OpenSDL(cfg Config) (*SDL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, errors.Wrap(err, "init SDL audio")
	}

	want := sdl.AudioSpec{
		Freq:     int32(cfg.SampleRate),
		Format:   AudioFormat,
		Channels: AudioChannels,
		Samples:  mixChunk,
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, errors.Wrap(err, "open audio device")
	}

	ctx := graph.NewContext(cfg.graphRate())
	s := &SDL{
		dev:   dev,
		ctx:   ctx,
		mixer: NewMixer(ctx, cfg.SampleRate),
		cfg:   cfg,
		quit:  make(chan struct{}),
	}

	log.ModBackend.InfoZ("sdl audio device opened").
		Int("rate", int(have.Freq)).
		Int("channels", int(have.Channels)).
		Int("samples", int(have.Samples)).
		End()

	s.wg.Add(1)
	go s.pump()
	sdl.PauseAudioDevice(dev, false)
	return s, nil
}

func (s *SDL) Context() *graph.Context { return s.ctx }

func (s *SDL) pump() {
	defer s.wg.Done()

	const frameSize = AudioChannels * 2 // S16 stereo
	target := uint32(s.cfg.BufferSize * frameSize)
	out := make([]int16, mixChunk*AudioChannels)

	for {
		select {
		case <-s.quit:
			return
		default:
		}

		if sdl.GetQueuedAudioSize(s.dev) >= target {
			time.Sleep(time.Millisecond)
			continue
		}

		s.mixer.MixStereo(out)
		buf := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(out)*2)
		if err := sdl.QueueAudio(s.dev, buf); err != nil {
			log.ModBackend.DebugZ("failed to queue audio buffer").Error("err", err).End()
		}
	}
}

// Close stops playback and closes the device.
func (s *SDL) Close() error {
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()

		s.ctx.Close()
		sdl.PauseAudioDevice(s.dev, true)
		sdl.CloseAudioDevice(s.dev)
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		log.ModBackend.InfoZ("sdl audio device closed").End()
	})
	return nil
}
