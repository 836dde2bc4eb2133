// Package config loads and saves the famisynth configuration file.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"famisynth/audio/backend"
	"famisynth/log"
)

type Config struct {
	Audio  AudioConfig  `toml:"audio"`
	Driver DriverConfig `toml:"driver"`
}

type AudioConfig struct {
	Backend      string  `toml:"backend"` // sdl, wav or none
	SampleRate   int     `toml:"sample_rate"`
	Oversample   int     `toml:"oversample"`
	BufferSize   int     `toml:"buffer_size"`
	MasterVolume float64 `toml:"master_volume"`
	WAVPath      string  `toml:"wav_path"`
}

type DriverConfig struct {
	TickRate  int    `toml:"tick_rate"`  // setter calls per second
	NoiseSeed uint64 `toml:"noise_seed"` // 0 picks a random seed
}

const (
	BackendSDL  = "sdl"
	BackendWAV  = "wav"
	BackendNone = "none"
)

var Default = Config{
	Audio: AudioConfig{
		Backend:      BackendSDL,
		SampleRate:   backend.DefaultConfig.SampleRate,
		Oversample:   backend.DefaultConfig.Oversample,
		BufferSize:   backend.DefaultConfig.BufferSize,
		MasterVolume: 1.0,
		WAVPath:      "famisynth.wav",
	},
	Driver: DriverConfig{
		TickRate: 60,
	},
}

const DefaultFileMode = os.FileMode(0755)

var Dir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModDriver.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "famisynth")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModDriver.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const filename = "config.toml"

// DefaultPath is the path of the configuration file in the user config
// directory.
func DefaultPath() string {
	return filepath.Join(Dir(), filename)
}

// Load reads the configuration at path. Missing keys keep their default value.
func Load(path string) (Config, error) {
	cfg := Default
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default, errors.Wrapf(err, "load config %s", path)
	}
	for _, key := range md.Undecoded() {
		log.ModDriver.WarnZ("unknown config key").String("key", key.String()).End()
	}
	if err := cfg.Validate(); err != nil {
		return Default, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration at path, or provides the default one.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.ModDriver.WarnZ("using default config").Error("err", err).End()
		}
		return Default
	}
	return cfg
}

// Save writes cfg at path.
func Save(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (cfg Config) Validate() error {
	switch cfg.Audio.Backend {
	case BackendSDL, BackendWAV, BackendNone:
	default:
		return errors.Errorf("unknown audio backend %q", cfg.Audio.Backend)
	}
	if cfg.Audio.MasterVolume < 0 || cfg.Audio.MasterVolume > 1 {
		return errors.Errorf("master volume %v out of [0, 1]", cfg.Audio.MasterVolume)
	}
	if cfg.Driver.TickRate <= 0 {
		return errors.Errorf("invalid tick rate %d", cfg.Driver.TickRate)
	}
	if cfg.Audio.Backend == BackendWAV && cfg.Audio.WAVPath == "" {
		return errors.New("wav backend needs a wav_path")
	}
	return cfg.Output().Validate()
}

// Output returns the backend configuration.
func (cfg Config) Output() backend.Config {
	return backend.Config{
		SampleRate: cfg.Audio.SampleRate,
		Oversample: cfg.Audio.Oversample,
		BufferSize: cfg.Audio.BufferSize,
	}
}
