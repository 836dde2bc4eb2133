// Package song decodes TOML songs and plays them on an audio.Manager, the
// same way an emulated sound chip drives its channels: one call per channel
// parameter, at a fixed tick rate.
package song

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"

	"famisynth/audio"
)

// A Song is a list of voices playing rows of notes. Each row lasts Speed ticks.
type Song struct {
	Title  string  `toml:"title"`
	Speed  int     `toml:"speed"`
	Voices []Voice `toml:"voice"`
}

type Voice struct {
	Type   audio.ChannelType `toml:"type"`
	Duty   float64           `toml:"duty"` // pulse only
	Volume float64           `toml:"volume"`
	Notes  []string          `toml:"notes"`
}

const DefaultSpeed = 6

// Special notes.
const (
	Rest = "---" // silence the voice
	Hold = "..." // keep playing the previous note
)

// Load reads the song at path.
func Load(path string) (*Song, error) {
	s := &Song{Speed: DefaultSpeed}
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, errors.Wrapf(err, "load song %s", path)
	}
	if err := s.validate(); err != nil {
		return nil, errors.Wrapf(err, "song %s", path)
	}
	return s, nil
}

// Decode reads a song from r.
func Decode(r io.Reader) (*Song, error) {
	s := &Song{Speed: DefaultSpeed}
	if _, err := toml.NewDecoder(r).Decode(s); err != nil {
		return nil, errors.Wrap(err, "decode song")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rows returns the length of the song, in rows. Voices shorter than that are
// silent at the end.
func (s *Song) Rows() int {
	n := 0
	for _, v := range s.Voices {
		n = max(n, len(v.Notes))
	}
	return n
}

func (s *Song) validate() error {
	if s.Speed <= 0 {
		return errors.Errorf("invalid speed %d", s.Speed)
	}
	if len(s.Voices) == 0 {
		return errors.New("no voices")
	}
	for i, v := range s.Voices {
		if v.Volume < 0 || v.Volume > 1 {
			return errors.Errorf("voice %d: volume %v out of [0, 1]", i, v.Volume)
		}
		// A duty of 0 keeps the channel default.
		if v.Duty < 0 || v.Duty >= 1 {
			return errors.Errorf("voice %d: duty %v out of (0, 1)", i, v.Duty)
		}
		for j, n := range v.Notes {
			if _, err := ParseNote(n); err != nil {
				return errors.Wrapf(err, "voice %d, row %d", i, j)
			}
		}
	}
	return nil
}

// A Note is what a voice does on a row.
type Note struct {
	Freq float64 // in Hz, only for notes to play
	Rest bool
	Hold bool
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNote parses a note. It's either a pitch in scientific notation (C4,
// F#3, Bb2), an NES noise period (N0 to NF), Rest or Hold. An empty string is
// the same as Hold.
func ParseNote(s string) (Note, error) {
	switch s {
	case "", Hold:
		return Note{Hold: true}, nil
	case Rest:
		return Note{Rest: true}, nil
	}

	s = strings.ToUpper(s)
	if s[0] == 'N' {
		period, err := strconv.ParseUint(s[1:], 16, 4)
		if err != nil {
			return Note{}, errors.Errorf("invalid noise period %q", s)
		}
		return Note{Freq: audio.NoiseFrequency(uint8(period))}, nil
	}

	semi, ok := semitones[s[0]]
	if !ok {
		return Note{}, errors.Errorf("invalid note %q", s)
	}
	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		semi++
		rest = rest[1:]
	case strings.HasPrefix(rest, "B"):
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil || octave < 0 || octave > 9 {
		return Note{}, errors.Errorf("invalid octave in note %q", s)
	}

	midi := (octave+1)*12 + semi
	return Note{Freq: 440 * math.Pow(2, float64(midi-69)/12)}, nil
}
