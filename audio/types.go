// Package audio maps the sound channels of an emulated console onto audio
// graph voices, and manages them on behalf of the emulation driver.
package audio

import (
	"strings"

	"github.com/go-faster/errors"
)

//go:generate go tool stringer -type=ChannelType

// ChannelType selects the voice built for a channel.
type ChannelType uint8

const (
	Pulse ChannelType = iota
	Triangle
	Noise
	Sawtooth

	numChannelTypes
)

var (
	ErrChannelType = errors.New("invalid channel type")
	ErrNoChannel   = errors.New("no such channel")
)

// ParseChannelType parses a channel type name, case insensitively.
func ParseChannelType(s string) (ChannelType, error) {
	for typ := range numChannelTypes {
		if strings.EqualFold(s, typ.String()) {
			return typ, nil
		}
	}
	return 0, errors.Wrapf(ErrChannelType, "%q", s)
}

func (typ ChannelType) MarshalText() ([]byte, error) {
	if typ >= numChannelTypes {
		return nil, errors.Wrapf(ErrChannelType, "%d", uint8(typ))
	}
	return []byte(strings.ToLower(typ.String())), nil
}

func (typ *ChannelType) UnmarshalText(text []byte) error {
	t, err := ParseChannelType(string(text))
	if err != nil {
		return err
	}
	*typ = t
	return nil
}
