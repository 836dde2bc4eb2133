package song

import (
	_ "embed"
	"strings"
)

//go:embed demo.toml
var demoTOML string

// Demo returns the song played when none is given.
func Demo() *Song {
	s, err := Decode(strings.NewReader(demoTOML))
	if err != nil {
		panic(err)
	}
	return s
}
