package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Entry is the printf-style counterpart of EntryZ, for the rare messages
// that need formatting.
type Entry struct {
	mod Module
}

func (entry Entry) log() *logrus.Entry {
	return logrus.StandardLogger().WithField("_mod", entry.mod.String())
}

// Fatalf logs and exits, whatever the logging configuration.
func (entry Entry) Fatalf(format string, args ...any) {
	if entry.mod.Enabled(FatalLevel) {
		entry.log().Fatalf(format, args...)
	}
}
