package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Entry is the printf-style counterpart of EntryZ, used for free-form
// messages. Prefer the Z functions on hot paths.
type Entry struct {
	mod Module
}

func (entry Entry) log() *logrus.Entry {
	return logrus.StandardLogger().
		WithField("_mod", entry.mod.String()).
		WithFields(contextFields())
}

func (entry Entry) Debugf(format string, args ...any) {
	if entry.mod.Enabled(DebugLevel) {
		entry.log().Debugf(format, args...)
	}
}

func (entry Entry) Warnf(format string, args ...any) {
	if entry.mod.Enabled(WarnLevel) {
		entry.log().Warnf(format, args...)
	}
}

func (entry Entry) Fatalf(format string, args ...any) {
	if entry.mod.Enabled(FatalLevel) {
		entry.log().Fatalf(format, args...)
	}
}
