package engine

import (
	logrus "github.com/sirupsen/logrus"
)

// LogLevel is the severity the engine attached to a log line.
type LogLevel int

const (
	LogUnknown LogLevel = iota
	LogDebug
	LogNotice
	LogWarning
	LogError
)

// LogEntry is one line from the engine's own log, independent of playback events.
type LogEntry struct {
	Level LogLevel
	Text  string
}

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogNotice:
		return "notice"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// Logrus maps the level onto the application logger's levels.
func (l LogLevel) Logrus() logrus.Level {
	switch l {
	case LogDebug:
		return logrus.DebugLevel
	case LogNotice:
		return logrus.InfoLevel
	case LogWarning:
		return logrus.WarnLevel
	case LogError:
		return logrus.ErrorLevel
	default:
		return logrus.TraceLevel
	}
}
