package log

import (
	logrus "github.com/sirupsen/logrus"
)

// Engine forwards one drained media engine log line, tagged with its pane.
func Engine(channel string, level logrus.Level, text string) {
	if !enabled {
		return
	}
	logrus.WithFields(logrus.Fields{
		"source":  "engine",
		"channel": channel,
	}).Log(level, text)
}
