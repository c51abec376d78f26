package playback

import "time"

// Recorder observes what controllers do. The metrics package implements it.
type Recorder interface {
	RetryScheduled(channel string, after time.Duration)
	QualityFailed(channel string)
	MetadataFailed(channel string)
	DelayObserved(channel string, delay time.Duration)
	BufferingChanged(channel string, buffering bool)
}

type nopRecorder struct{}

func (nopRecorder) RetryScheduled(string, time.Duration) {}
func (nopRecorder) QualityFailed(string)                 {}
func (nopRecorder) MetadataFailed(string)                {}
func (nopRecorder) DelayObserved(string, time.Duration)  {}
func (nopRecorder) BufferingChanged(string, bool)        {}
