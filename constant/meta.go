// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Streampane is the canonical application identifier used for filesystem paths and CLI branding.
	Streampane = "streampane"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every request to the streaming daemon.
	UserAgent = Streampane + "/" + Version
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
