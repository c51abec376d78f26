// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Streaming Daemon - where the companion daemon listens and which version it must report.
const (
	DaemonHost       = "daemon.host"
	DaemonPort       = "daemon.port"
	DaemonMinVersion = "daemon.min_version"
)

// Media Playback - engine selection, its launch arguments and the playback control loop.
const (
	PlayerEngine        = "player.engine"
	PlayerMpvPath       = "player.mpv_path"
	PlayerMpvArgs       = "player.mpv_args"
	PlayerPollInterval  = "player.poll_interval"
	PlayerRetryBase     = "player.retry_base"
	PlayerRetryMax      = "player.retry_max"
	PlayerDefaultVolume = "player.default_volume"
	PlayerVolumeStep    = "player.volume_step"
	PlayerVideoStep     = "player.video_step"
)

// Video Equalizer - starting picture adjustments for panes that have none remembered.
const (
	VideoBrightness = "video.brightness"
	VideoContrast   = "video.contrast"
	VideoSaturation = "video.saturation"
	VideoHue        = "video.hue"
	VideoGamma      = "video.gamma"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)

// Observability
const (
	MetricsAddr = "metrics.addr"
)
