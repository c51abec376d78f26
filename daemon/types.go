package daemon

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// Resolution of a variant's video track. Zero for audio-only variants.
type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func (r Resolution) String() string {
	if r.Width == 0 || r.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Variant is one quality the daemon can serve for a channel.
type Variant struct {
	Name       string     `json:"name"`
	GroupID    string     `json:"group_id"`
	Resolution Resolution `json:"resolution"`
	Bandwidth  uint64     `json:"bandwidth"`
	URL        string     `json:"url"`
}

// wireVariant is how the daemon nests a variant inside playlist_infos.
type wireVariant struct {
	StreamInfo struct {
		Resolution Resolution `json:"resolution"`
		Bandwidth  uint64     `json:"bandwidth"`
	} `json:"stream_info"`
	MediaInfo struct {
		Name    string `json:"name"`
		GroupID string `json:"group_id"`
	} `json:"media_info"`
	URL string `json:"url"`
}

// StreamIndex lists a channel's variants in the daemon's order.
type StreamIndex struct {
	Variants []Variant
}

// Names returns the variant names, in order, as offered to the user.
func (s StreamIndex) Names() []string {
	return lo.Map(s.Variants, func(v Variant, _ int) string {
		return v.Name
	})
}

// UnmarshalJSON reads the daemon's {"playlist_infos": [...]} document.
func (s *StreamIndex) UnmarshalJSON(data []byte) error {
	var doc struct {
		PlaylistInfos []wireVariant `json:"playlist_infos"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	s.Variants = lo.Map(doc.PlaylistInfos, func(w wireVariant, _ int) Variant {
		return Variant{
			Name:       w.MediaInfo.Name,
			GroupID:    w.MediaInfo.GroupID,
			Resolution: w.StreamInfo.Resolution,
			Bandwidth:  w.StreamInfo.Bandwidth,
			URL:        w.URL,
		}
	})
	return nil
}

// SegmentMetadata is the timing information the transcoder embeds in a media segment.
// Timestamps are milliseconds since the Unix epoch unless noted otherwise.
type SegmentMetadata struct {
	// BroadcastStart is in seconds.
	BroadcastStart uint32 `json:"broadc_s"`
	Cmd            string `json:"cmd"`
	IngestRecv     uint64 `json:"ingest_r"`
	IngestSent     uint64 `json:"ingest_s"`
	// StreamOffset is in seconds since the broadcast started.
	StreamOffset  float64 `json:"stream_offset"`
	TranscodeRecv uint64  `json:"transc_r"`
	TranscodeSent uint64  `json:"transc_s"`
}
