// Package export renders timeline tracks as CMX3600 edit decision lists
// for the external render pipeline.
package export

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/roach88/cutroom/internal/timeline"
)

// Asset is what the media library knows about a content reference.
type Asset struct {
	ThumbnailURL string  `json:"thumbnail_url"`
	MediaURL     string  `json:"media_url"`
	DurationHint float64 `json:"duration_hint"`
}

// Resolver maps a clip's ContentRef to its asset.
type Resolver interface {
	Resolve(ref string) (Asset, bool)
}

// MapResolver resolves from a fixed table.
type MapResolver map[string]Asset

func (m MapResolver) Resolve(ref string) (Asset, bool) {
	a, ok := m[ref]
	return a, ok
}

// PassthroughResolver treats every ref as its own media URL.
type PassthroughResolver struct{}

func (PassthroughResolver) Resolve(ref string) (Asset, bool) {
	if ref == "" {
		return Asset{}, false
	}
	return Asset{MediaURL: ref}, true
}

// Event is one EDL line. Times are in seconds.
type Event struct {
	ClipID    string
	Reel      string
	Channel   string // "V" or "A"
	SourceIn  float64
	SourceOut float64
	RecordIn  float64
	RecordOut float64
	ClipName  string
	MediaPath string
}

// Result lists the events of a track and the clips that could not be
// resolved to media.
type Result struct {
	Events     []Event  `json:"events"`
	Unresolved []string `json:"unresolved_clips"`
}

// EventsForTrack builds one event per clip on trackID, in timeline order.
// Source in/out come from the clip's offset, record in/out from its
// position. Clips the resolver does not know are listed as unresolved.
func EventsForTrack(snap timeline.Snapshot, trackID string, r Resolver) (Result, error) {
	track, ok := snap.Track(trackID)
	if !ok {
		return Result{}, fmt.Errorf("export: unknown track %q", trackID)
	}
	if r == nil {
		r = PassthroughResolver{}
	}

	channel := "V"
	if track.Type == timeline.TrackAudio {
		channel = "A"
	}

	res := Result{Events: []Event{}, Unresolved: []string{}}
	for _, id := range track.ClipIDs {
		c, ok := snap.Clip(id)
		if !ok {
			return Result{}, fmt.Errorf("export: track %s lists missing clip %s", trackID, id)
		}
		asset, ok := r.Resolve(c.ContentRef)
		if !ok {
			res.Unresolved = append(res.Unresolved, c.ID)
			continue
		}
		name := c.Name
		if name == "" {
			name = path.Base(asset.MediaURL)
		}
		res.Events = append(res.Events, Event{
			ClipID:    c.ID,
			Reel:      SanitizeReelName(strings.TrimSuffix(path.Base(asset.MediaURL), path.Ext(asset.MediaURL)), 8),
			Channel:   channel,
			SourceIn:  c.Offset,
			SourceOut: c.Offset + c.Duration,
			RecordIn:  c.StartTime,
			RecordOut: c.End(),
			ClipName:  name,
			MediaPath: asset.MediaURL,
		})
	}
	return res, nil
}

// GenerateEDL renders events as CMX3600 text. A non-positive frame rate
// means 30.
func GenerateEDL(title string, frameRate float64, events []Event) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		reel := ev.Reel
		if reel == "" {
			reel = "AX"
		}
		channel := ev.Channel
		if channel == "" {
			channel = "V"
		}
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, reel, channel,
				secondsToTimecode(ev.SourceIn, fps), secondsToTimecode(ev.SourceOut, fps),
				secondsToTimecode(ev.RecordIn, fps), secondsToTimecode(ev.RecordOut, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName),
		)
		if ev.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(s float64, fps int) string {
	totalFrames := int(math.Round(s * float64(fps)))
	if totalFrames < 0 {
		totalFrames = 0
	}
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

// SanitizeReelName keeps ASCII letters, digits and underscores, replaces
// everything else with '_' and truncates to maxLength. An empty name
// becomes "AX".
func SanitizeReelName(name string, maxLength int) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)

	if maxLength > 0 && len(name) > maxLength {
		name = name[:maxLength]
	}
	if name == "" {
		name = "AX"
	}
	return name
}
