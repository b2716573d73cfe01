// Package preview models the vertical reel preview: caption lookup against
// the playhead and the play/pause state machine the dashboard mirrors.
package preview

import "github.com/reeldeck/reeldeck-agent/internal/reel"

// ActiveCaption returns the caption covering time t, in seconds relative to
// the clip start. Both endpoints are inclusive; when adjacent segments share
// a boundary the earlier segment wins. Returns false when no segment covers t.
func ActiveCaption(captions []reel.CaptionSegment, t float64) (reel.CaptionSegment, bool) {
	for _, seg := range captions {
		if t >= seg.StartTime && t <= seg.EndTime {
			return seg, true
		}
	}
	return reel.CaptionSegment{}, false
}
