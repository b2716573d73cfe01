package preview

import (
	"sync"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

// Player tracks playback state for the clip shown in the preview frame. The
// actual media element lives in the browser; the player holds the intended
// state and reconciles it against the events the page reports back.
type Player struct {
	mu      sync.Mutex
	clip    *reel.HighlightClip
	playing bool
	intent  bool
	// playhead position in seconds, relative to the clip start
	currentTime float64
}

func NewPlayer() *Player {
	return &Player{}
}

// SetClip rebinds the player to a new clip. The playhead returns to the clip
// start and playback intent is cleared.
func (p *Player) SetClip(clip reel.HighlightClip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := clip
	p.clip = &cp
	p.currentTime = 0
	p.playing = false
	p.intent = false
}

// Clear unbinds the player, used when the session resets.
func (p *Player) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clip = nil
	p.currentTime = 0
	p.playing = false
	p.intent = false
}

// Toggle flips the playback intent and returns the new value. Intent is what
// the user asked for; Playing reflects what the media element reported.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intent = !p.intent
	return p.intent
}

// HandleStarted records that the media element began playback.
func (p *Player) HandleStarted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.intent = true
}

// HandleStopped records that the media element paused or ended.
func (p *Player) HandleStopped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.intent = false
}

// HandleTimeUpdate advances the playhead. When the playhead passes the end of
// the clip window the preview loops: the returned seek target is the clip
// start and the second return is true.
func (p *Player) HandleTimeUpdate(t float64) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip == nil {
		return 0, false
	}

	window := p.clip.EndTime - p.clip.StartTime
	if window > 0 && t >= window {
		p.currentTime = 0
		return 0, true
	}
	p.currentTime = t
	return 0, false
}

// CurrentCaption returns the caption covering the current playhead, if any.
func (p *Player) CurrentCaption() (reel.CaptionSegment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip == nil {
		return reel.CaptionSegment{}, false
	}
	return ActiveCaption(p.clip.Captions, p.currentTime)
}

// Playing reports the last state the media element confirmed.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Intent reports whether playback is requested.
func (p *Player) Intent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.intent
}

// Clip returns the bound clip, if any.
func (p *Player) Clip() (reel.HighlightClip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clip == nil {
		return reel.HighlightClip{}, false
	}
	return *p.clip, true
}
