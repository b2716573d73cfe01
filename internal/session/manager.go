// Package session implements the processing orchestrator: a single-session
// state machine that turns a submitted URL or file into a sequence of
// highlight clips, driving the AI and backend clients and absorbing their
// failures into recovered outcomes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

var (
	ErrBusy         = errors.New("a session is already in progress")
	ErrNotCompleted = errors.New("session is not completed")
	ErrClipIndex    = errors.New("clip index out of range")
	ErrNoInput      = errors.New("a url or file is required")
)

const defaultLanguage = "English"

// Input is one user submission: a pasted URL, or an uploaded file. The file
// path is accepted as an input hook but is not wired to a remote submission;
// file sessions always run the simulated path.
type Input struct {
	URL      string
	FilePath string
	Filename string
}

// Config wires a Manager. Zero delay/interval fields fall back to the
// production pacing (1.5s analysis delay, 2s reframe delay, 2s poll tick).
type Config struct {
	Highlights     HighlightService
	Jobs           JobService
	Logger         *slog.Logger
	BackendURL     string
	DemoMode       bool
	SampleVideoURL string
	AnalyzeDelay   time.Duration
	ReframeDelay   time.Duration
	PollInterval   time.Duration
}

// Snapshot is an immutable view of the session for presentation layers.
type Snapshot struct {
	SessionID  string
	Status     reel.ProcessStatus
	Metadata   *reel.VideoMetadata
	Clips      []reel.HighlightClip
	ActiveClip int
	Log        []string
	DemoMode   bool
	BackendURL string
}

// Manager owns exactly one session at a time. All state lives behind one
// mutex; async completions are tagged with the session epoch at launch and
// discarded when the epoch has moved on, so a slow response can never
// resurrect a reset session.
type Manager struct {
	highlights     HighlightService
	jobs           JobService
	logger         *slog.Logger
	sampleVideoURL string
	analyzeDelay   time.Duration
	reframeDelay   time.Duration
	pollInterval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	epoch       uint64
	sessionID   string
	status      reel.ProcessStatus
	meta        *reel.VideoMetadata
	clips       []reel.HighlightClip
	activeClip  int
	log         *Log
	demoMode    bool
	backendURL  string
	poller      *poller
	subscribers map[chan Snapshot]struct{}
}

func NewManager(cfg Config) *Manager {
	analyzeDelay := cfg.AnalyzeDelay
	if analyzeDelay == 0 {
		analyzeDelay = 1500 * time.Millisecond
	}
	reframeDelay := cfg.ReframeDelay
	if reframeDelay == 0 {
		reframeDelay = 2 * time.Second
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		highlights:     cfg.Highlights,
		jobs:           cfg.Jobs,
		logger:         cfg.Logger,
		sampleVideoURL: cfg.SampleVideoURL,
		analyzeDelay:   analyzeDelay,
		reframeDelay:   reframeDelay,
		pollInterval:   pollInterval,
		ctx:            ctx,
		cancel:         cancel,
		status:         reel.StatusIdle,
		log:            NewLog(),
		demoMode:       cfg.DemoMode,
		backendURL:     cfg.BackendURL,
		subscribers:    make(map[chan Snapshot]struct{}),
	}
}

// Shutdown cancels outstanding remote calls and stops any polling loop.
func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.poller != nil {
		m.poller.Stop()
	}
}

// Submit starts a new session from IDLE or FAILED. The session log is
// cleared and metadata fetching begins in the background.
func (m *Manager) Submit(in Input) error {
	if in.URL == "" && in.FilePath == "" {
		return ErrNoInput
	}

	m.mu.Lock()
	if m.status != reel.StatusIdle && m.status != reel.StatusFailed {
		m.mu.Unlock()
		return ErrBusy
	}

	m.epoch++
	epoch := m.epoch
	sessionID := reel.NewID()
	m.sessionID = sessionID
	m.meta = nil
	m.clips = nil
	m.activeClip = 0
	m.log = NewLog()
	m.status = reel.StatusFetchingMetadata

	source := in.URL
	if source == "" {
		source = in.Filename
	}
	m.log.Append("AI Scanning: " + source)
	m.notifyLocked()
	m.mu.Unlock()

	m.logger.Info("session started", "session_id", sessionID, "url", in.URL, "file", in.Filename)

	go m.run(epoch, in)
	return nil
}

// Reset returns a COMPLETED session to IDLE, discarding clips, metadata,
// selection and log. The next submission starts a fresh session.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != reel.StatusCompleted {
		return ErrNotCompleted
	}

	m.epoch++
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
	m.sessionID = ""
	m.status = reel.StatusIdle
	m.meta = nil
	m.clips = nil
	m.activeClip = 0
	m.log = NewLog()
	m.notifyLocked()
	return nil
}

// SelectClip changes the active clip. Selection never alters status or the
// clip sequence.
func (m *Manager) SelectClip(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.clips) {
		return ErrClipIndex
	}
	m.activeClip = index
	m.notifyLocked()
	return nil
}

// Translate rewrites the completed session's captions into targetLang.
// Translation is an enhancement: it never fails, at worst the clips stay
// untranslated.
func (m *Manager) Translate(targetLang string) error {
	m.mu.Lock()
	if m.status != reel.StatusCompleted || len(m.clips) == 0 {
		m.mu.Unlock()
		return ErrNotCompleted
	}
	epoch := m.epoch
	clips := make([]reel.HighlightClip, len(m.clips))
	copy(clips, m.clips)
	m.mu.Unlock()

	translated := m.highlights.TranslateCaptions(m.ctx, clips, targetLang)

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.status != reel.StatusCompleted {
		return nil
	}
	m.clips = translated
	m.log.Append("Captions translated to " + targetLang)
	m.notifyLocked()
	return nil
}

// SetBackendURL updates the job server base URL used by the next remote
// submission.
func (m *Manager) SetBackendURL(u string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u != "" {
		m.backendURL = u
		m.notifyLocked()
	}
}

// SetDemoMode toggles simulation mode for this and subsequent sessions.
func (m *Manager) SetDemoMode(demo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demoMode = demo
	m.notifyLocked()
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a listener that receives a snapshot after every state
// change. The returned function unsubscribes; it is safe to call once.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

func (m *Manager) snapshotLocked() Snapshot {
	clips := make([]reel.HighlightClip, len(m.clips))
	copy(clips, m.clips)

	var meta *reel.VideoMetadata
	if m.meta != nil {
		cp := *m.meta
		meta = &cp
	}

	return Snapshot{
		SessionID:  m.sessionID,
		Status:     m.status,
		Metadata:   meta,
		Clips:      clips,
		ActiveClip: m.activeClip,
		Log:        m.log.Entries(),
		DemoMode:   m.demoMode,
		BackendURL: m.backendURL,
	}
}

func (m *Manager) notifyLocked() {
	if len(m.subscribers) == 0 {
		return
	}
	snap := m.snapshotLocked()
	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber, drop this update
		}
	}
}

// run drives one session from metadata fetch to completion. Every mutation
// re-checks the launch epoch under the lock.
func (m *Manager) run(epoch uint64, in Input) {
	vc := m.highlights.FetchVideoContext(m.ctx, in.URL)

	name := vc.Name
	if name == "" {
		name = "Cloud Video"
	}
	duration := vc.Duration
	if duration <= 0 {
		duration = 60
	}
	meta := reel.VideoMetadata{
		ID:          "vid_" + reel.NewID(),
		Name:        name,
		Duration:    duration,
		Width:       1920,
		Height:      1080,
		OriginalURL: in.URL,
		Description: vc.Description,
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.meta = &meta
	demo := m.demoMode
	baseURL := m.backendURL
	m.notifyLocked()
	m.mu.Unlock()

	// File submissions are never sent to the backend in current scope.
	if demo || in.URL == "" {
		m.runDemo(epoch, meta)
		return
	}

	resp, err := m.jobs.SubmitURL(m.ctx, baseURL, in.URL)
	if err != nil {
		m.logger.Warn("backend submission failed, falling back to demo mode", "error", err)

		fallback := reel.VideoMetadata{
			ID:          "demo",
			Name:        "Sample Clip",
			Duration:    60,
			Width:       1920,
			Height:      1080,
			OriginalURL: in.URL,
		}

		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			return
		}
		m.log.Append("Remote Connection Failed. Reverting to Demo...")
		// Sticky fallback: subsequent sessions stay in demo mode until the
		// user flips the toggle back.
		m.demoMode = true
		m.meta = &fallback
		m.notifyLocked()
		m.mu.Unlock()

		m.runDemo(epoch, fallback)
		return
	}

	m.startPolling(epoch, baseURL, resp.JobID)
}

// runDemo is the simulated path: fabricated progress around a real highlight
// analysis call, with a deterministic placeholder when the analysis fails.
// COMPLETED is always reached with at least one renderable clip.
func (m *Manager) runDemo(epoch uint64, meta reel.VideoMetadata) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.log.Append("DEMO MODE ACTIVE (Simulated)")
	m.status = reel.StatusAnalyzing
	m.notifyLocked()
	m.mu.Unlock()

	m.sleep(m.analyzeDelay)

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.log.Append("Gemini AI identifying high-impact segments...")
	m.notifyLocked()
	m.mu.Unlock()

	clips, err := m.highlights.AnalyzeHighlights(m.ctx, meta, defaultLanguage)
	if err != nil {
		m.logger.Warn("highlight analysis failed, installing placeholder clip", "error", err)

		m.mu.Lock()
		if epoch != m.epoch {
			m.mu.Unlock()
			return
		}
		m.log.Append("AI Error: Falling back to sample data")
		m.clips = []reel.HighlightClip{m.placeholderClip()}
		m.activeClip = 0
		m.status = reel.StatusCompleted
		m.notifyLocked()
		m.mu.Unlock()
		return
	}

	// The AI never returns a playable URL in simulation; point every clip at
	// the known-good sample resource.
	for i := range clips {
		clips[i].VideoURL = m.sampleVideoURL
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.clips = clips
	m.activeClip = 0
	m.status = reel.StatusReframing
	m.log.Append("Reframing to vertical 9:16...")
	m.notifyLocked()
	m.mu.Unlock()

	m.sleep(m.reframeDelay)

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.status = reel.StatusCompleted
	m.log.Append("Demo processing finished!")
	m.notifyLocked()
	m.mu.Unlock()
}

// startPolling begins the backend polling loop for jobID, superseding any
// previous poller so at most one loop runs per session.
func (m *Manager) startPolling(epoch uint64, baseURL, jobID string) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	if m.poller != nil {
		m.poller.Stop()
	}
	p := newPoller(m.pollInterval)
	m.poller = p
	m.status = reel.StatusProcessing
	m.log.Append("Backend job accepted: " + jobID)
	m.notifyLocked()
	m.mu.Unlock()

	go m.pollLoop(epoch, p, baseURL, jobID)
}

func (m *Manager) pollLoop(epoch uint64, p *poller, baseURL, jobID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			resp, err := m.jobs.PollStatus(m.ctx, baseURL, jobID)
			if err != nil {
				// Intermittent server disconnects are expected; the next
				// tick retries.
				m.logger.Debug("poll attempt failed", "job_id", jobID, "error", err)
				continue
			}

			if resp.Status == reel.JobCompleted {
				m.mu.Lock()
				if epoch == m.epoch {
					clips := resp.Clips
					if clips == nil {
						clips = []reel.HighlightClip{}
					}
					m.clips = clips
					m.activeClip = 0
					m.status = reel.StatusCompleted
					m.log.Append("Processing complete!")
					m.notifyLocked()
				}
				m.mu.Unlock()
				p.Stop()
				return
			}

			m.mu.Lock()
			if epoch == m.epoch {
				m.log.Append("Server: " + resp.Status)
				m.notifyLocked()
			}
			m.mu.Unlock()
		}
	}
}

// sleep pauses the demo path without outliving agent shutdown.
func (m *Manager) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-m.ctx.Done():
	}
}

func (m *Manager) placeholderClip() reel.HighlightClip {
	return reel.HighlightClip{
		ID:               "demo",
		Title:            "Sample Viral Reel",
		StartTime:        0,
		EndTime:          10,
		EngagementScore:  99,
		SubjectPositionX: 50,
		Captions: []reel.CaptionSegment{
			{StartTime: 0, EndTime: 5, Text: "AI REPURPOSING READY!", IsHighlight: true},
		},
		Description: "A placeholder clip for mobile testing.",
		VideoURL:    m.sampleVideoURL,
	}
}
