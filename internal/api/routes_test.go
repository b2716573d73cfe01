package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/reeldeck/reeldeck-agent/internal/media"
	"github.com/reeldeck/reeldeck-agent/internal/preview"
	"github.com/reeldeck/reeldeck-agent/internal/reel"
	"github.com/reeldeck/reeldeck-agent/internal/session"
)

type stubHighlights struct {
	analyzeFn func(meta reel.VideoMetadata, lang string) ([]reel.HighlightClip, error)
}

func (s *stubHighlights) FetchVideoContext(ctx context.Context, videoURL string) reel.VideoContext {
	return reel.VideoContext{Name: "Stub Video", Duration: 90}
}

func (s *stubHighlights) AnalyzeHighlights(ctx context.Context, meta reel.VideoMetadata, lang string) ([]reel.HighlightClip, error) {
	if s.analyzeFn != nil {
		return s.analyzeFn(meta, lang)
	}
	clips := make([]reel.HighlightClip, 3)
	for i := range clips {
		clips[i] = reel.HighlightClip{
			ID:        fmt.Sprintf("c%d", i+1),
			Title:     fmt.Sprintf("Clip %d", i+1),
			StartTime: float64(i * 10),
			EndTime:   float64(i*10 + 8),
			Captions:  []reel.CaptionSegment{{StartTime: 0, EndTime: 4, Text: "hi", IsHighlight: true}},
		}
	}
	return clips, nil
}

func (s *stubHighlights) TranslateCaptions(ctx context.Context, clips []reel.HighlightClip, lang string) []reel.HighlightClip {
	out := make([]reel.HighlightClip, len(clips))
	copy(out, clips)
	for i := range out {
		segs := make([]reel.CaptionSegment, len(out[i].Captions))
		copy(segs, out[i].Captions)
		for j := range segs {
			segs[j].Text = segs[j].Text + " (" + lang + ")"
		}
		out[i].Captions = segs
	}
	return out
}

type stubJobs struct{}

func (stubJobs) SubmitURL(ctx context.Context, baseURL, videoURL string) (*reel.BackendProcessResponse, error) {
	return &reel.BackendProcessResponse{JobID: "job-1", Status: "queued"}, nil
}

func (stubJobs) SubmitUpload(ctx context.Context, baseURL, filename string, file io.Reader) (*reel.BackendProcessResponse, error) {
	return &reel.BackendProcessResponse{JobID: "job-up", Status: "queued"}, nil
}

func (stubJobs) PollStatus(ctx context.Context, baseURL, jobID string) (*reel.BackendProcessResponse, error) {
	return &reel.BackendProcessResponse{JobID: jobID, Status: reel.JobCompleted}, nil
}

func newTestServer(t *testing.T, hl session.HighlightService) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if hl == nil {
		hl = &stubHighlights{}
	}
	manager := session.NewManager(session.Config{
		Highlights:     hl,
		Jobs:           stubJobs{},
		Logger:         logger,
		BackendURL:     "http://backend.test",
		DemoMode:       true,
		SampleVideoURL: "http://sample.test/video.mp4",
		AnalyzeDelay:   time.Millisecond,
		ReframeDelay:   time.Millisecond,
		PollInterval:   10 * time.Millisecond,
	})
	t.Cleanup(manager.Shutdown)

	store, err := media.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	router := NewRouter(ServerConfig{
		Port:      0,
		Sessions:  manager,
		Player:    preview.NewPlayer(),
		Media:     store,
		Logger:    logger,
		StartTime: time.Now(),
		Version:   "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func waitCompleted(t *testing.T, baseURL string) SessionResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/session")
		if err != nil {
			t.Fatalf("GET /session: %v", err)
		}
		s := decode[SessionResponse](t, resp)
		if s.Status == "COMPLETED" {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for COMPLETED")
	return SessionResponse{}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}

	h := decode[HealthResponse](t, resp)
	if h.Status != "ok" || h.Version != "test" {
		t.Errorf("health = %+v", h)
	}
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("ReelDeck")) {
		t.Error("dashboard page missing expected content")
	}
}

func TestSubmit_Validation(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/submit", SubmitRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	e := decode[ErrorResponse](t, resp)
	if e.Code != "BAD_REQUEST" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestSubmit_AndSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/v.mp4"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	sub := decode[SubmitResponse](t, resp)
	if sub.SessionID == "" {
		t.Error("missing session_id")
	}

	s := waitCompleted(t, srv.URL)
	if len(s.Clips) != 3 {
		t.Fatalf("clips = %d, want 3", len(s.Clips))
	}
	if s.ActiveClip != 0 {
		t.Errorf("active_clip = %d, want 0", s.ActiveClip)
	}
	if len(s.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(s.Steps))
	}
	for i, st := range s.Steps {
		if st.State != "done" {
			t.Errorf("step[%d] = %s, want done", i, st.State)
		}
	}
	for _, c := range s.Clips {
		if c.VideoURL != "http://sample.test/video.mp4" {
			t.Errorf("clip video_url = %q", c.VideoURL)
		}
	}
}

func TestSubmit_Busy(t *testing.T) {
	block := make(chan struct{})
	hl := &stubHighlights{
		analyzeFn: func(meta reel.VideoMetadata, lang string) ([]reel.HighlightClip, error) {
			<-block
			return nil, fmt.Errorf("unused")
		},
	}
	srv := newTestServer(t, hl)
	defer close(block)

	resp := postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/a"})
	resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for {
		resp = postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/b"})
		if resp.StatusCode == http.StatusConflict {
			break
		}
		resp.Body.Close()
		if time.Now().After(deadline) {
			t.Fatal("second submit never conflicted")
		}
		time.Sleep(2 * time.Millisecond)
	}
	e := decode[ErrorResponse](t, resp)
	if e.Code != "CONFLICT" {
		t.Errorf("code = %q, want CONFLICT", e.Code)
	}
}

func TestSelectClip_AndPlayer(t *testing.T) {
	srv := newTestServer(t, nil)

	postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/v"}).Body.Close()
	waitCompleted(t, srv.URL)

	resp := postJSON(t, srv.URL+"/session/clip", SelectClipRequest{Index: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	s := decode[SessionResponse](t, resp)
	if s.ActiveClip != 1 {
		t.Errorf("active_clip = %d, want 1", s.ActiveClip)
	}

	resp = postJSON(t, srv.URL+"/session/clip", SelectClipRequest{Index: 9})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range select status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// The selected clip is bound to the player; a timeupdate inside the first
	// caption window reports it back.
	resp = postJSON(t, srv.URL+"/player/event", PlayerEventRequest{Type: "timeupdate", Time: 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("player event status = %d", resp.StatusCode)
	}
	p := decode[PlayerResponse](t, resp)
	if p.Caption == nil || p.Caption.Text != "hi" {
		t.Errorf("caption = %+v, want first segment", p.Caption)
	}

	resp, err := http.Get(srv.URL + "/player/caption")
	if err != nil {
		t.Fatalf("GET caption: %v", err)
	}
	c := decode[CaptionResponse](t, resp)
	if c.Text != "hi" || !c.IsHighlight {
		t.Errorf("caption = %+v", c)
	}
}

func TestPlayerEvent_ToggleAndUnknown(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/player/event", PlayerEventRequest{Type: "toggle"})
	p := decode[PlayerResponse](t, resp)
	if !p.Intent {
		t.Error("first toggle should request playback")
	}

	resp = postJSON(t, srv.URL+"/player/event", PlayerEventRequest{Type: "rewind"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown event", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTranslate(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/session/translate", TranslateRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without language", resp.StatusCode)
	}
	resp.Body.Close()

	postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/v"}).Body.Close()
	waitCompleted(t, srv.URL)

	resp = postJSON(t, srv.URL+"/session/translate", TranslateRequest{Language: "Spanish"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	s := decode[SessionResponse](t, resp)
	if got := s.Clips[0].Captions[0].Text; got != "hi (Spanish)" {
		t.Errorf("caption = %q, want translated", got)
	}
}

func TestReset(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/session/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("POST reset: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409 from IDLE", resp.StatusCode)
	}
	resp.Body.Close()

	postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/v"}).Body.Close()
	waitCompleted(t, srv.URL)

	resp, err = http.Post(srv.URL+"/session/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("POST reset: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	r2, err := http.Get(srv.URL + "/session")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	s := decode[SessionResponse](t, r2)
	if s.Status != "IDLE" || len(s.Clips) != 0 {
		t.Errorf("after reset: status = %s, clips = %d", s.Status, len(s.Clips))
	}
}

func TestSettings(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/settings")
	if err != nil {
		t.Fatalf("GET settings: %v", err)
	}
	got := decode[SettingsResponse](t, resp)
	if got.BackendURL != "http://backend.test" || !got.DemoMode {
		t.Errorf("settings = %+v", got)
	}

	off := false
	resp = postJSON(t, srv.URL+"/settings", SettingsRequest{BackendURL: "http://10.0.0.2:8000", DemoMode: &off})
	got = decode[SettingsResponse](t, resp)
	if got.BackendURL != "http://10.0.0.2:8000" || got.DemoMode {
		t.Errorf("settings after update = %+v", got)
	}
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "clip.mp4")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("fake video bytes"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST upload: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	up := decode[UploadResponse](t, resp)
	if up.MediaID == "" || up.SessionID == "" {
		t.Errorf("upload response = %+v", up)
	}

	waitCompleted(t, srv.URL)

	// The stored file is served back with range support.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/media/"+up.MediaID, nil)
	req.Header.Set("Range", "bytes=0-3")
	mr, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET media: %v", err)
	}
	defer mr.Body.Close()
	if mr.StatusCode != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", mr.StatusCode)
	}
	body, _ := io.ReadAll(mr.Body)
	if string(body) != "fake" {
		t.Errorf("body = %q, want first four bytes", body)
	}
}

func TestMedia_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/media/nope")
	if err != nil {
		t.Fatalf("GET media: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWebSocket_PushesSnapshots(t *testing.T) {
	srv := newTestServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any submission.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first SessionResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.Status != "IDLE" {
		t.Errorf("initial status = %s, want IDLE", first.Status)
	}

	postJSON(t, srv.URL+"/submit", SubmitRequest{URL: "https://example.com/v"}).Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var s SessionResponse
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("read update: %v", err)
		}
		if s.Status == "COMPLETED" {
			if len(s.Clips) != 3 {
				t.Errorf("clips = %d, want 3", len(s.Clips))
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("never saw COMPLETED over websocket")
		}
	}
}
