package api

import (
	"github.com/reeldeck/reeldeck-agent/internal/progress"
	"github.com/reeldeck/reeldeck-agent/internal/reel"
	"github.com/reeldeck/reeldeck-agent/internal/session"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type SubmitRequest struct {
	URL string `json:"url"`
}

type SubmitResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type UploadResponse struct {
	SessionID string `json:"session_id"`
	MediaID   string `json:"media_id"`
	Status    string `json:"status"`
}

type SessionResponse struct {
	SessionID  string            `json:"session_id"`
	Status     string            `json:"status"`
	Metadata   *MetadataResponse `json:"metadata,omitempty"`
	Clips      []ClipResponse    `json:"clips"`
	ActiveClip int               `json:"active_clip"`
	Log        []string          `json:"log"`
	DemoMode   bool              `json:"demo_mode"`
	BackendURL string            `json:"backend_url"`
	Steps      []progress.Step   `json:"steps"`
}

type MetadataResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	OriginalURL string  `json:"original_url,omitempty"`
	Description string  `json:"description,omitempty"`
}

type ClipResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	StartTime        float64           `json:"start_time"`
	EndTime          float64           `json:"end_time"`
	EngagementScore  float64           `json:"engagement_score"`
	SubjectPositionX float64           `json:"subject_position_x"`
	Captions         []CaptionResponse `json:"captions"`
	Description      string            `json:"description,omitempty"`
	VideoURL         string            `json:"video_url,omitempty"`
}

type CaptionResponse struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Text        string  `json:"text"`
	IsHighlight bool    `json:"is_highlight,omitempty"`
}

type SelectClipRequest struct {
	Index int `json:"index"`
}

type TranslateRequest struct {
	Language string `json:"language"`
}

type SettingsResponse struct {
	BackendURL string `json:"backend_url"`
	DemoMode   bool   `json:"demo_mode"`
}

type SettingsRequest struct {
	BackendURL string `json:"backend_url,omitempty"`
	DemoMode   *bool  `json:"demo_mode,omitempty"`
}

type PlayerEventRequest struct {
	Type string  `json:"type"`
	Time float64 `json:"time,omitempty"`
}

type PlayerResponse struct {
	Intent  bool             `json:"intent"`
	Playing bool             `json:"playing"`
	Loop    bool             `json:"loop,omitempty"`
	SeekTo  float64          `json:"seek_to,omitempty"`
	Caption *CaptionResponse `json:"caption,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SnapshotToResponse(s session.Snapshot) SessionResponse {
	resp := SessionResponse{
		SessionID:  s.SessionID,
		Status:     string(s.Status),
		Clips:      make([]ClipResponse, len(s.Clips)),
		ActiveClip: s.ActiveClip,
		Log:        s.Log,
		DemoMode:   s.DemoMode,
		BackendURL: s.BackendURL,
		Steps:      progress.Steps(s.Status),
	}
	if s.Metadata != nil {
		resp.Metadata = &MetadataResponse{
			ID:          s.Metadata.ID,
			Name:        s.Metadata.Name,
			Duration:    s.Metadata.Duration,
			Width:       s.Metadata.Width,
			Height:      s.Metadata.Height,
			OriginalURL: s.Metadata.OriginalURL,
			Description: s.Metadata.Description,
		}
	}
	for i, c := range s.Clips {
		resp.Clips[i] = ClipToResponse(c)
	}
	return resp
}

func ClipToResponse(c reel.HighlightClip) ClipResponse {
	resp := ClipResponse{
		ID:               c.ID,
		Title:            c.Title,
		StartTime:        c.StartTime,
		EndTime:          c.EndTime,
		EngagementScore:  c.EngagementScore,
		SubjectPositionX: c.SubjectPositionX,
		Captions:         make([]CaptionResponse, len(c.Captions)),
		Description:      c.Description,
		VideoURL:         c.VideoURL,
	}
	for i, seg := range c.Captions {
		resp.Captions[i] = CaptionToResponse(seg)
	}
	return resp
}

func CaptionToResponse(seg reel.CaptionSegment) CaptionResponse {
	return CaptionResponse{
		StartTime:   seg.StartTime,
		EndTime:     seg.EndTime,
		Text:        seg.Text,
		IsHighlight: seg.IsHighlight,
	}
}
