// Package reel defines the domain model shared by the orchestrator, the
// AI client and the backend job client. Field tags follow the external wire
// format (camelCase) used by both the Gemini structured output and the
// backend job server.
package reel

import "github.com/google/uuid"

// ProcessStatus is the session state. Exactly one value is current at a
// time; transitions are driven by the session manager.
type ProcessStatus string

const (
	StatusIdle               ProcessStatus = "IDLE"
	StatusFetchingMetadata   ProcessStatus = "FETCHING_METADATA"
	StatusProcessing         ProcessStatus = "PROCESSING"
	StatusAnalyzing          ProcessStatus = "ANALYZING"
	StatusReframing          ProcessStatus = "REFRAMING"
	StatusGeneratingCaptions ProcessStatus = "GENERATING_CAPTIONS"
	StatusCompleted          ProcessStatus = "COMPLETED"
	StatusFailed             ProcessStatus = "FAILED"
)

// CaptionSegment is a caption timed relative to its clip. Start and end are
// inclusive bounds in seconds.
type CaptionSegment struct {
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Text        string  `json:"text"`
	IsHighlight bool    `json:"isHighlight,omitempty"`
}

// HighlightClip is one candidate highlight of the source video.
type HighlightClip struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	StartTime        float64          `json:"startTime"`
	EndTime          float64          `json:"endTime"`
	EngagementScore  float64          `json:"engagementScore"`
	SubjectPositionX float64          `json:"subjectPositionX"`
	Captions         []CaptionSegment `json:"captions"`
	Description      string           `json:"description"`
	VideoURL         string           `json:"videoUrl"`
}

// VideoMetadata describes one submitted video. Created once per session and
// immutable afterwards.
type VideoMetadata struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	OriginalURL string  `json:"originalUrl"`
	Description string  `json:"description,omitempty"`
}

// VideoContext is the partial metadata the AI derives from a pasted URL.
type VideoContext struct {
	Name        string  `json:"name"`
	Duration    float64 `json:"duration"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// BackendProcessResponse is the job server's status payload. Status is a
// free-form progress label; only the literal "completed" is terminal.
type BackendProcessResponse struct {
	JobID    string          `json:"jobId"`
	Status   string          `json:"status"`
	Metadata VideoMetadata   `json:"metadata"`
	Clips    []HighlightClip `json:"clips,omitempty"`
}

// JobCompleted is the only backend status string the orchestrator interprets.
const JobCompleted = "completed"

// NewID returns a fresh identifier for sessions, metadata and uploads.
func NewID() string {
	return uuid.NewString()
}
