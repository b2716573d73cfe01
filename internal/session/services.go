package session

import (
	"context"
	"io"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

// HighlightService is the AI boundary the manager depends on. FetchVideoContext
// is best-effort and never fails; AnalyzeHighlights propagates errors so the
// manager can run its fallback; TranslateCaptions degrades to the input.
type HighlightService interface {
	FetchVideoContext(ctx context.Context, videoURL string) reel.VideoContext
	AnalyzeHighlights(ctx context.Context, meta reel.VideoMetadata, targetLanguage string) ([]reel.HighlightClip, error)
	TranslateCaptions(ctx context.Context, clips []reel.HighlightClip, targetLang string) []reel.HighlightClip
}

// JobService is the backend job server boundary. No retry lives behind this
// interface; the manager's polling loop owns retry behavior.
type JobService interface {
	SubmitURL(ctx context.Context, baseURL, videoURL string) (*reel.BackendProcessResponse, error)
	SubmitUpload(ctx context.Context, baseURL, filename string, file io.Reader) (*reel.BackendProcessResponse, error)
	PollStatus(ctx context.Context, baseURL, jobID string) (*reel.BackendProcessResponse, error)
}
