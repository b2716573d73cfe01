// Package genai wraps the Gemini generateContent API for metadata lookup,
// highlight analysis and caption translation. Responses are requested as
// structured JSON constrained by a response schema; returned field values
// are trusted as-is.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-3-flash-preview"
)

// Fallback metadata substituted when the context lookup fails. The session
// must always receive a best-effort guess rather than an error.
const (
	FallbackName        = "Unidentified Video"
	FallbackDuration    = 60
	FallbackDescription = "A video from the provided URL."
	FallbackCategory    = "vlog"
)

// Client calls the Gemini REST API. All operations are single-shot with no
// retry; the transport timeout is the only bound on call duration.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Gemini client. An empty baseURL or model selects
// the public endpoint and the default model.
func NewClient(baseURL, apiKey, model string, logger *slog.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: base,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type tool struct {
	GoogleSearch *googleSearch `json:"googleSearch,omitempty"`
}

type googleSearch struct{}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// contextSchema constrains the URL lookup to the four fields the session
// needs to seed its metadata record.
var contextSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"name": {"type": "STRING"},
		"duration": {"type": "NUMBER"},
		"description": {"type": "STRING"},
		"category": {"type": "STRING"}
	},
	"required": ["name", "duration", "description", "category"]
}`)

// highlightSchema constrains the analysis response to an array of clips with
// all fields the preview requires.
var highlightSchema = json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"id": {"type": "STRING"},
			"title": {"type": "STRING"},
			"startTime": {"type": "NUMBER"},
			"endTime": {"type": "NUMBER"},
			"engagementScore": {"type": "NUMBER"},
			"subjectPositionX": {"type": "NUMBER"},
			"description": {"type": "STRING"},
			"captions": {
				"type": "ARRAY",
				"items": {
					"type": "OBJECT",
					"properties": {
						"startTime": {"type": "NUMBER"},
						"endTime": {"type": "NUMBER"},
						"text": {"type": "STRING"},
						"isHighlight": {"type": "BOOLEAN"}
					},
					"required": ["startTime", "endTime", "text"]
				}
			}
		},
		"required": ["id", "title", "startTime", "endTime", "engagementScore", "subjectPositionX", "captions"]
	}
}`)

// FetchVideoContext asks Gemini to identify the video behind a URL. It never
// fails: network errors, empty responses and parse errors all degrade to a
// deterministic fallback record.
func (c *Client) FetchVideoContext(ctx context.Context, videoURL string) reel.VideoContext {
	prompt := fmt.Sprintf(`Identify the video content at this URL: %s.
Provide the title, likely duration, a detailed description, and a category (e.g., 'podcast', 'nature', 'action', 'tutorial', 'vlog').`, videoURL)

	text, err := c.generateText(ctx, prompt, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   contextSchema,
	}, []tool{{GoogleSearch: &googleSearch{}}})
	if err != nil {
		c.logger.Warn("metadata fetch degraded, using fallback", "url", videoURL, "error", err)
		return fallbackContext()
	}

	var vc reel.VideoContext
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &vc); err != nil {
		c.logger.Warn("metadata response unparseable, using fallback", "url", videoURL, "error", err)
		return fallbackContext()
	}
	return vc
}

// AnalyzeHighlights requests exactly 3 candidate clips for the given video.
// Unlike FetchVideoContext this propagates failures: the caller owns the
// fallback behavior.
func (c *Client) AnalyzeHighlights(ctx context.Context, meta reel.VideoMetadata, targetLanguage string) ([]reel.HighlightClip, error) {
	if targetLanguage == "" {
		targetLanguage = "English"
	}

	prompt := fmt.Sprintf(`Analyze the following video and identify 3 potential viral highlight clips for social media.
Video Name: %s
Video Duration: %.0fs
Context: %s
Target Language: %s

For each clip, provide:
1. A catchy title.
2. Start and end timestamps within the range [0, %.0f].
3. An engagement score (0-100).
4. The subject's horizontal center position (0-100) for 9:16 reframing.
5. A list of captions with timestamps and a flag if a word should be "highlighted".
6. A short description of why this moment is engaging.`,
		meta.Name, meta.Duration, meta.Description, targetLanguage, meta.Duration)

	text, err := c.generateText(ctx, prompt, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   highlightSchema,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("highlight analysis: %w", err)
	}

	var clips []reel.HighlightClip
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &clips); err != nil {
		return nil, fmt.Errorf("parse highlight response: %w", err)
	}
	return clips, nil
}

// TranslateCaptions asks Gemini to translate the clip captions in place,
// preserving structure. Translation is an enhancement: any failure returns
// the original clips unchanged.
func (c *Client) TranslateCaptions(ctx context.Context, clips []reel.HighlightClip, targetLang string) []reel.HighlightClip {
	input, err := json.Marshal(clips)
	if err != nil {
		return clips
	}

	prompt := fmt.Sprintf(`Translate the following video captions into %s.
Maintain the tone, emojis, and emphasis.
Return the exact same JSON structure.
Input JSON: %s`, targetLang, input)

	text, err := c.generateText(ctx, prompt, &generationConfig{
		ResponseMIMEType: "application/json",
	}, nil)
	if err != nil {
		c.logger.Warn("caption translation failed, keeping originals", "lang", targetLang, "error", err)
		return clips
	}

	var translated []reel.HighlightClip
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &translated); err != nil {
		return clips
	}
	return translated
}

func (c *Client) generateText(ctx context.Context, prompt string, cfg *generationConfig, tools []tool) (string, error) {
	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		Tools:            tools,
		GenerationConfig: cfg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorEnvelope
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	text := extractText(out)
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func fallbackContext() reel.VideoContext {
	return reel.VideoContext{
		Name:        FallbackName,
		Duration:    FallbackDuration,
		Description: FallbackDescription,
		Category:    FallbackCategory,
	}
}
