// Package config provides configuration management for the ReelDeck Agent.
// Configuration is loaded from environment variables (optionally seeded from
// a .env file) with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort           = 8790
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".reeldeck"
	DefaultBackendURL     = "http://localhost:8000"
	DefaultGeminiModel    = "gemini-3-flash-preview"
	DefaultSampleVideoURL = "https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4"

	// Environment variable names
	EnvPort           = "REELDECK_PORT"
	EnvLogLevel       = "REELDECK_LOG_LEVEL"
	EnvDataDir        = "REELDECK_DATA_DIR"
	EnvBackendURL     = "REELDECK_BACKEND_URL"
	EnvDemoMode       = "REELDECK_DEMO_MODE"
	EnvHeadless       = "REELDECK_HEADLESS"
	EnvSampleVideoURL = "REELDECK_SAMPLE_VIDEO_URL"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiModel    = "REELDECK_GEMINI_MODEL"
	EnvGeminiBaseURL  = "REELDECK_GEMINI_BASE_URL"

	// Demo path pacing
	DefaultAnalyzeDelayMs = 1500
	DefaultReframeDelayMs = 2000

	// Backend poll cadence
	DefaultPollIntervalMs = 2000
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	UploadsDir() string
	BackendURL() string
	DemoMode() bool
	Headless() bool
	SampleVideoURL() string
	GeminiAPIKey() string
	GeminiModel() string
	GeminiBaseURL() string
	AnalyzeDelay() time.Duration
	ReframeDelay() time.Duration
	PollInterval() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	backendURL     string
	demoMode       bool
	headless       bool
	sampleVideoURL string

	geminiAPIKey  string
	geminiModel   string
	geminiBaseURL string
}

// New creates a new EnvConfig with defaults and environment variable
// overrides. A .env file in the working directory is honored when present.
func New() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		backendURL:     DefaultBackendURL,
		demoMode:       true,
		sampleVideoURL: DefaultSampleVideoURL,
		geminiModel:    DefaultGeminiModel,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if bu := os.Getenv(EnvBackendURL); bu != "" {
		cfg.backendURL = bu
	}

	if dm := os.Getenv(EnvDemoMode); dm != "" {
		demo, err := strconv.ParseBool(dm)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDemoMode, err)
		}
		cfg.demoMode = demo
	}

	if hl := os.Getenv(EnvHeadless); hl != "" {
		headless, err := strconv.ParseBool(hl)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if sv := os.Getenv(EnvSampleVideoURL); sv != "" {
		cfg.sampleVideoURL = sv
	}

	cfg.geminiAPIKey = os.Getenv(EnvGeminiAPIKey)

	if gm := os.Getenv(EnvGeminiModel); gm != "" {
		cfg.geminiModel = gm
	}

	cfg.geminiBaseURL = os.Getenv(EnvGeminiBaseURL)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// UploadsDir returns the directory where uploaded videos are stored
func (c *EnvConfig) UploadsDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// BackendURL returns the initial backend job server base URL. The value is
// user-editable at runtime through the session settings.
func (c *EnvConfig) BackendURL() string {
	return c.backendURL
}

// DemoMode returns whether sessions start in simulation mode
func (c *EnvConfig) DemoMode() bool {
	return c.demoMode
}

// Headless returns whether the system tray is disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// SampleVideoURL returns the known-good media resource used for demo clips
func (c *EnvConfig) SampleVideoURL() string {
	return c.sampleVideoURL
}

// GeminiAPIKey returns the AI service credential
func (c *EnvConfig) GeminiAPIKey() string {
	return c.geminiAPIKey
}

// GeminiModel returns the Gemini model identifier
func (c *EnvConfig) GeminiModel() string {
	return c.geminiModel
}

// GeminiBaseURL returns an override for the Gemini API endpoint, empty for
// the public endpoint
func (c *EnvConfig) GeminiBaseURL() string {
	return c.geminiBaseURL
}

func (c *EnvConfig) AnalyzeDelay() time.Duration {
	return DefaultAnalyzeDelayMs * time.Millisecond
}

func (c *EnvConfig) ReframeDelay() time.Duration {
	return DefaultReframeDelayMs * time.Millisecond
}

func (c *EnvConfig) PollInterval() time.Duration {
	return DefaultPollIntervalMs * time.Millisecond
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
