package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the backend, loaded once at
// startup from environment variables.
type Config struct {
	// HTTP server.
	Port           string
	MaxUploadBytes int64

	// Gemini.
	GeminiAPIKey string
	GeminiModel  string

	// Mistral OCR.
	MistralAPIKey   string
	MistralBaseURL  string
	MistralOCRModel string

	// Layout conversion service (docling-serve deployment).
	DoclingBaseURL string

	// GCP. An empty project ID switches persistence to the in-memory store;
	// an empty bucket disables raw-upload archival.
	GCPProjectID string
	RawBucket    string

	// Firestore collection names.
	DocumentsCollection string
	SessionsCollection  string
	MessagesCollection  string

	// Classifier thresholds. The defaults are behavioral policy constants;
	// changing them changes which documents take the direct-summary branch.
	ClassifierSamplePages  int
	ClassifierTextFloor    float64
	ClassifierImageDensity float64
	ClassifierTextCeiling  float64

	// OCR response parsing.
	OCRFallbackFloor int

	// Gemini file-processing poll loop.
	FilePollInterval time.Duration
	FilePollTimeout  time.Duration

	// Chat.
	ChatHistoryWindow int
}

// Load reads configuration from the environment and validates required keys.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 50*1024*1024),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MistralAPIKey:   getEnv("MISTRAL_API_KEY", ""),
		MistralBaseURL:  getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		MistralOCRModel: getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),

		DoclingBaseURL: getEnv("DOCLING_BASE_URL", "http://localhost:5001"),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		RawBucket:    getEnv("RAW_DOCUMENTS_BUCKET", ""),

		DocumentsCollection: getEnv("DOCUMENTS_COLLECTION", "documents"),
		SessionsCollection:  getEnv("SESSIONS_COLLECTION", "chat_sessions"),
		MessagesCollection:  getEnv("MESSAGES_COLLECTION", "chat_messages"),

		ClassifierSamplePages:  getEnvAsInt("CLASSIFIER_SAMPLE_PAGES", 3),
		ClassifierTextFloor:    getEnvAsFloat("CLASSIFIER_TEXT_FLOOR", 50),
		ClassifierImageDensity: getEnvAsFloat("CLASSIFIER_IMAGE_DENSITY", 0.5),
		ClassifierTextCeiling:  getEnvAsFloat("CLASSIFIER_TEXT_CEILING", 100),

		OCRFallbackFloor: getEnvAsInt("OCR_FALLBACK_FLOOR", 100),

		FilePollInterval: getEnvAsDuration("FILE_POLL_INTERVAL", 2*time.Second),
		FilePollTimeout:  getEnvAsDuration("FILE_POLL_TIMEOUT", 2*time.Minute),

		ChatHistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required keys are present and bounds make sense.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable must be set")
	}
	if c.ClassifierSamplePages < 1 {
		return fmt.Errorf("CLASSIFIER_SAMPLE_PAGES must be at least 1, got %d", c.ClassifierSamplePages)
	}
	if c.FilePollInterval <= 0 || c.FilePollTimeout <= 0 {
		return fmt.Errorf("file poll interval and timeout must be positive")
	}
	if c.ChatHistoryWindow < 0 {
		return fmt.Errorf("CHAT_HISTORY_WINDOW cannot be negative, got %d", c.ChatHistoryWindow)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
