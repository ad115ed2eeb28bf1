package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Optional bearer auth; empty disables the middleware.
	APIKey string

	// OCR engine (OpenAI-compatible endpoint, Typhoon OCR by default)
	OCRBaseURL string
	OCRAPIKey  string
	OCRModel   string
	OCRTimeout time.Duration

	// Document classifier
	ClassifierBackend string // "ollama" or "gemini"
	OllamaGenerateURL string
	ClassifierModel   string
	GeminiAPIKey      string
	ClassifierTimeout time.Duration
	ExcerptChars      int

	// Rasterization
	RenderDPI    int
	PdftoppmPath string

	// Upload limits
	MaxUploadBytes int64

	// Search-index sink (configured but not wired into the request path)
	MeiliURL   string
	MeiliIndex string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("API_KEY"),

		OCRBaseURL: envOr("OCR_BASE_URL", "http://localhost:11434/v1"),
		OCRAPIKey:  envOr("OCR_API_KEY", "ollama"),
		OCRModel:   envOr("OCR_MODEL", "scb10x/typhoon-ocr-7b"),
		OCRTimeout: envDuration("OCR_TIMEOUT", 300*time.Second),

		ClassifierBackend: envOr("CLASSIFIER_BACKEND", "ollama"),
		OllamaGenerateURL: envOr("OLLAMA_GENERATE_URL", "http://localhost:11434/api/generate"),
		ClassifierModel:   envOr("CLASSIFIER_MODEL", "llama3.2:latest"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ClassifierTimeout: envDuration("CLASSIFIER_TIMEOUT", 300*time.Second),
		ExcerptChars:      envInt("CLASSIFY_EXCERPT_CHARS", 800),

		RenderDPI:    envInt("RENDER_DPI", 300),
		PdftoppmPath: envOr("PDFTOPPM_PATH", "pdftoppm"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MeiliURL:   os.Getenv("MEILI_URL"),
		MeiliIndex: envOr("MEILI_INDEX", "documents"),
	}

	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 300 * time.Second
	}
	if cfg.ClassifierTimeout <= 0 {
		cfg.ClassifierTimeout = 300 * time.Second
	}
	if cfg.ExcerptChars <= 0 {
		cfg.ExcerptChars = 800
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = 300
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OCRBaseURL == "" {
		return fmt.Errorf("OCR_BASE_URL is required")
	}
	switch c.ClassifierBackend {
	case "ollama":
		if c.OllamaGenerateURL == "" {
			return fmt.Errorf("OLLAMA_GENERATE_URL is required")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown CLASSIFIER_BACKEND %q", c.ClassifierBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
