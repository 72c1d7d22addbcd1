package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the pipeline and its collaborators consume.
// Values are sourced from the environment (with .env support); the pipeline
// itself never reads the environment directly.
type Config struct {
	// ListenAddr overrides the -port flag when PORT is set.
	ListenAddr string

	// Gemini
	GeminiAPIKey      string
	GeminiModel       string
	GeminiVisionModel string
	LLMRPS            float64
	LLMBurst          int

	// Google Custom Search
	GoogleAPIKey    string
	GoogleCSEID     string
	MaxImageResults int
	ImageSearchSafe string
	ImageSearchRPS  float64

	// Workflow
	MaxConcepts         int
	ConfidenceThreshold float64
	ConceptDelay        time.Duration
	RoadmapDelay        time.Duration
	WorkflowTimeout     time.Duration

	// Storage
	StagingDir        string
	StateSnapshotPath string
	StateDatabaseURL  string
	Staging           StagingS3Config
}

// StagingS3Config enables object-storage staging of uploaded documents when an
// endpoint is configured. Otherwise documents resolve against StagingDir.
type StagingS3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:        listenAddr(),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", getEnv("GEMINI_MODEL", "gemini-2.0-flash")),
		LLMRPS:            getFloat("LLM_RPS", 0),
		LLMBurst:          getInt("LLM_BURST", 0),

		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		GoogleCSEID:     os.Getenv("GOOGLE_CSE_ID"),
		MaxImageResults: getInt("MAX_IMAGE_RESULTS", 2),
		ImageSearchSafe: getEnv("IMAGE_SEARCH_SAFE", "active"),
		ImageSearchRPS:  getFloat("IMAGE_SEARCH_RPS", 5),

		MaxConcepts:         getInt("MAX_CONCEPTS_PER_REQUEST", 10),
		ConfidenceThreshold: getFloat("CONCEPT_CONFIDENCE_THRESHOLD", 0.6),
		ConceptDelay:        getMillis("CONCEPT_DELAY_MS", 50*time.Millisecond),
		RoadmapDelay:        getMillis("ROADMAP_DELAY_MS", 100*time.Millisecond),
		WorkflowTimeout:     getSeconds("WORKFLOW_TIMEOUT_S", 300*time.Second),

		StagingDir:        getEnv("STAGING_DIR", "tmp"),
		StateSnapshotPath: getEnv("STATE_SNAPSHOT_PATH", "tmp/workflow_state.json"),
		StateDatabaseURL:  os.Getenv("STATE_DATABASE_URL"),
		Staging: StagingS3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("STAGING_S3_ENDPOINT")),
			Region:    getEnv("STAGING_S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("STAGING_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("STAGING_S3_SECRET_KEY"),
			Bucket:    getEnv("STAGING_S3_BUCKET", "lecturelens-staging"),
			UseSSL:    getBool("STAGING_S3_USE_SSL", false),
		},
	}
}

// Validate reports the credentials required for a live (non-fake) run.
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.GoogleCSEID == "" {
		missing = append(missing, "GOOGLE_CSE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func listenAddr() string {
	p := strings.TrimSpace(os.Getenv("PORT"))
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getMillis(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}

func getSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
