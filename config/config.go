// Package config loads process configuration from the environment, layered
// on top of an optional .env file — the same load_dotenv()+os.getenv()
// pattern the reference implementation uses at startup.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when AIS_STREAM_API_KEY isn't set.
var ErrMissingAPIKey = errors.New("config: AIS_STREAM_API_KEY is required")

// BoundingBox is a [ [lat1,lon1], [lat2,lon2] ] search box for the upstream
// subscription frame.
type BoundingBox [2][2]float64

// Config holds everything main() needs to wire up the pipeline.
type Config struct {
	StreamAPIKey string
	StreamURL    string
	BoundingBox  BoundingBox
	HTTPAddr     string
	LogLevel     string
	LLMAPIKey    string // accepted for parity with the out-of-scope chat assistant; never read by the pipeline
}

// DefaultBoundingBox covers the San Francisco Bay, matching the reference
// implementation's default subscription area.
var DefaultBoundingBox = BoundingBox{{36.0, -124.0}, {39.0, -121.0}}

// Load reads configuration from the process environment, after loading an
// optional .env file in the working directory (missing .env is not an
// error). Returns ErrMissingAPIKey if AIS_STREAM_API_KEY isn't set.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore error: .env is optional

	cfg := Config{
		StreamAPIKey: os.Getenv("AIS_STREAM_API_KEY"),
		StreamURL:    envOr("AIS_STREAM_URL", "wss://stream.aisstream.io/v0/stream"),
		BoundingBox:  DefaultBoundingBox,
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
	}
	if cfg.StreamAPIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
