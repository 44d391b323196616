package config

import (
	"os"
	"testing"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	os.Unsetenv("AIS_STREAM_API_KEY")
	if _, err := Load(); err != ErrMissingAPIKey {
		t.Errorf("Load() without AIS_STREAM_API_KEY: err = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	os.Setenv("AIS_STREAM_API_KEY", "test-key")
	defer os.Unsetenv("AIS_STREAM_API_KEY")
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want default :8080", cfg.HTTPAddr)
	}
	if cfg.StreamURL != "wss://stream.aisstream.io/v0/stream" {
		t.Errorf("StreamURL = %q, want the default upstream URL", cfg.StreamURL)
	}
}
