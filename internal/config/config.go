// Package config resolves the environment configuration shared by the
// ingest CLI and the trigger server.
package config

import (
	"errors"
	"os"
)

// Config carries every externally supplied setting. The store URL and key
// are mandatory; everything else adjusts strategy selection.
type Config struct {
	// StoreURL is the base URL of the Supabase project, without trailing slash.
	StoreURL string
	// StoreKey authenticates REST and edge-function calls. The service role
	// key is preferred over the anon key when both are present.
	StoreKey string

	// TranscribeAPIKey switches transcription to the hosted API when set.
	TranscribeAPIKey string
	// TranscribeAPIURL is the hosted speech-to-text endpoint. Required when
	// TranscribeAPIKey is set.
	TranscribeAPIURL string

	// WhisperBin overrides the local whisper executable name.
	WhisperBin string
	// WhisperModel overrides the local model size (default "base").
	WhisperModel string
}

var ErrMissingStore = errors.New("set SUPABASE_URL and SUPABASE_ANON_KEY (or SUPABASE_SERVICE_ROLE_KEY)")

// Load reads configuration from the environment. It returns ErrMissingStore
// when the store endpoint or credential is absent; callers treat that as
// fatal before any work is attempted.
func Load() (Config, error) {
	cfg := Config{
		StoreURL:         firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL"),
		StoreKey:         firstEnv("SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"),
		TranscribeAPIKey: os.Getenv("TRANSCRIBE_API_KEY"),
		TranscribeAPIURL: os.Getenv("TRANSCRIBE_API_URL"),
		WhisperBin:       os.Getenv("WHISPER_BIN"),
		WhisperModel:     os.Getenv("WHISPER_MODEL"),
	}
	if cfg.StoreURL == "" || cfg.StoreKey == "" {
		return Config{}, ErrMissingStore
	}
	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
