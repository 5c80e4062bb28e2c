// Package transcribe converts an audio file into plain text.
//
// Two strategies exist: a hosted speech-to-text API, chosen when an API
// credential is configured, and a local whisper CLI fallback. The choice is
// made once at startup; having neither available is a configuration error
// fatal to the whole process.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Transcriber converts an audio file to plain text. An empty result is a
// valid return here; the orchestrator decides what to do with it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Options selects and parameterizes the strategy.
type Options struct {
	APIKey string
	APIURL string

	WhisperBin   string
	WhisperModel string
}

var ErrUnavailable = errors.New("no transcription strategy available: set TRANSCRIBE_API_KEY or install whisper")

// New picks the strategy from the supplied options.
func New(opts Options) (Transcriber, error) {
	if opts.APIKey != "" {
		if opts.APIURL == "" {
			return nil, fmt.Errorf("TRANSCRIBE_API_URL must be set when TRANSCRIBE_API_KEY is set")
		}
		return newHosted(opts.APIURL, opts.APIKey), nil
	}

	bin := opts.WhisperBin
	if bin == "" {
		bin = "whisper"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, ErrUnavailable
	}
	model := opts.WhisperModel
	if model == "" {
		model = "base"
	}
	return newLocal(bin, model), nil
}
