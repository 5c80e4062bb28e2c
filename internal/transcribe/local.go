package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reelingest/internal/logger"
)

// Local model inference has no natural bound, so one is imposed here rather
// than letting a large file stall the whole batch.
const localTimeout = 10 * time.Minute

// local shells out to the whisper CLI with a fixed-size model, English only
// and single-pass beam search.
type local struct {
	binary  string
	model   string
	timeout time.Duration
	log     *logrus.Entry
}

func newLocal(binary, model string) *local {
	return &local{
		binary:  binary,
		model:   model,
		timeout: localTimeout,
		log:     logger.New().WithField("component", "transcribe.local"),
	}
}

type whisperSegment struct {
	Text string `json:"text"`
}

type whisperOutput struct {
	Segments []whisperSegment `json:"segments"`
}

func (l *local) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	outDir := filepath.Dir(audioPath)
	args := []string{
		audioPath,
		"--task", "transcribe",
		"--model", l.model,
		"--language", "en",
		"--beam_size", "1",
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
	}

	cmd := exec.CommandContext(ctx, l.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	l.log.WithFields(logrus.Fields{"model": l.model, "audio": audioPath}).Info("running local transcription")
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("whisper timed out after %s", l.timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("whisper failed: %s", detail)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPath := filepath.Join(outDir, stem+".json")
	raw, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("whisper produced no output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse whisper output: %w", err)
	}
	return joinSegments(out.Segments), nil
}

// joinSegments concatenates non-empty segment texts with single spaces.
func joinSegments(segments []whisperSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
