package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reelingest/internal/logger"
)

const hostedTimeout = 60 * time.Second

// mimeByExt maps the containers yt-dlp emits to upload content types.
var mimeByExt = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".webm": "audio/webm",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
}

// hosted uploads the audio file as the request body and expects the
// transcript back as plain text.
type hosted struct {
	url  string
	key  string
	http *http.Client
	log  *logrus.Entry
}

func newHosted(url, key string) *hosted {
	return &hosted{
		url:  url,
		key:  key,
		http: &http.Client{Timeout: hostedTimeout},
		log:  logger.New().WithField("component", "transcribe.hosted"),
	}
}

func (h *hosted) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+h.key)
	req.Header.Set("Content-Type", contentType(audioPath))
	req.Header.Set("Accept", "text/plain")

	resp, err := h.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcription api: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(body))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return "", fmt.Errorf("transcription api: status %d: %s", resp.StatusCode, detail)
	}

	text := strings.TrimSpace(string(body))
	h.log.WithField("chars", len(text)).Debug("hosted transcription finished")
	return text, nil
}

func contentType(path string) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "audio/*"
}
