// Package audio fetches the audio track of a video by shelling out to yt-dlp.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reelingest/internal/logger"
)

// Depending on the source encoding yt-dlp emits one of several containers;
// candidates are probed in this order and the first that exists wins.
var audioExts = []string{"m4a", "webm", "mp3", "opus"}

const defaultTimeout = 120 * time.Second

// Acquirer invokes yt-dlp for audio-only extraction.
type Acquirer struct {
	// Binary is the yt-dlp executable name or path.
	Binary string
	// Timeout bounds one invocation wall-clock.
	Timeout time.Duration

	log *logrus.Entry
}

func NewAcquirer() *Acquirer {
	return &Acquirer{
		Binary:  "yt-dlp",
		Timeout: defaultTimeout,
		log:     logger.New().WithField("component", "audio"),
	}
}

// Fetch downloads the audio for url, writing to basePath.%(ext)s, and
// returns the path of the produced file. cookiesFile is passed through to
// yt-dlp when it names an existing file (some Instagram content needs it).
func (a *Acquirer) Fetch(ctx context.Context, url, basePath, cookiesFile string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	args := []string{
		"-x",
		"-o", basePath + ".%(ext)s",
		"--no-playlist",
		"--no-warnings",
	}
	if cookiesFile != "" {
		if _, err := os.Stat(cookiesFile); err == nil {
			args = append(args, "--cookies", cookiesFile)
		}
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, a.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("yt-dlp timed out after %s", a.Timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("yt-dlp failed: %s", truncate(detail, 300))
	}

	for _, ext := range audioExts {
		candidate := basePath + "." + ext
		if _, err := os.Stat(candidate); err == nil {
			a.log.WithField("path", candidate).Debug("audio downloaded")
			return candidate, nil
		}
	}
	return "", fmt.Errorf("yt-dlp produced no audio file at %s.*", basePath)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
