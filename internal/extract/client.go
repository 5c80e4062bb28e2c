// Package extract submits transcripts to the remote metadata-extraction
// edge function.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reelingest/internal/classify"
	"reelingest/internal/logger"
)

const (
	functionPath   = "/functions/v1/extract-strategy-metadata-from-transcript"
	requestTimeout = 60 * time.Second
)

// StatusError reports an extraction response with HTTP status >= 400,
// carrying whatever error text the endpoint provided.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("extract: status %d: %s", e.Status, e.Message)
}

type payload struct {
	VideoID      string  `json:"video_id"`
	Platform     string  `json:"platform"`
	Transcript   string  `json:"transcript"`
	ReelURL      *string `json:"reel_url"`
	CanonicalURL *string `json:"canonical_url"`
}

type Client struct {
	baseURL string
	key     string
	http    *http.Client
	log     *logrus.Entry
}

func New(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: requestTimeout},
		log:     logger.New().WithField("component", "extract"),
	}
}

// Extract submits the transcript for item. reel_url carries the source URL
// for Instagram items, canonical_url for every other platform; exactly one
// of the two is ever set. The response is returned as an opaque map.
func (c *Client) Extract(ctx context.Context, item classify.WorkItem, transcript string) (map[string]any, error) {
	p := payload{
		VideoID:    item.VideoID,
		Platform:   string(item.Platform),
		Transcript: transcript,
	}
	if item.Platform == classify.PlatformInstagram {
		p.ReelURL = &item.URL
	} else {
		p.CanonicalURL = &item.URL
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("extract: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+functionPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extract: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("extract: decode response: %w", err)
	}
	if extracted, ok := result["extracted"]; ok {
		c.log.WithField("extracted", extracted).Info("extraction finished")
	}
	return result, nil
}

// errorMessage digs a human-readable message out of an error response body:
// an "error" field first, then "message", then the raw text capped at 200
// characters.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
