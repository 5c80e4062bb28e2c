// Package store talks to the Supabase REST interface: ingest status updates
// on strategy_videos plus the two batch-selection reads.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"reelingest/internal/classify"
	"reelingest/internal/logger"
)

// Status is the lifecycle state of one video record's ingest progress.
type Status string

const (
	StatusTranscribing Status = "transcribing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

// Error messages written to the store are capped at this length.
const maxErrorLen = 500

const requestTimeout = 10 * time.Second

// QueueRow is one strategy_video_queue record.
type QueueRow struct {
	URL string `json:"url"`
}

// BacklogRow is the fixed projection read from strategy_videos when
// selecting records that still lack a derived heading.
type BacklogRow struct {
	VideoID      string `json:"video_id"`
	Platform     string `json:"platform"`
	ReelURL      string `json:"reel_url"`
	CanonicalURL string `json:"canonical_url"`
}

type Client struct {
	baseURL string
	key     string
	http    *http.Client
	log     *logrus.Entry
}

func New(baseURL, key string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		http:    &http.Client{Timeout: requestTimeout},
		log:     logger.New().WithField("component", "store"),
	}
}

// SetIngestStatus updates the record matching (videoID, platform) exactly.
// errMsg, when non-empty, is truncated to 500 characters before writing.
func (c *Client) SetIngestStatus(ctx context.Context, videoID string, platform classify.Platform, status Status, errMsg string) error {
	body := map[string]string{"ingest_status": string(status)}
	if errMsg != "" {
		body["ingest_error"] = truncate(errMsg, maxErrorLen)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("store: encode status body: %w", err)
	}

	q := url.Values{}
	q.Set("video_id", "eq."+videoID)
	q.Set("platform", "eq."+string(platform))
	endpoint := c.baseURL + "/rest/v1/strategy_videos?" + q.Encode()

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		c.authorize(req)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
		return c.checkResponse(req)
	}
	if err := backoff.Retry(op, c.newBackoff(ctx)); err != nil {
		return fmt.Errorf("store: set ingest status: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"video_id": videoID,
		"platform": platform,
		"status":   status,
	}).Debug("ingest status updated")
	return nil
}

// DoneQueueItems returns every queue record whose status is "done".
func (c *Client) DoneQueueItems(ctx context.Context) ([]QueueRow, error) {
	q := url.Values{}
	q.Set("status", "eq.done")
	q.Set("select", "url")

	var rows []QueueRow
	if err := c.get(ctx, "/rest/v1/strategy_video_queue", q, &rows); err != nil {
		return nil, fmt.Errorf("store: read queue: %w", err)
	}
	return rows, nil
}

// MissingHeading returns tracked strategy_videos records whose derived
// heading has not been populated yet.
func (c *Client) MissingHeading(ctx context.Context) ([]BacklogRow, error) {
	q := url.Values{}
	q.Set("video_heading", "is.null")
	q.Set("status", "eq.tracked")
	q.Set("select", "video_id,platform,reel_url,canonical_url")

	var rows []BacklogRow
	if err := c.get(ctx, "/rest/v1/strategy_videos", q, &rows); err != nil {
		return nil, fmt.Errorf("store: read backlog: %w", err)
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + q.Encode()

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.authorize(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if err := statusError(resp.StatusCode, body); err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, c.newBackoff(ctx))
}

// checkResponse runs a request where only the status code matters.
func (c *Client) checkResponse(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return statusError(resp.StatusCode, body)
}

// statusError maps an HTTP status to a retry decision: 5xx stays retryable,
// 4xx is permanent.
func statusError(code int, body []byte) error {
	switch {
	case code >= 500:
		return fmt.Errorf("status %d: %s", code, truncate(string(body), 200))
	case code >= 400:
		return backoff.Permanent(fmt.Errorf("status %d: %s", code, truncate(string(body), 200)))
	default:
		return nil
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = requestTimeout
	return backoff.WithContext(bo, ctx)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
