// Package pipeline sequences the ingest of one batch: status tracking,
// audio acquisition, transcription and metadata extraction.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reelingest/internal/classify"
	"reelingest/internal/logger"
	"reelingest/internal/store"
	"reelingest/internal/transcribe"
)

// StatusStore is the slice of the remote store the pipeline needs.
type StatusStore interface {
	SetIngestStatus(ctx context.Context, videoID string, platform classify.Platform, status store.Status, errMsg string) error
	DoneQueueItems(ctx context.Context) ([]store.QueueRow, error)
	MissingHeading(ctx context.Context) ([]store.BacklogRow, error)
}

// Acquirer fetches the audio track for a URL onto local scratch storage.
type Acquirer interface {
	Fetch(ctx context.Context, url, basePath, cookiesFile string) (string, error)
}

// Extractor submits a transcript for metadata extraction.
type Extractor interface {
	Extract(ctx context.Context, item classify.WorkItem, transcript string) (map[string]any, error)
}

// Outcome is the terminal state of one item within a run.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped" // dry-run only
)

// ItemResult records how one work item fared, for stdout reporting and the
// optional run report. Item-level failures never surface as process errors.
type ItemResult struct {
	Item     classify.WorkItem
	Outcome  Outcome
	Error    string
	Duration time.Duration
}

type Pipeline struct {
	store       StatusStore
	acquirer    Acquirer
	transcriber transcribe.Transcriber
	extractor   Extractor

	// CookiesFile is handed through to the acquirer; DryRun suppresses all
	// network, download and transcription work.
	CookiesFile string
	DryRun      bool

	log *logrus.Entry
}

func New(st StatusStore, acquirer Acquirer, transcriber transcribe.Transcriber, extractor Extractor) *Pipeline {
	return &Pipeline{
		store:       st,
		acquirer:    acquirer,
		transcriber: transcriber,
		extractor:   extractor,
		log:         logger.New().WithField("component", "pipeline"),
	}
}

// Run processes items strictly in order. One item's failure never aborts
// the batch.
func (p *Pipeline) Run(ctx context.Context, items []classify.WorkItem) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		results = append(results, p.processItem(ctx, item))
	}
	return results
}

func (p *Pipeline) processItem(ctx context.Context, item classify.WorkItem) ItemResult {
	start := time.Now()
	log := p.log.WithFields(logrus.Fields{
		"platform": item.Platform,
		"video_id": item.VideoID,
	})
	log.Info("ingesting")

	if p.DryRun {
		log.WithField("url", item.URL).Info("dry-run: would download, transcribe and extract")
		return ItemResult{Item: item, Outcome: OutcomeSkipped, Duration: time.Since(start)}
	}

	p.setStatus(ctx, log, item, store.StatusTranscribing, "")

	scratch, err := os.MkdirTemp("", "reelingest-*")
	if err != nil {
		return p.fail(ctx, log, item, "Scratch dir failed: "+err.Error(), start)
	}
	defer os.RemoveAll(scratch)

	audioPath, err := p.acquirer.Fetch(ctx, item.URL, filepath.Join(scratch, "audio"), p.CookiesFile)
	if err != nil {
		return p.fail(ctx, log, item, "Download failed: "+err.Error(), start)
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return p.fail(ctx, log, item, "Transcription failed: "+err.Error(), start)
	}
	if strings.TrimSpace(transcript) == "" {
		return p.fail(ctx, log, item, "Empty transcript", start)
	}
	log.WithField("chars", len(transcript)).Info("transcript ready")

	if _, err := p.extractor.Extract(ctx, item, transcript); err != nil {
		return p.fail(ctx, log, item, "Extract failed: "+err.Error(), start)
	}

	p.setStatus(ctx, log, item, store.StatusDone, "")
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("done")
	return ItemResult{Item: item, Outcome: OutcomeDone, Duration: time.Since(start)}
}

func (p *Pipeline) fail(ctx context.Context, log *logrus.Entry, item classify.WorkItem, msg string, start time.Time) ItemResult {
	log.Warn(msg)
	p.setStatus(ctx, log, item, store.StatusFailed, msg)
	return ItemResult{Item: item, Outcome: OutcomeFailed, Error: msg, Duration: time.Since(start)}
}

// setStatus is best effort: bookkeeping writes are never critical path, so
// a failed update is logged and the pipeline moves on.
func (p *Pipeline) setStatus(ctx context.Context, log *logrus.Entry, item classify.WorkItem, status store.Status, errMsg string) {
	if err := p.store.SetIngestStatus(ctx, item.VideoID, item.Platform, status, errMsg); err != nil {
		log.WithError(err).WithField("status", status).Warn("could not update ingest status")
	}
}
