package pipeline

import (
	"context"
	"fmt"

	"reelingest/internal/classify"
)

// SelectSingle classifies one explicit URL. A classification miss here is a
// hard user-facing error, unlike in the batch modes.
func (p *Pipeline) SelectSingle(rawURL string) (classify.WorkItem, error) {
	item, ok := classify.Parse(rawURL)
	if !ok {
		return classify.WorkItem{}, fmt.Errorf("invalid URL: %s", rawURL)
	}
	return item, nil
}

// SelectFromQueue builds the work set from queue records in the "done"
// state. Unclassifiable URLs are dropped silently.
func (p *Pipeline) SelectFromQueue(ctx context.Context) ([]classify.WorkItem, error) {
	rows, err := p.store.DoneQueueItems(ctx)
	if err != nil {
		return nil, err
	}

	var items []classify.WorkItem
	for _, r := range rows {
		if r.URL == "" {
			continue
		}
		if item, ok := classify.Parse(r.URL); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// SelectBacklog builds the work set from tracked records still missing a
// derived heading, preferring reel_url over canonical_url as the source.
// Unclassifiable URLs are dropped silently.
func (p *Pipeline) SelectBacklog(ctx context.Context) ([]classify.WorkItem, error) {
	rows, err := p.store.MissingHeading(ctx)
	if err != nil {
		return nil, err
	}

	var items []classify.WorkItem
	for _, r := range rows {
		url := r.ReelURL
		if url == "" {
			url = r.CanonicalURL
		}
		if url == "" {
			continue
		}
		if item, ok := classify.Parse(url); ok {
			items = append(items, item)
		}
	}
	return items, nil
}
