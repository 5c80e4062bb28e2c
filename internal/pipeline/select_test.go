package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelingest/internal/classify"
	"reelingest/internal/store"
)

func selectorPipeline(st *stubStore) *Pipeline {
	return New(st, &stubAcquirer{}, &stubTranscriber{}, &stubExtractor{})
}

func TestSelectSingle(t *testing.T) {
	p := selectorPipeline(&stubStore{})

	item, err := p.SelectSingle("https://x.com/status/9876543210")
	require.NoError(t, err)
	assert.Equal(t, classify.PlatformTwitter, item.Platform)
	assert.Equal(t, "9876543210", item.VideoID)

	_, err = p.SelectSingle("https://example.com/video/123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestSelectFromQueueDropsUnclassifiable(t *testing.T) {
	p := selectorPipeline(&stubStore{queue: []store.QueueRow{
		{URL: "https://youtu.be/dQw4w9WgXcQ"},
		{URL: "https://vimeo.com/12345"},
		{URL: ""},
		{URL: "https://instagram.com/trader/reel/Xy9_z"},
	}})

	items, err := p.SelectFromQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, classify.PlatformYouTube, items[0].Platform)
	assert.Equal(t, classify.PlatformInstagram, items[1].Platform)
}

func TestSelectBacklogPrefersReelURL(t *testing.T) {
	p := selectorPipeline(&stubStore{backlog: []store.BacklogRow{
		{
			VideoID:      "ABC123xyz_-",
			Platform:     "instagram",
			ReelURL:      "https://instagram.com/someuser/reel/ABC123xyz_-",
			CanonicalURL: "https://example.com/mirror/ABC123xyz_-",
		},
		{
			VideoID:      "dQw4w9WgXcQ",
			Platform:     "youtube",
			CanonicalURL: "https://youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{VideoID: "orphan", Platform: "twitter"}, // no source URL at all
	}})

	items, err := p.SelectBacklog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://instagram.com/someuser/reel/ABC123xyz_-", items[0].URL)
	assert.Equal(t, "ABC123xyz_-", items[0].VideoID)
	assert.Equal(t, classify.PlatformYouTube, items[1].Platform)
}

func TestSelectorsPropagateStoreErrors(t *testing.T) {
	p := selectorPipeline(&stubStore{readErr: errors.New("store: status 503")})

	_, err := p.SelectFromQueue(context.Background())
	require.Error(t, err)
	_, err = p.SelectBacklog(context.Background())
	require.Error(t, err)
}
