package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstagram(t *testing.T) {
	item, ok := Parse("https://instagram.com/someuser/reel/ABC123xyz_-")
	require.True(t, ok)
	assert.Equal(t, PlatformInstagram, item.Platform)
	assert.Equal(t, "ABC123xyz_-", item.VideoID)
	assert.Equal(t, "someuser", item.Handle)
}

func TestParseInstagramNoHandle(t *testing.T) {
	item, ok := Parse("https://www.instagram.com/reel/Cxy123_abc/")
	require.True(t, ok)
	assert.Equal(t, PlatformInstagram, item.Platform)
	assert.Equal(t, "Cxy123_abc", item.VideoID)
	assert.Empty(t, item.Handle)
}

func TestParseTwitter(t *testing.T) {
	tests := []struct {
		url string
		id  string
	}{
		{"https://x.com/status/9876543210", "9876543210"},
		{"https://twitter.com/trader_jane/status/17283940561", "17283940561"},
		{"https://X.com/someone/status/42", "42"},
	}
	for _, tt := range tests {
		item, ok := Parse(tt.url)
		require.True(t, ok, tt.url)
		assert.Equal(t, PlatformTwitter, item.Platform)
		assert.Equal(t, tt.id, item.VideoID)
	}
}

func TestParseYouTube(t *testing.T) {
	tests := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://YOUTUBE.com/watch?v=dQw4w9WgXcQ&t=42s",
	}
	for _, url := range tests {
		item, ok := Parse(url)
		require.True(t, ok, url)
		assert.Equal(t, PlatformYouTube, item.Platform)
		assert.Equal(t, "dQw4w9WgXcQ", item.VideoID)
	}
}

func TestParseRejectsUnrelatedURLs(t *testing.T) {
	negatives := []string{
		"",
		"not a url",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/123456789",
		"https://youtube.com/watch?v=short", // id must be 11 chars
		"https://instagram.com/someuser/posts/ABC123",
		"https://x.com/someone/likes/12345",
		"https://tiktok.com/@user/video/1234567890",
	}
	for _, url := range negatives {
		_, ok := Parse(url)
		assert.False(t, ok, url)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	url := "  https://youtu.be/dQw4w9WgXcQ "
	a, okA := Parse(url)
	b, okB := Parse(url)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}
