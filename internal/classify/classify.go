// Package classify turns raw video URLs into work items. Unrecognized URLs
// are a filter result, not an error: batch callers skip them, the single-URL
// caller decides whether to surface that to the user.
package classify

import (
	"regexp"
	"strings"
)

// Platform identifies the social video source a URL belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
)

// WorkItem is a classified, ready-to-process unit derived from a raw URL.
// Immutable once created.
type WorkItem struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	VideoID  string   `json:"video_id"`
	Handle   string   `json:"handle,omitempty"`
}

var (
	instagramReel = regexp.MustCompile(`(?i)instagram\.com/(?:([^/]+)/)?reel/([A-Za-z0-9_-]+)`)
	twitterStatus = regexp.MustCompile(`(?i)(?:twitter|x)\.com/(?:[^/]+/)?status/(\d+)`)
	youtubeVideo  = regexp.MustCompile(`(?i)(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

// Parse matches url against the known platform shapes, first match wins.
// The boolean is false for anything else.
func Parse(url string) (WorkItem, bool) {
	url = strings.TrimSpace(url)

	if m := instagramReel.FindStringSubmatch(url); m != nil {
		return WorkItem{URL: url, Platform: PlatformInstagram, VideoID: m[2], Handle: m[1]}, true
	}
	if m := twitterStatus.FindStringSubmatch(url); m != nil {
		return WorkItem{URL: url, Platform: PlatformTwitter, VideoID: m[1]}, true
	}
	if m := youtubeVideo.FindStringSubmatch(url); m != nil {
		return WorkItem{URL: url, Platform: PlatformYouTube, VideoID: m[1]}, true
	}
	return WorkItem{}, false
}
