// Package youtube enthält die Logik für die Interaktion mit der YouTube Data API v3.
package youtube

import "learnhub/providers"

// SearchResponse ist die Antwort von /search.
type SearchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// VideosResponse ist die Antwort von /videos.
type VideosResponse struct {
	Items []VideoItem `json:"items"`
}

// VideoItem enthält snippet, contentDetails und statistics eines Videos.
type VideoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		PublishedAt  string   `json:"publishedAt"`
		ChannelID    string   `json:"channelId"`
		ChannelTitle string   `json:"channelTitle"`
		CategoryID   string   `json:"categoryId"`
		Tags         []string `json:"tags"`
		Thumbnails   struct {
			Default Thumbnail `json:"default"`
			Medium  Thumbnail `json:"medium"`
			High    Thumbnail `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount providers.FlexInt `json:"viewCount"`
		LikeCount providers.FlexInt `json:"likeCount"`
	} `json:"statistics"`
}

// Thumbnail ist ein einzelnes Vorschaubild.
type Thumbnail struct {
	URL string `json:"url"`
}
