// Package core enthält die Logik für die Interaktion mit der CORE API v3.
package core

import "learnhub/providers"

// SearchResponse ist die Antwort von /search/works/.
type SearchResponse struct {
	TotalHits int    `json:"totalHits"`
	Results   []Work `json:"results"`
}

// Work ist ein einzelnes Werk aus CORE.
type Work struct {
	ID                 providers.FlexText `json:"id"`
	Title              string             `json:"title"`
	Authors            Authors            `json:"authors"`
	Abstract           string             `json:"abstract"`
	YearPublished      *providers.FlexInt `json:"yearPublished"`
	Publisher          providers.FlexText `json:"publisher"`
	Subjects           providers.FlexList `json:"subjects"`
	Language           providers.FlexText `json:"language"`
	DownloadURL        string             `json:"downloadUrl"`
	SourceURL          string             `json:"sourceUrl"`
	SourceFulltextURLs providers.FlexList `json:"sourceFulltextUrls"`
	Journal            providers.FlexText `json:"journal"`
	Journals           providers.FlexText `json:"journals"`
	DOI                string             `json:"doi"`
	URL                string             `json:"url"`
	Topics             providers.FlexList `json:"topics"`
	Links              []Link             `json:"links"`
}

// Link ist ein typisierter Verweis eines Werks (download, display, reader).
type Link struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
