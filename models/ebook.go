package models

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EBook ist ein Buch aus Google Books innerhalb eines Projekts.
type EBook struct {
	Base

	ProjectID uuid.UUID `json:"pid" gorm:"type:uuid;not null;uniqueIndex:idx_ebooks_project_external"`
	GoogleID  string    `json:"google_id" gorm:"not null;uniqueIndex:idx_ebooks_project_external"`

	Title         string                      `json:"title" gorm:"not null"`
	Authors       datatypes.JSONSlice[string] `json:"authors"`
	Description   string                      `json:"description,omitempty" gorm:"type:text"`
	Publisher     string                      `json:"publisher,omitempty"`
	PublishedDate string                      `json:"published_date,omitempty"`
	Categories    datatypes.JSONSlice[string] `json:"categories"`
	Language      string                      `json:"language,omitempty"`
	PageCount     int                         `json:"page_count"`
	PreviewLink   string                      `json:"preview_link,omitempty"`
	InfoLink      string                      `json:"info_link"`
	Thumbnail     string                      `json:"thumbnail,omitempty"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	FetchedFrom   string                      `json:"fetched_from"`

	Clicks        int           `json:"no_of_clicks" gorm:"not null;default:0"`
	Interactions  []Interaction `json:"user_interactions" gorm:"polymorphic:Resource;polymorphicValue:ebook"`
	AverageRating float64       `json:"average_rating" gorm:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (EBook) TableName() string {
	return "ebooks"
}

func (b *EBook) Kind() Kind            { return KindEBook }
func (b *EBook) ResourceID() uuid.UUID { return b.ID }
func (b *EBook) ProjectRef() uuid.UUID { return b.ProjectID }
func (b *EBook) ExternalKey() string   { return b.GoogleID }

func (b *EBook) ConflictColumns() []string {
	return []string{"project_id", "google_id"}
}

func (b *EBook) UpdateColumns() []string {
	return []string{
		"title", "authors", "description", "publisher", "published_date", "categories",
		"language", "page_count", "preview_link", "info_link", "thumbnail", "tags",
		"fetched_from",
	}
}

func (b *EBook) UpsertKey() map[string]any {
	return map[string]any{"project_id": b.ProjectID, "google_id": b.GoogleID}
}

func (b *EBook) TextFields() []*string {
	return []*string{&b.Title, &b.Description, &b.Publisher}
}

// Normalize setzt den Info-Link aus der Google-ID, falls er fehlt.
func (b *EBook) Normalize() {
	b.GoogleID = strings.TrimSpace(b.GoogleID)
	if b.InfoLink == "" && b.GoogleID != "" {
		b.InfoLink = "https://books.google.com/books?id=" + url.QueryEscape(b.GoogleID)
	}
	b.Authors = cleanList(b.Authors)
	b.Categories = cleanList(b.Categories)
	b.Tags = cleanList(b.Tags)
	if b.FetchedFrom == "" {
		b.FetchedFrom = "Google Books"
	}
}

func (b *EBook) SetAverageRating() {
	b.AverageRating = AverageRating(b.Interactions)
}
