package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Thumbnails bündelt die Vorschaubilder eines Videos.
type Thumbnails struct {
	Default string `json:"default"`
	Medium  string `json:"medium"`
	High    string `json:"high"`
}

// Video ist ein YouTube-Video innerhalb eines Projekts.
type Video struct {
	Base

	ProjectID uuid.UUID `json:"pid" gorm:"type:uuid;not null;uniqueIndex:idx_videos_project_external"`
	VideoID   string    `json:"video_id" gorm:"not null;uniqueIndex:idx_videos_project_external"`

	URL           string                         `json:"url" gorm:"not null"`
	Title         string                         `json:"title" gorm:"not null"`
	Description   string                         `json:"description,omitempty" gorm:"type:text"`
	CategoryID    string                         `json:"category_id,omitempty"`
	CategoryTitle string                         `json:"category_title,omitempty"`
	Tags          datatypes.JSONSlice[string]    `json:"tags"`
	Thumbnails    datatypes.JSONType[Thumbnails] `json:"thumbnail_urls"`
	ChannelTitle  string                         `json:"channel_title,omitempty"`
	ChannelID     string                         `json:"channel_id,omitempty"`
	PublishedAt   *time.Time                     `json:"published_at,omitempty"`
	Duration      string                         `json:"duration"`
	DurationSecs  int                            `json:"duration_seconds"`
	ViewCount     int64                          `json:"view_count"`
	LikeCount     int64                          `json:"like_count"`
	FetchedFrom   string                         `json:"fetched_from"`

	Clicks        int           `json:"no_of_clicks" gorm:"not null;default:0"`
	Interactions  []Interaction `json:"user_interactions" gorm:"polymorphic:Resource;polymorphicValue:video"`
	AverageRating float64       `json:"average_rating" gorm:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (Video) TableName() string {
	return "videos"
}

func (v *Video) Kind() Kind            { return KindVideo }
func (v *Video) ResourceID() uuid.UUID { return v.ID }
func (v *Video) ProjectRef() uuid.UUID { return v.ProjectID }
func (v *Video) ExternalKey() string   { return v.VideoID }

func (v *Video) ConflictColumns() []string {
	return []string{"project_id", "video_id"}
}

func (v *Video) UpdateColumns() []string {
	return []string{
		"url", "title", "description", "category_id", "category_title", "tags",
		"thumbnails", "channel_title", "channel_id", "published_at", "duration",
		"duration_secs", "view_count", "like_count", "fetched_from",
	}
}

func (v *Video) UpsertKey() map[string]any {
	return map[string]any{"project_id": v.ProjectID, "video_id": v.VideoID}
}

func (v *Video) TextFields() []*string {
	return []*string{&v.Title, &v.Description, &v.ChannelTitle}
}

// Normalize leitet die kanonische URL aus der Video-ID ab, falls sie fehlt.
func (v *Video) Normalize() {
	v.VideoID = strings.TrimSpace(v.VideoID)
	if v.URL == "" && v.VideoID != "" {
		v.URL = "https://www.youtube.com/watch?v=" + v.VideoID
	}
	v.Tags = cleanList(v.Tags)
	if v.FetchedFrom == "" {
		v.FetchedFrom = "YouTube"
	}
}

func (v *Video) SetAverageRating() {
	v.AverageRating = AverageRating(v.Interactions)
}
