package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Repository ist ein GitHub-Repository innerhalb eines Projekts.
type Repository struct {
	Base

	ProjectID uuid.UUID `json:"pid" gorm:"type:uuid;not null;uniqueIndex:idx_repositories_project_external"`
	GitHubID  string    `json:"github_id" gorm:"column:github_id;not null;uniqueIndex:idx_repositories_project_external"`

	Name        string                      `json:"name" gorm:"not null"`
	FullName    string                      `json:"full_name"`
	Description string                      `json:"description,omitempty" gorm:"type:text"`
	URL         string                      `json:"url"`
	Stars       int                         `json:"stars"`
	Language    string                      `json:"language,omitempty"`
	Topics      datatypes.JSONSlice[string] `json:"topics"`
	FetchedFrom string                      `json:"fetched_from"`

	Clicks        int           `json:"no_of_clicks" gorm:"not null;default:0"`
	Interactions  []Interaction `json:"user_interactions" gorm:"polymorphic:Resource;polymorphicValue:repository"`
	AverageRating float64       `json:"average_rating" gorm:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (Repository) TableName() string {
	return "repositories"
}

func (r *Repository) Kind() Kind            { return KindRepository }
func (r *Repository) ResourceID() uuid.UUID { return r.ID }
func (r *Repository) ProjectRef() uuid.UUID { return r.ProjectID }
func (r *Repository) ExternalKey() string   { return r.GitHubID }

func (r *Repository) ConflictColumns() []string {
	return []string{"project_id", "github_id"}
}

func (r *Repository) UpdateColumns() []string {
	return []string{"name", "full_name", "description", "url", "stars", "language", "topics", "fetched_from"}
}

func (r *Repository) UpsertKey() map[string]any {
	return map[string]any{"project_id": r.ProjectID, "github_id": r.GitHubID}
}

func (r *Repository) TextFields() []*string {
	return []*string{&r.Name, &r.Description}
}

// Normalize leitet die URL aus full_name ab, falls html_url fehlte.
func (r *Repository) Normalize() {
	r.GitHubID = strings.TrimSpace(r.GitHubID)
	if r.URL == "" && r.FullName != "" {
		r.URL = "https://github.com/" + r.FullName
	}
	r.Topics = cleanList(r.Topics)
	if r.FetchedFrom == "" {
		r.FetchedFrom = "GitHub"
	}
}

func (r *Repository) SetAverageRating() {
	r.AverageRating = AverageRating(r.Interactions)
}
