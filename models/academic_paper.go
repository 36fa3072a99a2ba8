package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AcademicPaper ist ein Paper aus der CORE API innerhalb eines Projekts.
type AcademicPaper struct {
	Base

	ProjectID uuid.UUID `json:"pid" gorm:"type:uuid;not null;uniqueIndex:idx_academic_papers_project_external"`
	CoreID    string    `json:"core_id" gorm:"not null;uniqueIndex:idx_academic_papers_project_external"`

	Title         string                      `json:"title" gorm:"not null"`
	Authors       datatypes.JSONSlice[string] `json:"authors"`
	Abstract      string                      `json:"abstract,omitempty" gorm:"type:text"`
	YearPublished *int                        `json:"year_published,omitempty"`
	Publisher     string                      `json:"publisher,omitempty"`
	Subjects      datatypes.JSONSlice[string] `json:"subjects"`
	Language      string                      `json:"language,omitempty"`
	DownloadURL   string                      `json:"download_url,omitempty"`
	SourceURL     string                      `json:"source_url,omitempty"`
	Journal       string                      `json:"journal,omitempty"`
	DOI           string                      `json:"doi,omitempty" gorm:"column:doi;index"`
	URL           string                      `json:"url"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	FetchedFrom   string                      `json:"fetched_from"`

	Clicks        int           `json:"no_of_clicks" gorm:"not null;default:0"`
	Interactions  []Interaction `json:"user_interactions" gorm:"polymorphic:Resource;polymorphicValue:academic_paper"`
	AverageRating float64       `json:"average_rating" gorm:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (AcademicPaper) TableName() string {
	return "academic_papers"
}

func (p *AcademicPaper) Kind() Kind            { return KindAcademicPaper }
func (p *AcademicPaper) ResourceID() uuid.UUID { return p.ID }
func (p *AcademicPaper) ProjectRef() uuid.UUID { return p.ProjectID }
func (p *AcademicPaper) ExternalKey() string   { return p.CoreID }

func (p *AcademicPaper) ConflictColumns() []string {
	return []string{"project_id", "core_id"}
}

func (p *AcademicPaper) UpdateColumns() []string {
	return []string{
		"title", "authors", "abstract", "year_published", "publisher", "subjects",
		"language", "download_url", "source_url", "journal", "doi", "url", "tags",
		"fetched_from",
	}
}

func (p *AcademicPaper) UpsertKey() map[string]any {
	return map[string]any{"project_id": p.ProjectID, "core_id": p.CoreID}
}

func (p *AcademicPaper) TextFields() []*string {
	return []*string{&p.Title, &p.Abstract, &p.Publisher, &p.Journal}
}

// Normalize setzt eine CORE-URL, falls die API keine geliefert hat.
func (p *AcademicPaper) Normalize() {
	p.CoreID = strings.TrimSpace(p.CoreID)
	if p.URL == "" && p.CoreID != "" {
		p.URL = "https://core.ac.uk/works/" + p.CoreID
	}
	p.Authors = cleanList(p.Authors)
	p.Subjects = cleanList(p.Subjects)
	p.Tags = cleanList(p.Tags)
	if p.FetchedFrom == "" {
		p.FetchedFrom = "CORE API"
	}
}

func (p *AcademicPaper) SetAverageRating() {
	p.AverageRating = AverageRating(p.Interactions)
}
