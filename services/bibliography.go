package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"learnhub/models"

	"github.com/google/uuid"
)

// BibliographyEntry ist ein nummerierter Eintrag im Literaturverzeichnis eines Projekts.
type BibliographyEntry struct {
	Number     int         `json:"number"`
	Kind       models.Kind `json:"kind"`
	ResourceID uuid.UUID   `json:"resource_id"`
	Reference  string      `json:"reference"`
	URL        string      `json:"url,omitempty"`
}

// Bibliography ist das Literaturverzeichnis aller Papers und E-Books eines Projekts.
type Bibliography struct {
	ProjectID uuid.UUID           `json:"project_id"`
	Entries   []BibliographyEntry `json:"entries"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// Bibliography baut das Literaturverzeichnis eines Projekts, alphabetisch nach Angabe sortiert.
// Einträge ohne Autoren oder Jahr werden aufgenommen, erzeugen aber eine Warnung.
func (s *ResourceService) Bibliography(ctx context.Context, userID, projectID uuid.UUID) (*Bibliography, error) {
	db := s.DB.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, err
	}

	var papers []models.AcademicPaper
	if err := db.Where("project_id = ?", projectID).Order(paperOrder).Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("load papers: %w", err)
	}
	var books []models.EBook
	if err := db.Where("project_id = ?", projectID).Order(ebookOrder).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("load ebooks: %w", err)
	}

	bib := &Bibliography{ProjectID: projectID, Entries: []BibliographyEntry{}}
	for i := range papers {
		p := &papers[i]
		bib.Entries = append(bib.Entries, BibliographyEntry{
			Kind:       models.KindAcademicPaper,
			ResourceID: p.ID,
			Reference:  FormatPaperReference(p),
			URL:        p.URL,
		})
		if len(p.Authors) == 0 {
			bib.Warnings = append(bib.Warnings, fmt.Sprintf("paper %q has no authors", titleOrDefault(p.Title)))
		}
		if p.YearPublished == nil {
			bib.Warnings = append(bib.Warnings, fmt.Sprintf("paper %q has no publication year", titleOrDefault(p.Title)))
		}
	}
	for i := range books {
		b := &books[i]
		bib.Entries = append(bib.Entries, BibliographyEntry{
			Kind:       models.KindEBook,
			ResourceID: b.ID,
			Reference:  FormatEBookReference(b),
			URL:        b.InfoLink,
		})
		if len(b.Authors) == 0 {
			bib.Warnings = append(bib.Warnings, fmt.Sprintf("ebook %q has no authors", titleOrDefault(b.Title)))
		}
	}

	sort.SliceStable(bib.Entries, func(i, j int) bool {
		return strings.ToLower(bib.Entries[i].Reference) < strings.ToLower(bib.Entries[j].Reference)
	})
	for i := range bib.Entries {
		bib.Entries[i].Number = i + 1
	}
	return bib, nil
}

// Text rendert das Verzeichnis als "[n] Angabe"-Zeilen.
func (b *Bibliography) Text() string {
	var sb strings.Builder
	for _, e := range b.Entries {
		fmt.Fprintf(&sb, "[%d] %s\n", e.Number, e.Reference)
	}
	return sb.String()
}
