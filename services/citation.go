package services

import (
	"fmt"
	"regexp"
	"strings"

	"learnhub/models"
)

// maxCitedAuthors begrenzt die Autorenliste; danach folgt "et al.".
const maxCitedAuthors = 6

var yearRE = regexp.MustCompile(`^\d{4}`)

// Citation ist eine formatierte Literaturangabe.
type Citation struct {
	Kind      models.Kind `json:"kind"`
	Reference string      `json:"reference"`
	URL       string      `json:"url,omitempty"`
}

// FormatPaperReference rendert ein Paper als kompakte Literaturangabe.
func FormatPaperReference(p *models.AcademicPaper) string {
	year := "n.d."
	if p.YearPublished != nil && *p.YearPublished > 0 {
		year = fmt.Sprintf("%d", *p.YearPublished)
	}
	var tail []string
	if p.DOI != "" {
		tail = append(tail, "doi:"+p.DOI)
	}
	tailStr := strings.Join(tail, " ")
	if tailStr != "" {
		tailStr = " " + tailStr
	}
	container := p.Journal
	if container == "" {
		container = p.Publisher
	}
	if container != "" {
		return fmt.Sprintf("%s (%s). %s. %s.%s", formatAuthors(p.Authors), year, titleOrDefault(p.Title), container, tailStr)
	}
	return fmt.Sprintf("%s (%s). %s.%s", formatAuthors(p.Authors), year, titleOrDefault(p.Title), tailStr)
}

// FormatEBookReference rendert ein E-Book als Literaturangabe.
func FormatEBookReference(b *models.EBook) string {
	year := "n.d."
	if m := yearRE.FindString(b.PublishedDate); m != "" {
		year = m
	}
	ref := fmt.Sprintf("%s (%s). %s.", formatAuthors(b.Authors), year, titleOrDefault(b.Title))
	if b.Publisher != "" {
		ref += " " + b.Publisher + "."
	}
	return ref
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "Unknown Authors"
	}
	if len(authors) > maxCitedAuthors {
		return strings.Join(authors[:maxCitedAuthors], ", ") + ", et al."
	}
	return strings.Join(authors, ", ")
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Untitled"
	}
	return strings.TrimRight(title, ".")
}
