package models

import (
	"strings"

	"github.com/google/uuid"
)

// Kind benennt eine Ressourcenart.
type Kind string

const (
	KindVideo         Kind = "video"
	KindAcademicPaper Kind = "academic_paper"
	KindEBook         Kind = "ebook"
	KindRepository    Kind = "repository"
)

// Kinds listet alle Ressourcenarten in fester Reihenfolge.
var Kinds = []Kind{KindVideo, KindAcademicPaper, KindEBook, KindRepository}

// Resource ist das gemeinsame Verhalten aller vier Ressourcenarten.
type Resource interface {
	Kind() Kind
	ResourceID() uuid.UUID
	ProjectRef() uuid.UUID
	// ExternalKey ist die ID der externen Quelle (z.B. YouTube-Video-ID).
	ExternalKey() string
	// ConflictColumns bilden den Upsert-Schlüssel (project_id + externe ID).
	ConflictColumns() []string
	// UpdateColumns werden bei einem Konflikt mit den neuen Werten überschrieben.
	UpdateColumns() []string
	UpsertKey() map[string]any
	// TextFields liefert Zeiger auf Freitextfelder für die Normalisierung. Das erste Feld ist einzeilig (Titel oder Name).
	TextFields() []*string
	Normalize()
	SetAverageRating()
}

// AverageRating ist der Mittelwert aller gesetzten Ratings, 0 ohne Ratings.
func AverageRating(interactions []Interaction) float64 {
	var sum float64
	var n int
	for _, i := range interactions {
		if i.Rating == nil {
			continue
		}
		sum += *i.Rating
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// cleanList trimmt Einträge, entfernt leere und doppelte, Reihenfolge bleibt erhalten.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
