package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"learnhub/models"

	"github.com/google/uuid"
)

func TestBibliographyOrderAndWarnings(t *testing.T) {
	f := newFixture(t, Sources{})
	ctx := context.Background()
	owner := uuid.New()
	project := seedProject(t, f, owner)

	zeta := paper(project.ID, "1", "Zeta study", 2020)
	zeta.Authors = []string{"Ann Lee"}
	alpha := paper(project.ID, "2", "Alpha", 0)
	alpha.Authors = []string{"Bob"}
	for _, p := range []*models.AcademicPaper{zeta, alpha} {
		if _, err := upsertResource[models.AcademicPaper](ctx, f.db, p); err != nil {
			t.Fatalf("seed paper: %v", err)
		}
	}
	if _, err := upsertResource[models.EBook](ctx, f.db, ebook(project.ID, "g1", "Go in Action")); err != nil {
		t.Fatalf("seed ebook: %v", err)
	}

	bib, err := f.resources.Bibliography(ctx, owner, project.ID)
	if err != nil {
		t.Fatalf("Bibliography: %v", err)
	}
	want := []string{
		"Ann Lee (2020). Zeta study.",
		"Bob (n.d.). Alpha.",
		"Unknown Authors (2020). Go in Action.",
	}
	if len(bib.Entries) != len(want) {
		t.Fatalf("entries = %+v", bib.Entries)
	}
	for i, e := range bib.Entries {
		if e.Number != i+1 || e.Reference != want[i] {
			t.Errorf("entry %d = %d %q, want %d %q", i, e.Number, e.Reference, i+1, want[i])
		}
	}
	if len(bib.Warnings) != 2 {
		t.Errorf("warnings = %v, want 2", bib.Warnings)
	}
	if !strings.HasPrefix(bib.Text(), "[1] Ann Lee (2020).") {
		t.Errorf("text = %q", bib.Text())
	}

	if _, err := f.resources.Bibliography(ctx, uuid.New(), project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign user err = %v, want ErrNotFound", err)
	}
}
