package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("database handle: %v", err)
	}
	// Jede Verbindung wäre eine eigene In-Memory-Datenbank.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{FetchConcurrency: 4, KeepBackups: 2}
}

// fakeSource liefert bei jedem Aufruf frisch gebaute Kandidaten oder einen Fehler.
type fakeSource[T any] struct {
	name  string
	build func(projectID uuid.UUID) []*T
	err   error
	calls int32
}

func (f *fakeSource[T]) Name() string {
	return f.name
}

func (f *fakeSource[T]) Search(ctx context.Context, projectID uuid.UUID, keywords []string) ([]*T, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	if f.build == nil {
		return []*T{}, nil
	}
	return f.build(projectID), nil
}

// fakeVideos ist eine Videoquelle mit Lookup.
type fakeVideos struct {
	fakeSource[models.Video]
	lookup func(projectID uuid.UUID, id string) (*models.Video, error)
}

func (f *fakeVideos) Lookup(ctx context.Context, projectID uuid.UUID, id string) (*models.Video, error) {
	return f.lookup(projectID, id)
}

func video(projectID uuid.UUID, id, title string) *models.Video {
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Video{
		ProjectID:   projectID,
		VideoID:     id,
		Title:       title,
		Duration:    "PT5M",
		PublishedAt: &published,
	}
}

func paper(projectID uuid.UUID, id, title string, year int) *models.AcademicPaper {
	p := &models.AcademicPaper{ProjectID: projectID, CoreID: id, Title: title}
	if year > 0 {
		p.YearPublished = &year
	}
	return p
}

func ebook(projectID uuid.UUID, id, title string) *models.EBook {
	return &models.EBook{ProjectID: projectID, GoogleID: id, Title: title, PublishedDate: "2020"}
}

func repository(projectID uuid.UUID, id, name string, stars int) *models.Repository {
	return &models.Repository{ProjectID: projectID, GitHubID: id, Name: name, FullName: "org/" + name, Stars: stars}
}

type fixture struct {
	db        *gorm.DB
	projects  *ProjectService
	resources *ResourceService
	ingest    *IngestService
}

func newFixture(t *testing.T, sources Sources) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	projects := NewProjectService(db, log)
	return &fixture{
		db:        db,
		projects:  projects,
		resources: NewResourceService(db, log),
		ingest:    NewIngestService(testConfig(), db, log, sources, projects),
	}
}

func ptr[T any](v T) *T {
	return &v
}
