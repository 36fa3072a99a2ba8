package services

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"learnhub/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSharedTestDB öffnet eine Datei-Datenbank, die mehrere Verbindungen gleichzeitig nutzen.
func newSharedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "learnhub.db") + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
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
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestConcurrentUpsertSameKey(t *testing.T) {
	db := newSharedTestDB(t)
	projectID := uuid.New()
	ctx := context.Background()

	const writers = 8
	ids := make([]uuid.UUID, writers)
	errs := make([]error, writers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			stored, err := upsertResource[models.Video](ctx, db, video(projectID, "vid00000001", "Intro"))
			errs[i] = err
			if err == nil {
				ids[i] = stored.ID
			}
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}
	for i := 1; i < writers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("writer %d got id %s, want %s", i, ids[i], ids[0])
		}
	}
	var count int64
	if err := db.Model(&models.Video{}).Where("project_id = ? AND video_id = ?", projectID, "vid00000001").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestUpsertRetriesDuplicateKey(t *testing.T) {
	db := newTestDB(t)
	projectID := uuid.New()
	ctx := context.Background()

	var attempts int32
	err := db.Callback().Create().Before("gorm:create").Register("test:duplicate_once", func(tx *gorm.DB) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	stored, err := upsertResource[models.Video](ctx, db, video(projectID, "vid00000002", "Retry"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.Title != "Retry" || stored.ID == uuid.Nil {
		t.Fatalf("stored = %+v", stored)
	}
	if n := atomic.LoadInt32(&attempts); n != 2 {
		t.Fatalf("attempts = %d, want 2", n)
	}
}
