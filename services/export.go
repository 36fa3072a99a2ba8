package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub/config"
	"learnhub/models"
	"learnhub/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backupPrefix = "backups/"

// ProjectSnapshot ist ein vollständiger Export eines Projekts.
type ProjectSnapshot struct {
	Project      models.Project         `json:"project"`
	Videos       []models.Video         `json:"videos"`
	Papers       []models.AcademicPaper `json:"academic_papers"`
	EBooks       []models.EBook         `json:"ebooks"`
	Repositories []models.Repository    `json:"repositories"`
}

// ExportResult beschreibt eine hochgeladene Datei.
type ExportResult struct {
	Key        string    `json:"key"`
	Link       string    `json:"link"`
	Size       int       `json:"size"`
	ExportedAt time.Time `json:"exported_at"`
}

// ExportService schreibt Projekt-Exporte und Backups nach S3.
type ExportService struct {
	Config *config.Config
	DB     *gorm.DB
	Bucket *storage.Bucket
	Logger *zap.Logger
	now    func() time.Time
}

// NewExportService erstellt eine neue Instanz des ExportService. bucket darf nil sein.
func NewExportService(cfg *config.Config, db *gorm.DB, bucket *storage.Bucket, logger *zap.Logger) *ExportService {
	return &ExportService{Config: cfg, DB: db, Bucket: bucket, Logger: logger, now: time.Now}
}

// ExportProject exportiert ein Projekt des Nutzers als gzip-komprimiertes JSON.
func (s *ExportService) ExportProject(ctx context.Context, userID, projectID uuid.UUID) (*ExportResult, error) {
	if s.Bucket == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrUnavailable)
	}
	db := s.DB.WithContext(ctx)
	project, err := findOwnedProject(db, userID, projectID)
	if err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(db, *project)
	if err != nil {
		return nil, err
	}

	ts := s.now().UTC()
	key := fmt.Sprintf("exports/%s/%s-%s.json.gz", userID, projectID, ts.Format("2006-01-02T15-04-05Z"))
	return s.upload(ctx, key, snapshot, ts)
}

// BackupAll schreibt alle Projekte in eine Backup-Datei und behält nur die neuesten KEEP_BACKUPS.
func (s *ExportService) BackupAll(ctx context.Context) (*ExportResult, error) {
	if s.Bucket == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrUnavailable)
	}
	db := s.DB.WithContext(ctx)
	var projects []models.Project
	if err := db.Order("created_at asc").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	snapshots := make([]*ProjectSnapshot, 0, len(projects))
	for _, p := range projects {
		snap, err := loadSnapshot(db, p)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	ts := s.now().UTC()
	key := fmt.Sprintf("%sbackup-%s.json.gz", backupPrefix, ts.Format("2006-01-02T15-04-05Z"))
	result, err := s.upload(ctx, key, snapshots, ts)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Backup hochgeladen", zap.String("key", key), zap.Int("projects", len(snapshots)))

	if _, err := s.Bucket.Rotate(ctx, backupPrefix, s.Config.KeepBackups); err != nil {
		return result, fmt.Errorf("rotate backups: %w", err)
	}
	return result, nil
}

// UploadRaw lädt bereits komprimierte Daten als Backup hoch und rotiert danach.
func (s *ExportService) UploadRaw(ctx context.Context, name string, data []byte) (*ExportResult, error) {
	if s.Bucket == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", ErrUnavailable)
	}
	key := backupPrefix + name
	link, err := s.Bucket.UploadFile(ctx, key, data, "application/gzip")
	if err != nil {
		return nil, err
	}
	if _, err := s.Bucket.Rotate(ctx, backupPrefix, s.Config.KeepBackups); err != nil {
		return nil, fmt.Errorf("rotate backups: %w", err)
	}
	return &ExportResult{Key: key, Link: link, Size: len(data), ExportedAt: s.now().UTC()}, nil
}

func (s *ExportService) upload(ctx context.Context, key string, payload any, ts time.Time) (*ExportResult, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress export: %w", err)
	}
	link, err := s.Bucket.UploadFile(ctx, key, buf.Bytes(), "application/gzip")
	if err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, Link: link, Size: buf.Len(), ExportedAt: ts}, nil
}

func loadSnapshot(db *gorm.DB, project models.Project) (*ProjectSnapshot, error) {
	snap := &ProjectSnapshot{Project: project}
	targets := []struct {
		kind  models.Kind
		dest  any
		order string
	}{
		{models.KindVideo, &snap.Videos, videoOrder},
		{models.KindAcademicPaper, &snap.Papers, paperOrder},
		{models.KindEBook, &snap.EBooks, ebookOrder},
		{models.KindRepository, &snap.Repositories, repositoryOrder},
	}
	for _, t := range targets {
		if err := db.Preload("Interactions").Where("project_id = ?", project.ID).Order(t.order).Find(t.dest).Error; err != nil {
			return nil, fmt.Errorf("load %s for export: %w", t.kind, err)
		}
	}
	return snap, nil
}
