package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"learnhub/config"
	"learnhub/models"
	"learnhub/providers"
	"learnhub/providers/youtube"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// videoWarning wird zurückgegeben, wenn das Projekt angelegt wurde, die Videosuche aber scheiterte.
const videoWarning = "Failed to fetch videos, but project was created"

// VideoSource ist eine Videoquelle, die zusätzlich einzelne Videos per ID auflösen kann.
type VideoSource interface {
	providers.Source[models.Video]
	Lookup(ctx context.Context, projectID uuid.UUID, videoID string) (*models.Video, error)
}

// Sources bündelt die aktivierten Quellen. Nicht aktivierte Quellen bleiben nil.
type Sources struct {
	Videos       VideoSource
	Papers       providers.Source[models.AcademicPaper]
	EBooks       providers.Source[models.EBook]
	Repositories providers.Source[models.Repository]
}

// IngestService orchestriert die Suche in externen Quellen und das Speichern der Treffer.
type IngestService struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Sources  Sources
	Projects *ProjectService
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, sources Sources, projects *ProjectService) *IngestService {
	return &IngestService{Config: cfg, DB: db, Logger: logger, Sources: sources, Projects: projects}
}

// CreateProjectInput sind die Angaben zum Anlegen eines Projekts.
type CreateProjectInput struct {
	Title       string
	Keywords    []string
	FetchVideos *bool
}

// CreateProjectResult enthält das Projekt und die bei der Anlage gefundenen Videos.
type CreateProjectResult struct {
	Project     *models.Project `json:"project"`
	Videos      []*models.Video `json:"videos"`
	TotalVideos int             `json:"totalVideos"`
	Warning     string          `json:"warning,omitempty"`
}

// SourceReport ist das Ergebnis einer Quelle bei einem Refresh.
type SourceReport struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// CreateProject legt ein Projekt an und sucht, sofern nicht abgeschaltet, direkt Videos dazu.
// Ein Fehler der Videosuche rollt das Projekt nicht zurück, sondern liefert eine Warnung.
func (s *IngestService) CreateProject(ctx context.Context, userID uuid.UUID, in CreateProjectInput) (*CreateProjectResult, error) {
	fetch := in.FetchVideos == nil || *in.FetchVideos
	keywords := NormalizeKeywords(in.Keywords)
	if NormalizeLine(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if fetch && len(keywords) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", ErrValidation)
	}

	project, err := s.Projects.Create(ctx, userID, in.Title, keywords)
	if err != nil {
		return nil, err
	}
	result := &CreateProjectResult{Project: project, Videos: []*models.Video{}}
	if !fetch {
		return result, nil
	}

	videos, err := s.ingestVideos(ctx, project, keywords)
	if err != nil {
		s.Logger.Warn("Videosuche bei Projektanlage fehlgeschlagen",
			zap.String("project_id", project.ID.String()), zap.Error(err))
		result.Warning = videoWarning
		return result, nil
	}
	result.Videos = videos
	result.TotalVideos = len(videos)
	return result, nil
}

// IngestVideos sucht erneut Videos für ein Projekt des Nutzers.
func (s *IngestService) IngestVideos(ctx context.Context, userID, projectID uuid.UUID, keywords []string) ([]*models.Video, error) {
	project, kws, err := s.prepare(ctx, userID, projectID, keywords)
	if err != nil {
		return nil, err
	}
	return s.ingestVideos(ctx, project, kws)
}

// ingestVideos sucht, speichert parallel und hängt die IDs danach in einer Transaktion an das Projekt.
func (s *IngestService) ingestVideos(ctx context.Context, project *models.Project, keywords []string) ([]*models.Video, error) {
	if s.Sources.Videos == nil {
		return nil, providers.Disabled("youtube")
	}
	log := s.Logger.With(zap.String("project_id", project.ID.String()), zap.String("source", s.Sources.Videos.Name()))

	found, err := s.Sources.Videos.Search(ctx, project.ID, keywords)
	if err != nil {
		sourceFailuresCounter.WithLabelValues(s.Sources.Videos.Name()).Inc()
		return nil, err
	}
	videos := upsertBatch[models.Video](ctx, s.DB, log, s.Config.FetchConcurrency, found)

	ids := make([]uuid.UUID, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	if err := s.attachVideos(ctx, project, ids); err != nil {
		return nil, err
	}
	log.Info("Videos gespeichert", zap.Int("found", len(found)), zap.Int("stored", len(videos)))
	return videos, nil
}

func (s *IngestService) attachVideos(ctx context.Context, project *models.Project, ids []uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Project
		if err := tx.First(&current, "id = ?", project.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: project %s", ErrNotFound, project.ID)
			}
			return err
		}
		current.AttachVideos(ids)
		err := tx.Model(&current).Updates(map[string]any{
			"video_ids":      current.VideoIDs,
			"videos_fetched": true,
		}).Error
		if err != nil {
			return fmt.Errorf("attach videos: %w", err)
		}
		project.VideoIDs = current.VideoIDs
		project.VideosFetched = true
		return nil
	})
}

// AddVideo fügt einem Projekt ein einzelnes Video über seine URL hinzu.
func (s *IngestService) AddVideo(ctx context.Context, userID, projectID uuid.UUID, videoURL string) (*models.Video, error) {
	videoID, ok := youtube.ExtractVideoID(videoURL)
	if !ok {
		return nil, fmt.Errorf("%w: invalid YouTube URL", ErrValidation)
	}
	project, err := s.Projects.Find(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if s.Sources.Videos == nil {
		return nil, providers.Disabled("youtube")
	}

	video, err := s.Sources.Videos.Lookup(ctx, project.ID, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoNotFound) {
			return nil, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		sourceFailuresCounter.WithLabelValues(s.Sources.Videos.Name()).Inc()
		return nil, err
	}
	stored, err := upsertResource[models.Video](ctx, s.DB, video)
	if err != nil {
		return nil, err
	}
	if err := s.attachVideos(ctx, project, []uuid.UUID{stored.ID}); err != nil {
		return nil, err
	}
	return stored, nil
}

// IngestPapers sucht Papers bei CORE und speichert sie für das Projekt.
func (s *IngestService) IngestPapers(ctx context.Context, userID, projectID uuid.UUID, keywords []string) ([]*models.AcademicPaper, error) {
	project, kws, err := s.prepare(ctx, userID, projectID, keywords)
	if err != nil {
		return nil, err
	}
	return ingest[models.AcademicPaper](ctx, s, s.Sources.Papers, "core", project, kws)
}

// IngestEBooks sucht E-Books bei Google Books und speichert sie für das Projekt.
func (s *IngestService) IngestEBooks(ctx context.Context, userID, projectID uuid.UUID, keywords []string) ([]*models.EBook, error) {
	project, kws, err := s.prepare(ctx, userID, projectID, keywords)
	if err != nil {
		return nil, err
	}
	return ingest[models.EBook](ctx, s, s.Sources.EBooks, "googlebooks", project, kws)
}

// IngestRepositories sucht Repositories bei GitHub und speichert sie für das Projekt.
func (s *IngestService) IngestRepositories(ctx context.Context, userID, projectID uuid.UUID, keywords []string) ([]*models.Repository, error) {
	project, kws, err := s.prepare(ctx, userID, projectID, keywords)
	if err != nil {
		return nil, err
	}
	return ingest[models.Repository](ctx, s, s.Sources.Repositories, "github", project, kws)
}

// prepare prüft den Eigentümer und wählt die Keywords: übergebene, sonst die des Projekts.
func (s *IngestService) prepare(ctx context.Context, userID, projectID uuid.UUID, keywords []string) (*models.Project, []string, error) {
	kws := NormalizeKeywords(keywords)
	project, err := s.Projects.Find(ctx, userID, projectID)
	if err != nil {
		return nil, nil, err
	}
	if len(kws) == 0 {
		kws = NormalizeKeywords(project.Keywords)
	}
	if len(kws) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one keyword is required", ErrValidation)
	}
	return project, kws, nil
}

func ingest[T any, P resourcePtr[T]](ctx context.Context, s *IngestService, src providers.Source[T], name string, project *models.Project, keywords []string) ([]*T, error) {
	if src == nil {
		return nil, providers.Disabled(name)
	}
	log := s.Logger.With(zap.String("project_id", project.ID.String()), zap.String("source", src.Name()))

	found, err := src.Search(ctx, project.ID, keywords)
	if err != nil {
		sourceFailuresCounter.WithLabelValues(src.Name()).Inc()
		log.Warn("Suche fehlgeschlagen", zap.Error(err))
		return nil, err
	}
	stored := upsertBatch[T, P](ctx, s.DB, log, s.Config.FetchConcurrency, found)
	log.Info("Ressourcen gespeichert", zap.Int("found", len(found)), zap.Int("stored", len(stored)))
	return stored, nil
}

// RefreshProject führt alle vier Quellen parallel für ein Projekt aus.
// Fehler einer Quelle landen im Bericht und blockieren die anderen nicht.
func (s *IngestService) RefreshProject(ctx context.Context, project *models.Project) []SourceReport {
	keywords := NormalizeKeywords(project.Keywords)
	if len(keywords) == 0 {
		return []SourceReport{{Source: "all", Error: "project has no keywords"}}
	}

	jobs := []struct {
		name string
		run  func() (int, error)
	}{
		{"youtube", func() (int, error) {
			v, err := s.ingestVideos(ctx, project, keywords)
			return len(v), err
		}},
		{"core", func() (int, error) {
			v, err := ingest[models.AcademicPaper](ctx, s, s.Sources.Papers, "core", project, keywords)
			return len(v), err
		}},
		{"googlebooks", func() (int, error) {
			v, err := ingest[models.EBook](ctx, s, s.Sources.EBooks, "googlebooks", project, keywords)
			return len(v), err
		}},
		{"github", func() (int, error) {
			v, err := ingest[models.Repository](ctx, s, s.Sources.Repositories, "github", project, keywords)
			return len(v), err
		}},
	}

	reports := make([]SourceReport, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := job.run()
			reports[i] = SourceReport{Source: job.name, Count: count}
			if err != nil {
				reports[i].Error = err.Error()
			}
		}()
	}
	wg.Wait()
	return reports
}

// RefreshOwned lädt ein Projekt des Nutzers und aktualisiert es.
func (s *IngestService) RefreshOwned(ctx context.Context, userID, projectID uuid.UUID) ([]SourceReport, error) {
	project, err := s.Projects.Find(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.RefreshProject(ctx, project), nil
}

// RefreshAll aktualisiert alle Projekte nacheinander. Gibt die Zahl gespeicherter Ressourcen zurück.
func (s *IngestService) RefreshAll(ctx context.Context) (int, error) {
	var projects []models.Project
	if err := s.DB.WithContext(ctx).Order("created_at asc").Find(&projects).Error; err != nil {
		return 0, fmt.Errorf("load projects: %w", err)
	}

	total := 0
	for i := range projects {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		reports := s.RefreshProject(ctx, &projects[i])
		var failed []string
		for _, r := range reports {
			total += r.Count
			if r.Error != "" {
				failed = append(failed, r.Source)
			}
		}
		s.Logger.Info("Projekt aktualisiert",
			zap.String("project_id", projects[i].ID.String()),
			zap.String("failed_sources", strings.Join(failed, ",")))
	}
	return total, nil
}
