package services

import (
	"context"
	"errors"
	"fmt"

	"learnhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService verwaltet Projekte eines Nutzers. Jeder Zugriff ist auf den Eigentümer beschränkt.
type ProjectService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewProjectService erstellt eine neue Instanz des ProjectService.
func NewProjectService(db *gorm.DB, logger *zap.Logger) *ProjectService {
	return &ProjectService{DB: db, Logger: logger}
}

// ProjectDetail ist ein Projekt mit seinen Videos in Listenreihenfolge.
type ProjectDetail struct {
	*models.Project
	VideoList []*models.Video `json:"video_list"`
}

// UpdateProjectInput enthält die änderbaren Felder; nil bedeutet unverändert.
type UpdateProjectInput struct {
	Title    *string
	Keywords []string
}

// Create legt ein Projekt an. Titel und Keywords werden normalisiert.
func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, title string, keywords []string) (*models.Project, error) {
	title = NormalizeLine(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	project := &models.Project{
		UserID:   userID,
		Title:    title,
		Keywords: NormalizeKeywords(keywords),
		VideoIDs: []uuid.UUID{},
	}
	if err := s.DB.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.Logger.Info("Projekt angelegt", zap.String("project_id", project.ID.String()), zap.String("user_id", userID.String()))
	return project, nil
}

// List gibt die Projekte eines Nutzers zurück, neueste zuerst.
func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Find lädt ein Projekt des Nutzers. Fremde Projekte gelten als nicht vorhanden.
func (s *ProjectService) Find(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	return findOwnedProject(s.DB.WithContext(ctx), userID, projectID)
}

// Get lädt ein Projekt mit seinen Videos in der Reihenfolge der Video-Liste.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.Find(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	var videos []*models.Video
	if len(project.VideoIDs) > 0 {
		ids := []uuid.UUID(project.VideoIDs)
		if err := s.DB.WithContext(ctx).Preload("Interactions").Where("id IN ?", ids).Find(&videos).Error; err != nil {
			return nil, fmt.Errorf("load project videos: %w", err)
		}
	}
	byID := make(map[uuid.UUID]*models.Video, len(videos))
	for _, v := range videos {
		v.SetAverageRating()
		byID[v.ID] = v
	}
	ordered := make([]*models.Video, 0, len(project.VideoIDs))
	for _, id := range project.VideoIDs {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return &ProjectDetail{Project: project, VideoList: ordered}, nil
}

// Update ändert Titel und/oder Keywords.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.Find(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Title != nil {
		title := NormalizeLine(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		project.Title = title
		updates["title"] = title
	}
	if in.Keywords != nil {
		project.Keywords = NormalizeKeywords(in.Keywords)
		updates["keywords"] = project.Keywords
	}
	if len(updates) == 0 {
		return project, nil
	}
	if err := s.DB.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete löscht ein Projekt samt aller Ressourcen und deren Interaktionen in einer Transaktion.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := findOwnedProject(tx, userID, projectID)
		if err != nil {
			return err
		}
		for _, res := range []struct {
			kind  models.Kind
			model any
		}{
			{models.KindVideo, &models.Video{}},
			{models.KindAcademicPaper, &models.AcademicPaper{}},
			{models.KindEBook, &models.EBook{}},
			{models.KindRepository, &models.Repository{}},
		} {
			ids := tx.Model(res.model).Select("id").Where("project_id = ?", project.ID)
			if err := tx.Where("resource_type = ? AND resource_id IN (?)", string(res.kind), ids).Delete(&models.Interaction{}).Error; err != nil {
				return fmt.Errorf("delete %s interactions: %w", res.kind, err)
			}
			if err := tx.Where("project_id = ?", project.ID).Delete(res.model).Error; err != nil {
				return fmt.Errorf("delete %s resources: %w", res.kind, err)
			}
		}
		if err := tx.Delete(project).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		s.Logger.Info("Projekt gelöscht", zap.String("project_id", project.ID.String()))
		return nil
	})
}

func findOwnedProject(db *gorm.DB, userID, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &project, nil
}
