package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"learnhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sortierung der Listen: neueste zuerst, Titel als Tie-Break, NULL-Werte zuletzt.
// Repositories haben kein Datum und werden nach Sternen sortiert.
const (
	videoOrder      = "published_at IS NULL, published_at DESC, title ASC"
	paperOrder      = "year_published IS NULL, year_published DESC, title ASC"
	ebookOrder      = "published_date IS NULL, published_date = '', published_date DESC, title ASC"
	repositoryOrder = "stars DESC, name ASC"
)

// kindOps bündelt die typisierten Datenbankzugriffe einer Ressourcenart.
type kindOps struct {
	list  func(db *gorm.DB, projectID uuid.UUID) (any, error)
	get   func(db *gorm.DB, userID, id uuid.UUID) (models.Resource, error)
	model func() models.Resource
}

var resourceKinds = map[models.Kind]kindOps{
	models.KindVideo:         opsFor[models.Video](videoOrder),
	models.KindAcademicPaper: opsFor[models.AcademicPaper](paperOrder),
	models.KindEBook:         opsFor[models.EBook](ebookOrder),
	models.KindRepository:    opsFor[models.Repository](repositoryOrder),
}

func opsFor[T any, P resourcePtr[T]](order string) kindOps {
	return kindOps{
		list: func(db *gorm.DB, projectID uuid.UUID) (any, error) {
			items := []P{}
			if err := db.Preload("Interactions").Where("project_id = ?", projectID).Order(order).Find(&items).Error; err != nil {
				return nil, err
			}
			for _, item := range items {
				item.SetAverageRating()
			}
			return items, nil
		},
		get: func(db *gorm.DB, userID, id uuid.UUID) (models.Resource, error) {
			item := P(new(T))
			owned := db.Model(&models.Project{}).Select("id").Where("user_id = ?", userID)
			err := db.Preload("Interactions").Where("id = ? AND project_id IN (?)", id, owned).First(item).Error
			if err != nil {
				return nil, err
			}
			item.SetAverageRating()
			return item, nil
		},
		model: func() models.Resource {
			return P(new(T))
		},
	}
}

// ResourceService liest, bewertet und löscht Ressourcen aller vier Arten.
type ResourceService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewResourceService erstellt eine neue Instanz des ResourceService.
func NewResourceService(db *gorm.DB, logger *zap.Logger) *ResourceService {
	return &ResourceService{DB: db, Logger: logger}
}

// InteractionInput ist eine Bewertung oder, ohne Rating, ein Aufruf (Klick).
type InteractionInput struct {
	Rating    *float64
	Relevance *bool
}

func opsOf(kind models.Kind) (kindOps, error) {
	ops, ok := resourceKinds[kind]
	if !ok {
		return kindOps{}, fmt.Errorf("%w: unknown resource kind %q", ErrValidation, kind)
	}
	return ops, nil
}

// List gibt alle Ressourcen einer Art für ein Projekt des Nutzers zurück.
func (s *ResourceService) List(ctx context.Context, userID, projectID uuid.UUID, kind models.Kind) (any, error) {
	ops, err := opsOf(kind)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if _, err := findOwnedProject(db, userID, projectID); err != nil {
		return nil, err
	}
	items, err := ops.list(db, projectID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, nil
}

// Get lädt eine Ressource, sofern sie zu einem Projekt des Nutzers gehört.
func (s *ResourceService) Get(ctx context.Context, userID uuid.UUID, kind models.Kind, id uuid.UUID) (models.Resource, error) {
	ops, err := opsOf(kind)
	if err != nil {
		return nil, err
	}
	return getOwned(s.DB.WithContext(ctx), ops, userID, kind, id)
}

func getOwned(db *gorm.DB, ops kindOps, userID uuid.UUID, kind models.Kind, id uuid.UUID) (models.Resource, error) {
	res, err := ops.get(db, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return res, nil
}

// Delete löscht eine Ressource und ihre Interaktionen. Videos werden zusätzlich aus der
// Video-Liste ihres Projekts entfernt.
func (s *ResourceService) Delete(ctx context.Context, userID uuid.UUID, kind models.Kind, id uuid.UUID) error {
	ops, err := opsOf(kind)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := getOwned(tx, ops, userID, kind, id)
		if err != nil {
			return err
		}
		if err := tx.Where("resource_type = ? AND resource_id = ?", string(kind), id).Delete(&models.Interaction{}).Error; err != nil {
			return fmt.Errorf("delete interactions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(ops.model()).Error; err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		if kind == models.KindVideo {
			project, err := findOwnedProject(tx, userID, res.ProjectRef())
			if err != nil {
				return err
			}
			project.DetachVideo(id)
			if err := tx.Model(project).Update("video_ids", project.VideoIDs).Error; err != nil {
				return fmt.Errorf("detach video: %w", err)
			}
		}
		s.Logger.Info("Ressource gelöscht", zap.String("kind", string(kind)), zap.String("id", id.String()))
		return nil
	})
}

// RecordInteraction speichert die Bewertung eines Nutzers. Ohne Rating zählt der Aufruf als
// Klick: der Zähler steigt um eins, die Interaktionen bleiben unberührt. Mit Rating wird die
// bestehende Interaktion des Nutzers ersetzt oder eine neue angelegt.
func (s *ResourceService) RecordInteraction(ctx context.Context, userID uuid.UUID, kind models.Kind, id uuid.UUID, in InteractionInput) (models.Resource, error) {
	ops, err := opsOf(kind)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		r := *in.Rating
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > 10 {
			return nil, fmt.Errorf("%w: rating must be between 0 and 10", ErrValidation)
		}
	}

	db := s.DB.WithContext(ctx)
	res, err := getOwned(db, ops, userID, kind, id)
	if err != nil {
		return nil, err
	}

	if in.Rating == nil {
		err = db.Model(res).Where("id = ?", id).UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
		if err != nil {
			return nil, fmt.Errorf("count click: %w", err)
		}
		interactionsCounter.WithLabelValues(string(kind), "view").Inc()
	} else {
		interaction := models.Interaction{
			ResourceType: string(kind),
			ResourceID:   id,
			UserID:       userID,
			Rating:       in.Rating,
			Relevance:    in.Relevance,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   toColumns([]string{"resource_type", "resource_id", "user_id"}),
			DoUpdates: clause.AssignmentColumns([]string{"rating", "relevance", "updated_at"}),
		}).Create(&interaction).Error
		if err != nil {
			return nil, fmt.Errorf("save interaction: %w", err)
		}
		interactionsCounter.WithLabelValues(string(kind), "rating").Inc()
	}

	return getOwned(db, ops, userID, kind, id)
}

// Citation formatiert eine Literaturangabe für Papers und E-Books.
func (s *ResourceService) Citation(ctx context.Context, userID uuid.UUID, kind models.Kind, id uuid.UUID) (*Citation, error) {
	if kind != models.KindAcademicPaper && kind != models.KindEBook {
		return nil, fmt.Errorf("%w: citations are only available for academic papers and e-books", ErrValidation)
	}
	res, err := s.Get(ctx, userID, kind, id)
	if err != nil {
		return nil, err
	}
	switch r := res.(type) {
	case *models.AcademicPaper:
		return &Citation{Kind: kind, Reference: FormatPaperReference(r), URL: r.URL}, nil
	case *models.EBook:
		return &Citation{Kind: kind, Reference: FormatEBookReference(r), URL: r.InfoLink}, nil
	}
	return nil, fmt.Errorf("%w: unsupported resource %T", ErrValidation, res)
}
