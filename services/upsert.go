package services

import (
	"context"
	"errors"
	"fmt"

	"learnhub/models"
	"learnhub/providers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// resourcePtr verbindet einen Modelltyp T mit seinem Zeigertyp, der models.Resource implementiert.
type resourcePtr[T any] interface {
	*T
	models.Resource
}

// upsertResource speichert eine Ressource über (project_id, externe ID). Existiert der Datensatz,
// werden alle normalisierten Felder überschrieben; ID, created_at, clicks und Interaktionen bleiben.
// Danach wird der gespeicherte Stand samt Interaktionen neu gelesen.
func upsertResource[T any, P resourcePtr[T]](ctx context.Context, db *gorm.DB, item P) (P, error) {
	normalizeResource(item)
	if item.ExternalKey() == "" {
		return nil, fmt.Errorf("%w: %s without external id", ErrValidation, item.Kind())
	}

	conflict := clause.OnConflict{
		Columns:   toColumns(item.ConflictColumns()),
		DoUpdates: clause.AssignmentColumns(append(item.UpdateColumns(), "updated_at")),
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = db.WithContext(ctx).Clauses(conflict).Omit(clause.Associations).Create(item).Error
		// Ein Duplicate-Key trotz ON CONFLICT heißt: ein paralleler Schreiber war schneller.
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("upsert %s %q: %w", item.Kind(), item.ExternalKey(), err)
	}

	stored := P(new(T))
	if err := db.WithContext(ctx).Preload("Interactions").Where(item.UpsertKey()).First(stored).Error; err != nil {
		return nil, fmt.Errorf("reload %s %q: %w", item.Kind(), item.ExternalKey(), err)
	}
	stored.SetAverageRating()
	resourcesUpsertedCounter.WithLabelValues(string(item.Kind())).Inc()
	return stored, nil
}

// upsertBatch fasst einen Batch über die externe ID zusammen und speichert die Einträge parallel.
// Fehler einzelner Einträge werden geloggt und übersprungen. Die Reihenfolge bleibt erhalten.
func upsertBatch[T any, P resourcePtr[T]](ctx context.Context, db *gorm.DB, log *zap.Logger, limit int, items []*T) []*T {
	items = providers.DedupeByKey(items, func(t *T) string { return P(t).ExternalKey() })
	if len(items) == 0 {
		return []*T{}
	}
	if limit <= 0 {
		limit = 1
	}

	stored := make([]*T, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			saved, err := upsertResource[T, P](ctx, db, P(item))
			if err != nil {
				log.Warn("Konnte Ressource nicht speichern", zap.String("external_id", P(item).ExternalKey()), zap.Error(err))
				return nil
			}
			stored[i] = (*T)(saved)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*T, 0, len(stored))
	for _, s := range stored {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func toColumns(names []string) []clause.Column {
	cols := make([]clause.Column, len(names))
	for i, n := range names {
		cols[i] = clause.Column{Name: n}
	}
	return cols
}
