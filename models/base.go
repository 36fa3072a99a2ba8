package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base enthält Identität und Zeitstempel, die jede Tabelle teilt.
type Base struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate vergibt eine neue UUID, falls noch keine gesetzt ist.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
