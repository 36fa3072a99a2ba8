package models

import "github.com/google/uuid"

// Interaction ist die Bewertung eines Nutzers für eine Ressource.
// Pro (Ressource, Nutzer) existiert höchstens ein Eintrag.
type Interaction struct {
	Base

	ResourceType string    `json:"-" gorm:"size:32;not null;uniqueIndex:idx_interactions_resource_user"`
	ResourceID   uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_interactions_resource_user"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_interactions_resource_user"`

	Rating    *float64 `json:"rating"`
	Relevance *bool    `json:"relevance"`
}

// TableName gibt explizit den Tabellennamen an.
func (Interaction) TableName() string {
	return "interactions"
}
