package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project ist eine Keyword-Sammlung eines Nutzers, zu der Lernressourcen gesammelt werden.
type Project struct {
	Base

	UserID        uuid.UUID                      `json:"uid" gorm:"type:uuid;not null;index"`
	Title         string                         `json:"title" gorm:"not null"`
	Keywords      datatypes.JSONSlice[string]    `json:"keywords"`
	VideosFetched bool                           `json:"videos_fetched" gorm:"default:false"`
	VideoIDs      datatypes.JSONSlice[uuid.UUID] `json:"videos"`
}

// TableName gibt explizit den Tabellennamen an.
func (Project) TableName() string {
	return "projects"
}

// AttachVideos hängt IDs an, die noch nicht in der Liste stehen.
func (p *Project) AttachVideos(ids []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(p.VideoIDs))
	for _, id := range p.VideoIDs {
		seen[id] = true
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p.VideoIDs = append(p.VideoIDs, id)
	}
}

// DetachVideo entfernt eine Video-ID aus der Liste.
func (p *Project) DetachVideo(id uuid.UUID) {
	kept := p.VideoIDs[:0]
	for _, v := range p.VideoIDs {
		if v != id {
			kept = append(kept, v)
		}
	}
	p.VideoIDs = kept
}
