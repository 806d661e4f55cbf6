package models

import "time"

type ChunkStatus string

const (
	ChunkStatusPending ChunkStatus = "PENDING"
	ChunkStatusApplied ChunkStatus = "APPLIED"
	ChunkStatusError   ChunkStatus = "ERROR"
)

// ContentChunk is a unit of generated HTML content with an identity
// independent of where it will be placed in a document.
type ContentChunk struct {
	ID                string      `gorm:"primaryKey;size:36" json:"chunk_id"`
	HTML              string      `gorm:"type:text;not null" json:"html"`
	PositionGuideline string      `gorm:"type:text" json:"position_guideline,omitempty"`
	Status            ChunkStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt         time.Time   `json:"-"`
	UpdatedAt         time.Time   `json:"-"`
}
