package models

import "time"

// EditSession records one document-editing session: which document structure
// the agents last saw, the user's last prompt, and the model that served it.
type EditSession struct {
	ID                uint   `gorm:"primaryKey"`
	SessionKey        string `gorm:"size:255;not null;uniqueIndex"`
	Provider          string `gorm:"size:64"`
	ModelKey          string `gorm:"size:128"`
	DocumentStructure string `gorm:"type:text"`
	LastPrompt        string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
