package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docloom/internal/models"
)

type EditSessionRepository interface {
	GetBySessionKey(sessionKey string) (*models.EditSession, error)
	Upsert(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error)
	DeleteBySessionKey(sessionKey string) error
}

type editSessionRepository struct {
	db *gorm.DB
}

func NewEditSessionRepository(db *gorm.DB) EditSessionRepository {
	return &editSessionRepository{db: db}
}

func (r *editSessionRepository) GetBySessionKey(sessionKey string) (*models.EditSession, error) {
	var sess models.EditSession
	res := r.db.Where("session_key = ?", sessionKey).Take(&sess)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &sess, nil
}

func (r *editSessionRepository) Upsert(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("sessionKey is required")
	}
	sess := models.EditSession{
		SessionKey:        sessionKey,
		Provider:          provider,
		ModelKey:          modelKey,
		DocumentStructure: documentStructure,
		LastPrompt:        lastPrompt,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "model_key", "document_structure", "last_prompt", "updated_at"}),
	}).Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *editSessionRepository) DeleteBySessionKey(sessionKey string) error {
	return r.db.Where("session_key = ?", sessionKey).Delete(&models.EditSession{}).Error
}
