package services

import (
	"context"
	"fmt"
	"strings"

	"docloom/internal/models"
	"docloom/internal/repositories"
)

type EditSessionService interface {
	Startup(ctx context.Context)
	GetBySessionKey(sessionKey string) (*models.EditSession, error)
	Record(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error)
	DeleteBySessionKey(sessionKey string) error
}

type editSessionService struct {
	repo repositories.EditSessionRepository
	ctx  context.Context
}

func NewEditSessionService(repo repositories.EditSessionRepository) EditSessionService {
	return &editSessionService{repo: repo}
}

func (s *editSessionService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *editSessionService) GetBySessionKey(sessionKey string) (*models.EditSession, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is required")
	}
	return s.repo.GetBySessionKey(sessionKey)
}

// Record upserts the latest known state of an editing session so a
// reconnecting client can pick up where it left off.
func (s *editSessionService) Record(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is required")
	}
	return s.repo.Upsert(sessionKey, strings.TrimSpace(provider), strings.TrimSpace(modelKey), documentStructure, lastPrompt)
}

func (s *editSessionService) DeleteBySessionKey(sessionKey string) error {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return fmt.Errorf("session key is required")
	}
	return s.repo.DeleteBySessionKey(sessionKey)
}
