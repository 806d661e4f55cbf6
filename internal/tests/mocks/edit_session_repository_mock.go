package mocks

import (
	"docloom/internal/models"
)

type EditSessionRepositoryMock struct {
	GetBySessionKeyFunc    func(sessionKey string) (*models.EditSession, error)
	UpsertFunc             func(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error)
	DeleteBySessionKeyFunc func(sessionKey string) error
}

func (m *EditSessionRepositoryMock) GetBySessionKey(sessionKey string) (*models.EditSession, error) {
	if m.GetBySessionKeyFunc != nil {
		return m.GetBySessionKeyFunc(sessionKey)
	}
	return nil, nil
}

func (m *EditSessionRepositoryMock) Upsert(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(sessionKey, provider, modelKey, documentStructure, lastPrompt)
	}
	return &models.EditSession{SessionKey: sessionKey, Provider: provider, ModelKey: modelKey}, nil
}

func (m *EditSessionRepositoryMock) DeleteBySessionKey(sessionKey string) error {
	if m.DeleteBySessionKeyFunc != nil {
		return m.DeleteBySessionKeyFunc(sessionKey)
	}
	return nil
}
