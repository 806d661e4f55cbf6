package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/models"
	"docloom/internal/services"
	"docloom/internal/tests/mocks"
)

func TestEditSessionService_RecordRequiresSessionKey(t *testing.T) {
	svc := services.NewEditSessionService(&mocks.EditSessionRepositoryMock{})
	svc.Startup(context.Background())

	_, err := svc.Record("  ", "openai", "openai|gpt-4.1", "", "")
	assert.EqualError(t, err, "session key is required")
}

func TestEditSessionService_RecordTrimsAndDelegates(t *testing.T) {
	var gotProvider, gotModelKey string
	repo := &mocks.EditSessionRepositoryMock{
		UpsertFunc: func(sessionKey, provider, modelKey, documentStructure, lastPrompt string) (*models.EditSession, error) {
			gotProvider = provider
			gotModelKey = modelKey
			return &models.EditSession{SessionKey: sessionKey, Provider: provider, ModelKey: modelKey}, nil
		},
	}
	svc := services.NewEditSessionService(repo)

	sess, err := svc.Record("session-1", " openai ", " openai|gpt-4.1 ", "<doc/>", "write intro")
	assert.NoError(t, err)
	assert.Equal(t, "openai", gotProvider)
	assert.Equal(t, "openai|gpt-4.1", gotModelKey)
	assert.Equal(t, "session-1", sess.SessionKey)
}

func TestEditSessionService_GetBySessionKeyMissingReturnsNil(t *testing.T) {
	svc := services.NewEditSessionService(&mocks.EditSessionRepositoryMock{})

	sess, err := svc.GetBySessionKey("unknown")
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestEditSessionService_DeleteRequiresSessionKey(t *testing.T) {
	svc := services.NewEditSessionService(&mocks.EditSessionRepositoryMock{})

	err := svc.DeleteBySessionKey("")
	assert.EqualError(t, err, "session key is required")
}
