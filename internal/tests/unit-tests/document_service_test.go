package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/agents"
	"docloom/internal/htmlcheck"
	"docloom/internal/repositories"
	"docloom/internal/services"
	"docloom/internal/tests/mocks"
)

func newDocumentService(chunkRepo *mocks.ContentChunkRepositoryMock, sessionRepo *mocks.EditSessionRepositoryMock, coordinator *agents.Coordinator) services.DocumentService {
	var repo repositories.ContentChunkRepository = chunkRepo
	return services.NewDocumentService(
		repo,
		services.NewChunkService(chunkRepo),
		services.NewEditSessionService(sessionRepo),
		services.NewModelCatalogService(&mocks.ModelSettingRepositoryMock{}),
		services.NewKeyringService(),
		coordinator,
		htmlcheck.New(),
		services.DocumentServiceConfig{},
	)
}

func TestDocumentService_ApplyChunkRejectsUnknownTypeWithoutSession(t *testing.T) {
	svc := newDocumentService(&mocks.ContentChunkRepositoryMock{}, &mocks.EditSessionRepositoryMock{}, agents.NewCoordinator(0))

	decision, err := svc.ApplyChunk(context.Background(), "session-1", services.ApplyChunkRequest{
		ApplyType: "BOGUS",
	})

	assert.NoError(t, err)
	assert.Equal(t, agents.StatusError, decision.Status)
	assert.Equal(t, agents.PositionSentinel, decision.PositionStart)
	assert.Equal(t, agents.PositionSentinel, decision.PositionEnd)
	assert.Contains(t, decision.Message, "BOGUS")
}

func TestDocumentService_GenerateChunkRequiresDescription(t *testing.T) {
	svc := newDocumentService(&mocks.ContentChunkRepositoryMock{}, &mocks.EditSessionRepositoryMock{}, agents.NewCoordinator(0))

	_, _, err := svc.GenerateChunk(context.Background(), "session-1", services.GenerateChunkRequest{})
	assert.EqualError(t, err, "description is required")
}

func TestDocumentService_GenerateChunkUninitializedSession(t *testing.T) {
	svc := newDocumentService(&mocks.ContentChunkRepositoryMock{}, &mocks.EditSessionRepositoryMock{}, agents.NewCoordinator(0))

	_, _, err := svc.GenerateChunk(context.Background(), "session-1", services.GenerateChunkRequest{
		Description: "write an intro",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestDocumentService_ResolveApplyWithoutPendingFails(t *testing.T) {
	svc := newDocumentService(&mocks.ContentChunkRepositoryMock{}, &mocks.EditSessionRepositoryMock{}, agents.NewCoordinator(0))

	err := svc.ResolveApply("session-1", agents.StatusSuccess, "")
	assert.Error(t, err)
}

func TestDocumentService_CloseSessionCancelsPendingApply(t *testing.T) {
	coordinator := agents.NewCoordinator(0)
	svc := newDocumentService(&mocks.ContentChunkRepositoryMock{}, &mocks.EditSessionRepositoryMock{}, coordinator)

	assert.NoError(t, coordinator.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, func(agents.ApplyOutcome) {}))
	_, pending := svc.PendingApply("session-1")
	assert.True(t, pending)

	svc.CloseSession("session-1")
	_, pending = svc.PendingApply("session-1")
	assert.False(t, pending)
}
