package mocks

import (
	"docloom/internal/models"
)

type ContentChunkRepositoryMock struct {
	SaveFunc         func(chunk *models.ContentChunk) error
	LoadByIDFunc     func(id string) (*models.ContentChunk, error)
	UpdateStatusFunc func(id string, status models.ChunkStatus) error
	RecentChunksFunc func() []models.ContentChunk
}

func (m *ContentChunkRepositoryMock) Save(chunk *models.ContentChunk) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(chunk)
	}
	return nil
}

func (m *ContentChunkRepositoryMock) LoadByID(id string) (*models.ContentChunk, error) {
	if m.LoadByIDFunc != nil {
		return m.LoadByIDFunc(id)
	}
	return nil, nil
}

func (m *ContentChunkRepositoryMock) UpdateStatus(id string, status models.ChunkStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(id, status)
	}
	return nil
}

func (m *ContentChunkRepositoryMock) RecentChunks() []models.ContentChunk {
	if m.RecentChunksFunc != nil {
		return m.RecentChunksFunc()
	}
	return []models.ContentChunk{}
}
