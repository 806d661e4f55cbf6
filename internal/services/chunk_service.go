package services

import (
	"context"
	"fmt"
	"strings"

	"docloom/internal/models"
	"docloom/internal/repositories"
)

type ChunkService interface {
	Startup(ctx context.Context)
	Save(chunk *models.ContentChunk) error
	GetByID(id string) (*models.ContentChunk, error)
	MarkApplied(id string) error
	Recent() []models.ContentChunk
}

type chunkService struct {
	repo repositories.ContentChunkRepository
	ctx  context.Context
}

func NewChunkService(repo repositories.ContentChunkRepository) ChunkService {
	return &chunkService{repo: repo}
}

func (s *chunkService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *chunkService) Save(chunk *models.ContentChunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is required")
	}
	chunk.HTML = strings.TrimSpace(chunk.HTML)
	return s.repo.Save(chunk)
}

func (s *chunkService) GetByID(id string) (*models.ContentChunk, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("chunk ID is required")
	}
	return s.repo.LoadByID(id)
}

func (s *chunkService) MarkApplied(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("chunk ID is required")
	}
	return s.repo.UpdateStatus(id, models.ChunkStatusApplied)
}

func (s *chunkService) Recent() []models.ContentChunk {
	return s.repo.RecentChunks()
}
