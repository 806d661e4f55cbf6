package repositories

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docloom/internal/models"
)

const defaultRecentChunkCap = 10

type ContentChunkRepository interface {
	Save(chunk *models.ContentChunk) error
	LoadByID(id string) (*models.ContentChunk, error)
	UpdateStatus(id string, status models.ChunkStatus) error
	RecentChunks() []models.ContentChunk
}

type contentChunkRepository struct {
	db *gorm.DB

	// most-recent-first cache of saved chunks, capped at recentCap
	cacheMu      sync.Mutex
	recentChunks []models.ContentChunk
	recentCap    int
}

func NewContentChunkRepository(db *gorm.DB) ContentChunkRepository {
	return &contentChunkRepository{db: db, recentCap: defaultRecentChunkCap}
}

func (r *contentChunkRepository) Save(chunk *models.ContentChunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is required")
	}
	if strings.TrimSpace(chunk.ID) == "" {
		chunk.ID = uuid.NewString()
	}
	if chunk.Status == "" {
		chunk.Status = models.ChunkStatusPending
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"html", "position_guideline", "status", "updated_at"}),
	}).Create(chunk).Error; err != nil {
		return err
	}
	r.addToCache(*chunk)
	return nil
}

func (r *contentChunkRepository) LoadByID(id string) (*models.ContentChunk, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("chunk id is required")
	}
	var chunk models.ContentChunk
	res := r.db.Where("id = ?", id).Take(&chunk)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &chunk, nil
}

func (r *contentChunkRepository) UpdateStatus(id string, status models.ChunkStatus) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("chunk id is required")
	}
	return r.db.Model(&models.ContentChunk{}).Where("id = ?", id).Update("status", status).Error
}

func (r *contentChunkRepository) RecentChunks() []models.ContentChunk {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	out := make([]models.ContentChunk, len(r.recentChunks))
	copy(out, r.recentChunks)
	return out
}

func (r *contentChunkRepository) addToCache(chunk models.ContentChunk) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.recentChunks = append([]models.ContentChunk{chunk}, r.recentChunks...)
	if len(r.recentChunks) > r.recentCap {
		r.recentChunks = r.recentChunks[:r.recentCap]
	}
}
