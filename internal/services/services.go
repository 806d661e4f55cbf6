package services

import (
	"context"

	"gorm.io/gorm"

	"docloom/internal/agents"
	"docloom/internal/htmlcheck"
	"docloom/internal/repositories"
)

// Services aggregates the domain services backed by the database.
type Services struct {
	Chunks    ChunkService
	Sessions  EditSessionService
	Models    ModelCatalogService
	Keyring   *KeyringService
	Documents DocumentService

	Coordinator *agents.Coordinator
}

// NewServices constructs the service container using repositories backed by db.
func NewServices(db *gorm.DB, cfg DocumentServiceConfig) *Services {
	chunkRepo := repositories.NewContentChunkRepository(db)
	sessionRepo := repositories.NewEditSessionRepository(db)
	settingRepo := repositories.NewModelSettingRepository(db)

	chunks := NewChunkService(chunkRepo)
	sessions := NewEditSessionService(sessionRepo)
	catalog := NewModelCatalogService(settingRepo)
	keyring := NewKeyringService()
	coordinator := agents.NewCoordinator(cfg.ApplyTTL)
	validator := htmlcheck.New()

	return &Services{
		Chunks:      chunks,
		Sessions:    sessions,
		Models:      catalog,
		Keyring:     keyring,
		Coordinator: coordinator,
		Documents: NewDocumentService(
			chunkRepo, chunks, sessions, catalog, keyring, coordinator, validator, cfg,
		),
	}
}

// Startup propagates the application context to every stateful service.
func (s *Services) Startup(ctx context.Context) error {
	s.Chunks.Startup(ctx)
	s.Sessions.Startup(ctx)
	s.Documents.Startup(ctx)
	return s.Models.Startup(ctx)
}
