package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"docloom/internal/agents"
	"docloom/internal/events"
	"docloom/internal/llm/client"
	"docloom/internal/models"
	"docloom/internal/repositories"
)

const generationErrorPlaceholder = "<p><span>Error generating content.</span></p>"

// GenerateChunkRequest is one content generation request scoped to a session.
type GenerateChunkRequest struct {
	Description       string `json:"description"`
	StyleGuidelines   string `json:"style_guidelines,omitempty"`
	Context           string `json:"context,omitempty"`
	DocumentStructure string `json:"document_structure,omitempty"`
	PositionGuideline string `json:"position_guideline,omitempty"`
}

// ApplyChunkRequest asks for a location decision for a document mutation.
type ApplyChunkRequest struct {
	ApplyType         string `json:"apply_type"`
	ChunkID           string `json:"chunk_id,omitempty"`
	DocumentStructure string `json:"document_structure"`
	LastPrompt        string `json:"last_prompt,omitempty"`
}

type DocumentService interface {
	Startup(ctx context.Context)
	InitSession(ctx context.Context, sessionKey, modelKey string) error
	GenerateChunk(ctx context.Context, sessionKey string, req GenerateChunkRequest) (*models.ContentChunk, agents.GenerationResult, error)
	ApplyChunk(ctx context.Context, sessionKey string, req ApplyChunkRequest) (agents.LocationDecision, error)
	ResolveApply(sessionKey string, status agents.Status, message string) error
	PendingApply(sessionKey string) (agents.ApplyRequest, bool)
	CloseSession(sessionKey string)
}

// DocumentServiceConfig tunes the per-session agents.
type DocumentServiceConfig struct {
	AcceptanceThreshold int
	MaxRetries          int
	StepDelay           time.Duration
	// ApplyTTL bounds how long an apply request may stay suspended waiting
	// for the client. Zero means forever.
	ApplyTTL time.Duration
}

// sessionRuntime holds the model client and agents bound to one session.
type sessionRuntime struct {
	client     *client.LLMClient
	htmlAgent  *agents.HTMLAgent
	applyAgent *agents.ApplyAgent
	provider   string
	modelKey   string
}

type documentService struct {
	chunkRepo   repositories.ContentChunkRepository
	chunks      ChunkService
	sessions    EditSessionService
	catalog     ModelCatalogService
	keyring     *KeyringService
	coordinator *agents.Coordinator
	validator   agents.Validator
	cfg         DocumentServiceConfig
	ctx         context.Context

	mu       sync.RWMutex
	runtimes map[string]*sessionRuntime
}

func NewDocumentService(
	chunkRepo repositories.ContentChunkRepository,
	chunks ChunkService,
	sessions EditSessionService,
	catalog ModelCatalogService,
	keyring *KeyringService,
	coordinator *agents.Coordinator,
	validator agents.Validator,
	cfg DocumentServiceConfig,
) DocumentService {
	if cfg.AcceptanceThreshold == 0 {
		cfg.AcceptanceThreshold = agents.DefaultAcceptanceThreshold
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = agents.DefaultMaxRetries
	}
	return &documentService{
		chunkRepo:   chunkRepo,
		chunks:      chunks,
		sessions:    sessions,
		catalog:     catalog,
		keyring:     keyring,
		coordinator: coordinator,
		validator:   validator,
		cfg:         cfg,
		runtimes:    make(map[string]*sessionRuntime),
	}
}

func (s *documentService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// InitSession binds a session to a model, replacing any previous binding.
func (s *documentService) InitSession(ctx context.Context, sessionKey, modelKey string) error {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return fmt.Errorf("session key is required")
	}
	runtime, err := s.newSessionRuntime(ctx, modelKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.runtimes[sessionKey] = runtime
	s.mu.Unlock()

	if _, err := s.sessions.Record(sessionKey, runtime.provider, runtime.modelKey, "", ""); err != nil {
		return err
	}
	return nil
}

func (s *documentService) GenerateChunk(ctx context.Context, sessionKey string, req GenerateChunkRequest) (*models.ContentChunk, agents.GenerationResult, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, agents.GenerationResult{}, fmt.Errorf("session key is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, agents.GenerationResult{}, fmt.Errorf("description is required")
	}

	runtime, err := s.runtimeFor(ctx, sessionKey)
	if err != nil {
		return nil, agents.GenerationResult{}, err
	}

	ctx = events.WithSession(ctx, sessionKey)
	events.Emit(ctx, events.AgentGenerate, events.CreateAgentEvent(events.EventInfo, "Generating content"))

	result := runtime.htmlAgent.Run(ctx, agents.GenerationRequest{
		Description:       req.Description,
		StyleGuidelines:   req.StyleGuidelines,
		Context:           req.Context,
		DocumentStructure: req.DocumentStructure,
	})

	chunk := &models.ContentChunk{
		PositionGuideline: req.PositionGuideline,
	}
	if result.Status == agents.StatusSuccess {
		chunk.HTML = result.HTML
		chunk.Status = models.ChunkStatusPending
	} else {
		// Persist a placeholder so the failed request stays addressable.
		chunk.HTML = generationErrorPlaceholder
		chunk.Status = models.ChunkStatusError
	}
	if err := s.chunks.Save(chunk); err != nil {
		return nil, result, fmt.Errorf("failed to save content chunk: %w", err)
	}

	if _, err := s.sessions.Record(sessionKey, runtime.provider, runtime.modelKey, req.DocumentStructure, req.Description); err != nil {
		return nil, result, err
	}

	eventType := events.EventSuccess
	message := "Content generated"
	if result.Status != agents.StatusSuccess {
		eventType = events.EventError
		message = "Content generation failed"
	}
	events.Emit(ctx, events.AgentGenerateDone, events.CreateAgentEventWithMetadata(eventType, message, map[string]string{
		"chunk_id": chunk.ID,
		"score":    fmt.Sprintf("%d", result.Score),
	}))
	return chunk, result, nil
}

func (s *documentService) ApplyChunk(ctx context.Context, sessionKey string, req ApplyChunkRequest) (agents.LocationDecision, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return agents.LocationDecision{}, fmt.Errorf("session key is required")
	}

	ctx = events.WithSession(ctx, sessionKey)

	applyType, err := agents.ParseApplyType(req.ApplyType)
	if err != nil {
		// Not retryable and no model involved; fold into the decision shape.
		return agents.LocationDecision{
			Status:        agents.StatusError,
			PositionStart: agents.PositionSentinel,
			PositionEnd:   agents.PositionSentinel,
			Message:       err.Error(),
		}, nil
	}

	runtime, rErr := s.runtimeFor(ctx, sessionKey)
	if rErr != nil {
		return agents.LocationDecision{}, rErr
	}

	decision := runtime.applyAgent.Decide(ctx, agents.DecideRequest{
		Type:              applyType,
		DocumentStructure: req.DocumentStructure,
		LastPrompt:        req.LastPrompt,
		ChunkID:           req.ChunkID,
	})
	if decision.Status != agents.StatusSuccess {
		return decision, nil
	}

	chunkID := req.ChunkID
	resolveCtx := events.WithSession(context.Background(), sessionKey)
	onResolved := func(outcome agents.ApplyOutcome) {
		if outcome.Status == agents.StatusSuccess && chunkID != "" {
			if err := s.chunks.MarkApplied(chunkID); err != nil {
				events.Emit(resolveCtx, events.AgentApplyResolved, events.CreateAgentEvent(events.EventError,
					fmt.Sprintf("failed to mark chunk %s applied: %v", chunkID, err)))
				return
			}
		}
		events.Emit(resolveCtx, events.AgentApplyResolved, events.CreateAgentEventWithMetadata(
			toEventType(outcome.Status), "Apply resolved", map[string]string{
				"chunk_id": chunkID,
				"message":  outcome.Message,
			}))
	}

	if err := s.coordinator.RequestApply(ctx, sessionKey, agents.ApplyRequest{
		Type:          applyType,
		ChunkID:       chunkID,
		ChunkHTML:     decision.ChunkHTML,
		PositionStart: decision.PositionStart,
		PositionEnd:   decision.PositionEnd,
	}, onResolved); err != nil {
		return decision, err
	}

	if _, err := s.sessions.Record(sessionKey, runtime.provider, runtime.modelKey, req.DocumentStructure, req.LastPrompt); err != nil {
		return decision, err
	}
	return decision, nil
}

func (s *documentService) ResolveApply(sessionKey string, status agents.Status, message string) error {
	return s.coordinator.Resume(strings.TrimSpace(sessionKey), agents.ApplyOutcome{Status: status, Message: message})
}

func (s *documentService) PendingApply(sessionKey string) (agents.ApplyRequest, bool) {
	return s.coordinator.Pending(strings.TrimSpace(sessionKey))
}

func (s *documentService) CloseSession(sessionKey string) {
	sessionKey = strings.TrimSpace(sessionKey)
	s.coordinator.Cancel(sessionKey)
	s.mu.Lock()
	delete(s.runtimes, sessionKey)
	s.mu.Unlock()
}

// runtimeFor returns the session's runtime, rebuilding it from the persisted
// session record when the process restarted since the session was bound.
func (s *documentService) runtimeFor(ctx context.Context, sessionKey string) (*sessionRuntime, error) {
	s.mu.RLock()
	runtime, ok := s.runtimes[sessionKey]
	s.mu.RUnlock()
	if ok {
		return runtime, nil
	}

	sess, err := s.sessions.GetBySessionKey(sessionKey)
	if err != nil {
		return nil, err
	}
	if sess == nil || strings.TrimSpace(sess.ModelKey) == "" {
		return nil, fmt.Errorf("session %s is not initialized with a model", sessionKey)
	}
	runtime, err = s.newSessionRuntime(ctx, sess.ModelKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.runtimes[sessionKey] = runtime
	s.mu.Unlock()
	return runtime, nil
}

func (s *documentService) newSessionRuntime(ctx context.Context, modelKey string) (*sessionRuntime, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model is required")
	}
	model, err := s.catalog.GetModel(modelKey)
	if err != nil {
		return nil, err
	}
	if !model.Enabled {
		return nil, fmt.Errorf("model %s is disabled", model.DisplayName)
	}

	apiKey, err := s.keyring.GetApiKey(model.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for %s: %w", model.ProviderID, err)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key for %s is not configured", model.ProviderID)
	}

	var (
		llmClient *client.LLMClient
		createErr error
	)
	switch model.ProviderID {
	case "anthropic":
		llmClient, createErr = client.NewClaudeClient(ctx, apiKey, client.ClaudeModelOptions{Model: model.APIName})
	case "openai":
		llmClient, createErr = client.NewOpenAIClient(ctx, apiKey, client.OpenAIModelOptions{Model: model.APIName})
	case "gemini":
		llmClient, createErr = client.NewGeminiClient(ctx, apiKey, client.GeminiModelOptions{Model: model.APIName})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", model.ProviderID)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", model.ProviderID, createErr)
	}

	htmlAgent, err := agents.NewHTMLAgent(llmClient, s.validator, agents.HTMLAgentConfig{
		AcceptanceThreshold: s.cfg.AcceptanceThreshold,
		MaxRetries:          s.cfg.MaxRetries,
		StepDelay:           s.cfg.StepDelay,
	})
	if err != nil {
		return nil, err
	}
	applyAgent, err := agents.NewApplyAgent(llmClient, s.chunkRepo, agents.ApplyAgentConfig{
		MaxRetries: s.cfg.MaxRetries,
		StepDelay:  s.cfg.StepDelay,
	})
	if err != nil {
		return nil, err
	}

	return &sessionRuntime{
		client:     llmClient,
		htmlAgent:  htmlAgent,
		applyAgent: applyAgent,
		provider:   model.ProviderID,
		modelKey:   modelKey,
	}, nil
}

func toEventType(status agents.Status) events.EventType {
	if status == agents.StatusSuccess {
		return events.EventSuccess
	}
	return events.EventError
}
