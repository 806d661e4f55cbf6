package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"docloom/internal/llm/parse"
)

// PositionSentinel marks a position field that never received a valid value,
// so callers can detect that no decision was produced.
const PositionSentinel = "-1"

// DecideRequest carries the inputs of one location decision.
type DecideRequest struct {
	Type              ApplyType
	DocumentStructure string
	LastPrompt        string
	ChunkID           string
}

// LocationDecision is the apply agent's result: where in the document the
// mutation lands. For INSERT both positions denote the same anchor element;
// for EDIT and DELETE they denote the inclusive range to replace or remove.
type LocationDecision struct {
	Status        Status `json:"status"`
	PositionStart string `json:"position_start"`
	PositionEnd   string `json:"position_end"`
	ChunkHTML     string `json:"-"`
	Message       string `json:"message,omitempty"`
}

// ApplyAgentConfig configures one apply agent.
type ApplyAgentConfig struct {
	MaxRetries int
	StepDelay  time.Duration
}

// ApplyAgent asks the model to pick a target position range for a document
// mutation, parses the free-text answer into a structured decision, and
// retries on malformed output. Input errors (unknown action, missing chunk)
// fail immediately without consuming retry budget or calling the model.
type ApplyAgent struct {
	generator Generator
	chunks    ChunkStore
	moderator *RetryModerator
	cfg       ApplyAgentConfig
}

func NewApplyAgent(generator Generator, chunks ChunkStore, cfg ApplyAgentConfig) (*ApplyAgent, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if chunks == nil {
		return nil, fmt.Errorf("chunk store is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0, got %d", cfg.MaxRetries)
	}
	return &ApplyAgent{
		generator: generator,
		chunks:    chunks,
		moderator: NewRetryModerator(cfg.MaxRetries),
		cfg:       cfg,
	}, nil
}

// positionResponse is the JSON object the model must answer with.
type positionResponse struct {
	PositionStart *string `json:"position_start"`
	PositionEnd   *string `json:"position_end"`
}

// Decide runs the location decision loop to completion. Like the HTML agent
// it never returns a raw error; everything folds into the decision status.
func (a *ApplyAgent) Decide(ctx context.Context, req DecideRequest) LocationDecision {
	chunkHTML, dec, ok := a.resolveChunk(req)
	if !ok {
		return dec
	}

	retryCount := 0
	isRetry := false
	for {
		if err := ctx.Err(); err != nil {
			return a.errorDecision(fmt.Sprintf("location decision aborted: %v", err))
		}

		decision := a.moderator.Next(retryCount, isRetry)
		if decision.Stop {
			log.Printf("apply agent: max retries (%d) exceeded", a.moderator.MaxRetries())
			return a.errorDecision(fmt.Sprintf("no valid location decision after %d retries", a.moderator.MaxRetries()))
		}
		retryCount = decision.RetryCount

		a.throttle(ctx)
		raw, err := a.generator.Invoke(ctx, locationPrompt(req.Type, req.DocumentStructure, req.LastPrompt, chunkHTML))
		if err != nil {
			log.Printf("apply agent: location decider error: %v", err)
			isRetry = true
			continue
		}

		start, end, perr := parsePositions(req.Type, raw)
		if perr != nil {
			log.Printf("apply agent: failed to parse model response: %v", perr)
			isRetry = true
			continue
		}

		return LocationDecision{
			Status:        StatusSuccess,
			PositionStart: start,
			PositionEnd:   end,
			ChunkHTML:     chunkHTML,
		}
	}
}

// resolveChunk loads the chunk for INSERT/EDIT and rejects invalid inputs.
// The second return value carries the ready error decision when ok is false.
func (a *ApplyAgent) resolveChunk(req DecideRequest) (string, LocationDecision, bool) {
	switch req.Type {
	case ApplyInsert, ApplyEdit:
		if req.ChunkID == "" {
			return "", a.errorDecision(fmt.Sprintf("chunk id is required for %s", req.Type)), false
		}
		chunk, err := a.chunks.LoadByID(req.ChunkID)
		if err != nil {
			return "", a.errorDecision(fmt.Sprintf("failed to load chunk %s: %v", req.ChunkID, err)), false
		}
		if chunk == nil {
			return "", a.errorDecision(fmt.Sprintf("Chunk with id %s not found", req.ChunkID)), false
		}
		return chunk.HTML, LocationDecision{}, true
	case ApplyDelete:
		// DELETE involves no new content; a chunk id here is a caller bug.
		if req.ChunkID != "" {
			return "", a.errorDecision(fmt.Sprintf("chunk id must not be provided for DELETE (got %s)", req.ChunkID)), false
		}
		return "", LocationDecision{}, true
	default:
		return "", a.errorDecision(fmt.Sprintf("invalid apply type: %v", req.Type)), false
	}
}

// parsePositions extracts the start/end identifiers from the model response.
// A response with neither field, or a range action missing one end, is
// malformed and retryable. INSERT is a single-point action: one present
// field serves as both, and any mismatched end is snapped to the start.
func parsePositions(applyType ApplyType, raw string) (string, string, error) {
	var resp positionResponse
	if err := parse.ExtractJSON(raw, &resp); err != nil {
		return "", "", err
	}

	start, end := "", ""
	if resp.PositionStart != nil {
		start = *resp.PositionStart
	}
	if resp.PositionEnd != nil {
		end = *resp.PositionEnd
	}
	if start == "" && end == "" {
		return "", "", fmt.Errorf("response missing position_start and position_end")
	}

	if applyType == ApplyInsert {
		if start == "" {
			start = end
		}
		return start, start, nil
	}

	if start == "" || end == "" {
		return "", "", fmt.Errorf("response missing one of position_start/position_end")
	}
	return start, end, nil
}

func (a *ApplyAgent) errorDecision(message string) LocationDecision {
	return LocationDecision{
		Status:        StatusError,
		PositionStart: PositionSentinel,
		PositionEnd:   PositionSentinel,
		Message:       message,
	}
}

func (a *ApplyAgent) throttle(ctx context.Context) {
	if a.cfg.StepDelay <= 0 {
		return
	}
	select {
	case <-time.After(a.cfg.StepDelay):
	case <-ctx.Done():
	}
}
