// Package agents contains the control loops that sit between the
// non-deterministic model calls and the deterministic document mutations:
// the HTML generation/evaluation loop, the apply location decision loop,
// the shared retry moderator, and the apply confirmation coordinator.
package agents

import (
	"context"
	"fmt"
	"strings"

	"docloom/internal/htmlcheck"
	"docloom/internal/models"
)

// Status is the outcome surfaced to callers. The cores never let a raw error
// escape their run methods; everything is folded into a status plus payload.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Evaluation is the structured verdict the evaluator model returns for a
// generated HTML candidate.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Generator is the opaque language-model capability: prompt in, text or
// structured object out, may fail.
type Generator interface {
	Invoke(ctx context.Context, prompt string) (string, error)
	InvokeStructured(ctx context.Context, prompt string) (*Evaluation, error)
}

// Validator repairs raw model HTML into document-safe markup.
type Validator interface {
	ValidateAndRepair(html string) htmlcheck.Result
	CleanRawOutput(html string) string
}

// ChunkStore persists generated content chunks.
type ChunkStore interface {
	Save(chunk *models.ContentChunk) error
	LoadByID(id string) (*models.ContentChunk, error)
}

// ApplyType is the closed set of document mutations. Raw strings are parsed
// once at the boundary; unknown values never travel through the loops.
type ApplyType int

const (
	ApplyInsert ApplyType = iota + 1
	ApplyDelete
	ApplyEdit
)

// ParseApplyType resolves a raw action string case-insensitively.
func ParseApplyType(raw string) (ApplyType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "INSERT":
		return ApplyInsert, nil
	case "DELETE":
		return ApplyDelete, nil
	case "EDIT":
		return ApplyEdit, nil
	default:
		return 0, fmt.Errorf("invalid apply type: %q", raw)
	}
}

func (t ApplyType) String() string {
	switch t {
	case ApplyInsert:
		return "INSERT"
	case ApplyDelete:
		return "DELETE"
	case ApplyEdit:
		return "EDIT"
	default:
		return fmt.Sprintf("ApplyType(%d)", int(t))
	}
}
