package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docloom/internal/events"
)

// ApplyRequest packages a confirmed location decision into the single
// outward request the external document-editing surface executes.
type ApplyRequest struct {
	Type          ApplyType `json:"apply_type"`
	ChunkID       string    `json:"chunk_id,omitempty"`
	ChunkHTML     string    `json:"chunk_html,omitempty"`
	PositionStart string    `json:"position_start"`
	PositionEnd   string    `json:"position_end"`
}

// ApplyOutcome is the external surface's answer, re-injected through Resume.
type ApplyOutcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type pendingApply struct {
	req        ApplyRequest
	onResolved func(ApplyOutcome)
	timer      *time.Timer
}

// Coordinator is the suspend/resume boundary of the apply flow. A mutation is
// never applied directly: RequestApply parks the workflow state keyed by
// session and emits an apply_request event; the owning session stays
// suspended until Resume (or the optional TTL watchdog) delivers an outcome
// to the saved continuation.
type Coordinator struct {
	mu      sync.Mutex
	pending map[string]*pendingApply

	// ttl of zero keeps suspensions open indefinitely.
	ttl time.Duration
}

func NewCoordinator(ttl time.Duration) *Coordinator {
	return &Coordinator{
		pending: make(map[string]*pendingApply),
		ttl:     ttl,
	}
}

// RequestApply suspends the session's apply flow and notifies the external
// surface. Only one apply may be pending per session; callers must resolve
// or cancel the previous one first.
func (c *Coordinator) RequestApply(ctx context.Context, sessionKey string, req ApplyRequest, onResolved func(ApplyOutcome)) error {
	if sessionKey == "" {
		return fmt.Errorf("sessionKey is required")
	}
	if onResolved == nil {
		return fmt.Errorf("onResolved continuation is required")
	}

	c.mu.Lock()
	if _, exists := c.pending[sessionKey]; exists {
		c.mu.Unlock()
		return fmt.Errorf("an apply request is already pending for session %s", sessionKey)
	}
	p := &pendingApply{req: req, onResolved: onResolved}
	if c.ttl > 0 {
		p.timer = time.AfterFunc(c.ttl, func() {
			_ = c.Resume(sessionKey, ApplyOutcome{
				Status:  StatusError,
				Message: "apply confirmation timed out",
			})
		})
	}
	c.pending[sessionKey] = p
	c.mu.Unlock()

	events.Emit(ctx, events.AgentApplyRequest, events.CreateAgentEventWithMetadata(
		events.EventInfo,
		fmt.Sprintf("apply %s between %s and %s", req.Type, req.PositionStart, req.PositionEnd),
		map[string]string{
			"apply_type":     req.Type.String(),
			"chunk_id":       req.ChunkID,
			"chunk_html":     req.ChunkHTML,
			"position_start": req.PositionStart,
			"position_end":   req.PositionEnd,
			"session_key":    sessionKey,
		},
	))
	return nil
}

// Resume re-enters the suspended flow with the external result. It is an
// error to resume a session with nothing pending.
func (c *Coordinator) Resume(sessionKey string, outcome ApplyOutcome) error {
	c.mu.Lock()
	p, ok := c.pending[sessionKey]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("no pending apply request for session %s", sessionKey)
	}
	delete(c.pending, sessionKey)
	c.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.onResolved(outcome)
	return nil
}

// Pending reports the suspended request for a session, if any.
func (c *Coordinator) Pending(sessionKey string) (ApplyRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[sessionKey]
	if !ok {
		return ApplyRequest{}, false
	}
	return p.req, true
}

// Cancel drops a suspended request without invoking its continuation.
func (c *Coordinator) Cancel(sessionKey string) {
	c.mu.Lock()
	p, ok := c.pending[sessionKey]
	if ok {
		delete(c.pending, sessionKey)
	}
	c.mu.Unlock()
	if ok && p.timer != nil {
		p.timer.Stop()
	}
}
