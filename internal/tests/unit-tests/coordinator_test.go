package unit_tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docloom/internal/agents"
)

func TestCoordinator_RequestAndResume(t *testing.T) {
	c := agents.NewCoordinator(0)

	var resolved []agents.ApplyOutcome
	err := c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{
		Type:          agents.ApplyInsert,
		ChunkID:       "chunk-1",
		PositionStart: "3",
		PositionEnd:   "3",
	}, func(outcome agents.ApplyOutcome) {
		resolved = append(resolved, outcome)
	})
	assert.NoError(t, err)

	pending, ok := c.Pending("session-1")
	assert.True(t, ok)
	assert.Equal(t, "chunk-1", pending.ChunkID)

	err = c.Resume("session-1", agents.ApplyOutcome{Status: agents.StatusSuccess})
	assert.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, agents.StatusSuccess, resolved[0].Status)

	_, ok = c.Pending("session-1")
	assert.False(t, ok)
}

func TestCoordinator_RejectsDuplicatePending(t *testing.T) {
	c := agents.NewCoordinator(0)
	noop := func(agents.ApplyOutcome) {}

	assert.NoError(t, c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, noop))
	err := c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, noop)
	assert.Error(t, err)
}

func TestCoordinator_ResumeWithoutPendingFails(t *testing.T) {
	c := agents.NewCoordinator(0)

	err := c.Resume("session-x", agents.ApplyOutcome{Status: agents.StatusSuccess})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session-x")
}

func TestCoordinator_RequiresSessionAndContinuation(t *testing.T) {
	c := agents.NewCoordinator(0)

	assert.Error(t, c.RequestApply(context.Background(), "", agents.ApplyRequest{}, func(agents.ApplyOutcome) {}))
	assert.Error(t, c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, nil))
}

func TestCoordinator_CancelDropsWithoutResolving(t *testing.T) {
	c := agents.NewCoordinator(0)

	called := false
	assert.NoError(t, c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, func(agents.ApplyOutcome) {
		called = true
	}))

	c.Cancel("session-1")
	assert.False(t, called)
	assert.Error(t, c.Resume("session-1", agents.ApplyOutcome{Status: agents.StatusSuccess}))
}

func TestCoordinator_TTLResolvesWithTimeout(t *testing.T) {
	c := agents.NewCoordinator(20 * time.Millisecond)

	outcomes := make(chan agents.ApplyOutcome, 1)
	assert.NoError(t, c.RequestApply(context.Background(), "session-1", agents.ApplyRequest{}, func(outcome agents.ApplyOutcome) {
		outcomes <- outcome
	}))

	select {
	case outcome := <-outcomes:
		assert.Equal(t, agents.StatusError, outcome.Status)
		assert.Contains(t, outcome.Message, "timed out")
	case <-time.After(time.Second):
		t.Fatal("expected the watchdog to resolve the pending apply")
	}
}
