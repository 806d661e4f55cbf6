package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/agents"
)

func TestRetryModerator_FirstPassIsNotARetry(t *testing.T) {
	m := agents.NewRetryModerator(3)

	decision := m.Next(0, false)
	assert.False(t, decision.Stop)
	assert.Equal(t, 0, decision.RetryCount)
}

func TestRetryModerator_IncrementsOnlyOnRetry(t *testing.T) {
	m := agents.NewRetryModerator(3)

	decision := m.Next(0, true)
	assert.False(t, decision.Stop)
	assert.Equal(t, 1, decision.RetryCount)

	decision = m.Next(decision.RetryCount, true)
	assert.False(t, decision.Stop)
	assert.Equal(t, 2, decision.RetryCount)

	decision = m.Next(decision.RetryCount, false)
	assert.False(t, decision.Stop)
	assert.Equal(t, 2, decision.RetryCount)
}

func TestRetryModerator_StopsWhenBudgetExhausted(t *testing.T) {
	m := agents.NewRetryModerator(2)

	decision := m.Next(2, true)
	assert.True(t, decision.Stop)
	// The counter is clamped at the limit instead of growing past it.
	assert.Equal(t, 2, decision.RetryCount)
}

func TestRetryModerator_ZeroBudgetStopsOnFirstRetry(t *testing.T) {
	m := agents.NewRetryModerator(0)

	assert.False(t, m.Next(0, false).Stop)

	decision := m.Next(0, true)
	assert.True(t, decision.Stop)
	assert.Equal(t, 0, decision.RetryCount)
}

func TestRetryModerator_NegativeInputsClamped(t *testing.T) {
	m := agents.NewRetryModerator(-5)
	assert.Equal(t, 0, m.MaxRetries())

	decision := m.Next(-3, false)
	assert.False(t, decision.Stop)
	assert.Equal(t, 0, decision.RetryCount)
}
