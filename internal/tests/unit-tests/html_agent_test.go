package unit_tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/agents"
	"docloom/internal/htmlcheck"
	"docloom/internal/tests/mocks"
)

const noSatisfactoryHTML = "<p><span>Error: No satisfactory HTML generated</span></p>"

func newHTMLAgent(t *testing.T, gen *mocks.GeneratorMock, cfg agents.HTMLAgentConfig) *agents.HTMLAgent {
	t.Helper()
	agent, err := agents.NewHTMLAgent(gen, &mocks.ValidatorMock{}, cfg)
	assert.NoError(t, err)
	return agent
}

func TestHTMLAgent_RequiresAcceptanceThreshold(t *testing.T) {
	_, err := agents.NewHTMLAgent(&mocks.GeneratorMock{}, &mocks.ValidatorMock{}, agents.HTMLAgentConfig{})
	assert.Error(t, err)

	_, err = agents.NewHTMLAgent(&mocks.GeneratorMock{}, &mocks.ValidatorMock{}, agents.HTMLAgentConfig{AcceptanceThreshold: 101})
	assert.Error(t, err)
}

func TestHTMLAgent_FirstAttemptAccepted(t *testing.T) {
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "<p><span>Fine content.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 95, Feedback: "good"}, nil
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 3})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "intro paragraph"})

	assert.Equal(t, agents.StatusSuccess, result.Status)
	assert.Equal(t, "<p><span>Fine content.</span></p>", result.HTML)
	assert.Equal(t, 95, result.Score)
	assert.Equal(t, 1, gen.InvokeCalls)
	assert.Equal(t, 1, gen.InvokeStructuredCalls)
}

func TestHTMLAgent_ExhaustsRetriesOnLowScores(t *testing.T) {
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "<p><span>Mediocre.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 50, Feedback: "weak"}, nil
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 2})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	// One initial attempt plus two retries.
	assert.Equal(t, 3, gen.InvokeCalls)
	assert.Equal(t, 3, gen.InvokeStructuredCalls)
	assert.Equal(t, "<p><span>Mediocre.</span></p>", result.HTML)
	assert.Equal(t, 50, result.Score)
}

func TestHTMLAgent_KeepsBestCandidateAcrossAttempts(t *testing.T) {
	scores := []int{50, 40, 80}
	attempt := 0
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			attempt++
			return fmt.Sprintf("<p><span>Attempt %d</span></p>", attempt), nil
		},
	}
	gen.InvokeStructuredFunc = func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
		return &agents.Evaluation{Score: scores[attempt-1], Feedback: "meh"}, nil
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 2})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	assert.Equal(t, "<p><span>Attempt 3</span></p>", result.HTML)
	assert.Equal(t, 80, result.Score)
}

func TestHTMLAgent_TiedScoresKeepFirstAttempt(t *testing.T) {
	attempt := 0
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			attempt++
			return fmt.Sprintf("<p><span>Attempt %d</span></p>", attempt), nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 50, Feedback: "same"}, nil
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 2})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	// Promotion requires a strictly greater score, so ties keep the earliest.
	assert.Equal(t, "<p><span>Attempt 1</span></p>", result.HTML)
	assert.Equal(t, 3, attempt)
}

func TestHTMLAgent_RecoverFromGenerationError(t *testing.T) {
	calls := 0
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			calls++
			if calls == 1 {
				return "", fmt.Errorf("model unavailable")
			}
			return "<p><span>Recovered.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 92, Feedback: "good"}, nil
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 3})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusSuccess, result.Status)
	assert.Equal(t, "<p><span>Recovered.</span></p>", result.HTML)
	assert.Equal(t, 2, gen.InvokeCalls)
	// The failed attempt never reached the evaluator.
	assert.Equal(t, 1, gen.InvokeStructuredCalls)
}

func TestHTMLAgent_EvaluatorFailureIsNeverPromoted(t *testing.T) {
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "<p><span>Content.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return nil, fmt.Errorf("malformed evaluation")
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 0})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	// No attempt ever scored, so only the fixed placeholder remains.
	assert.Equal(t, noSatisfactoryHTML, result.HTML)
}

func TestHTMLAgent_StepBudgetStopsTheLoop(t *testing.T) {
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "<p><span>Content.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 10, Feedback: "bad"}, nil
		},
	}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 100, MaxSteps: 6})

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	// Six transitions cover barely more than one full attempt.
	assert.LessOrEqual(t, gen.InvokeCalls, 2)
}

func TestHTMLAgent_ValidationFailureConsumesRetry(t *testing.T) {
	gen := &mocks.GeneratorMock{
		InvokeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "<p><span>Content.</span></p>", nil
		},
		InvokeStructuredFunc: func(ctx context.Context, prompt string) (*agents.Evaluation, error) {
			return &agents.Evaluation{Score: 95, Feedback: "good"}, nil
		},
	}
	validationCalls := 0
	validator := &mocks.ValidatorMock{
		ValidateAndRepairFunc: func(html string) htmlcheck.Result {
			validationCalls++
			if validationCalls == 1 {
				return htmlcheck.Result{Status: htmlcheck.StatusError, Message: "Empty content"}
			}
			return htmlcheck.Result{Status: htmlcheck.StatusSuccess, HTML: html}
		},
	}
	agent, err := agents.NewHTMLAgent(gen, validator, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 1})
	assert.NoError(t, err)

	result := agent.Run(context.Background(), agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusSuccess, result.Status)
	assert.Equal(t, 2, gen.InvokeCalls)
	assert.Equal(t, 1, gen.InvokeStructuredCalls)
}

func TestHTMLAgent_CancelledContextReturnsBestSoFar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &mocks.GeneratorMock{}
	agent := newHTMLAgent(t, gen, agents.HTMLAgentConfig{AcceptanceThreshold: 90, MaxRetries: 3})

	result := agent.Run(ctx, agents.GenerationRequest{Description: "section"})

	assert.Equal(t, agents.StatusError, result.Status)
	assert.Equal(t, noSatisfactoryHTML, result.HTML)
	assert.Equal(t, 0, gen.InvokeCalls)
}
