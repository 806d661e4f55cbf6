package agents

import (
	"context"
	"fmt"
	"log"
	"time"

	"docloom/internal/htmlcheck"
	"docloom/internal/llm/parse"
)

const (
	// DefaultMaxRetries allows four generation attempts in total.
	DefaultMaxRetries = 3
	// DefaultMaxSteps bounds total state transitions of one run so the
	// machine terminates even under pathological state combinations.
	DefaultMaxSteps = 15
	// DefaultAcceptanceThreshold is wired at the composition root; the
	// constructor itself requires an explicit value.
	DefaultAcceptanceThreshold = 90

	errorContentHTML   = "<p><span>Content processing encountered an error.</span></p>"
	noSatisfactoryHTML = "<p><span>Error: No satisfactory HTML generated</span></p>"
)

type outcome int

const (
	outcomeUnset outcome = iota
	outcomeSuccess
	outcomeError
)

// GenerationRequest carries the inputs of one HTML generation run. They stay
// immutable for the lifetime of the run.
type GenerationRequest struct {
	Description       string
	StyleGuidelines   string
	Context           string
	DocumentStructure string
}

// GenerationResult is the final contract of a run. Status is success only if
// the loop accepted a validated, non-empty candidate; otherwise the best
// scoring candidate (or a fixed placeholder) is returned with StatusError.
type GenerationResult struct {
	Status Status `json:"status"`
	HTML   string `json:"html"`
	Score  int    `json:"score"`
}

// HTMLAgentConfig configures one HTML agent. AcceptanceThreshold is required;
// there is no silently assumed default.
type HTMLAgentConfig struct {
	AcceptanceThreshold int
	MaxRetries          int
	MaxSteps            int
	// StepDelay throttles calls to the external model as an API courtesy.
	// Zero disables it (tests run with zero).
	StepDelay     time.Duration
	AllowedTags   []string
	ForbiddenTags []string
}

// HTMLAgent runs the Moderate -> Generate -> Validate -> Evaluate loop that
// turns a content description into validated HTML, retrying on failures and
// low evaluator scores while tracking the best candidate so far.
type HTMLAgent struct {
	generator Generator
	validator Validator
	moderator *RetryModerator
	cfg       HTMLAgentConfig
}

func NewHTMLAgent(generator Generator, validator Validator, cfg HTMLAgentConfig) (*HTMLAgent, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if cfg.AcceptanceThreshold <= 0 || cfg.AcceptanceThreshold > 100 {
		return nil, fmt.Errorf("acceptance threshold must be in 1..100, got %d", cfg.AcceptanceThreshold)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0, got %d", cfg.MaxRetries)
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if len(cfg.AllowedTags) == 0 {
		cfg.AllowedTags = DefaultAllowedTags
	}
	if len(cfg.ForbiddenTags) == 0 {
		cfg.ForbiddenTags = DefaultForbiddenTags
	}
	return &HTMLAgent{
		generator: generator,
		validator: validator,
		moderator: NewRetryModerator(cfg.MaxRetries),
		cfg:       cfg,
	}, nil
}

// generationState is the mutable record threaded through one run.
type generationState struct {
	html              string
	contentOutcome    outcome
	validationOutcome outcome
	score             int
	feedback          string
	scored            bool

	retryCount  int
	bestHTML    string
	bestScore   int
	maxExceeded bool
}

type genStep int

const (
	stepModerate genStep = iota
	stepGenerate
	stepHandleError
	stepValidate
	stepEvaluate
	stepFinalize
	stepDone
)

// Run executes the loop to completion. Errors from the generator and the
// validator are recoverable and consume retry budget; Run itself never
// returns an error, only a structured result.
func (a *HTMLAgent) Run(ctx context.Context, req GenerationRequest) GenerationResult {
	st := &generationState{bestScore: -1}
	fullContext := buildContext(req.Description, req.StyleGuidelines, req.Context)

	accepted := false
	step := stepModerate

	for steps := 0; step != stepDone; steps++ {
		if steps >= a.cfg.MaxSteps {
			log.Printf("html agent: step budget (%d) exceeded, stopping with best score %d", a.cfg.MaxSteps, st.bestScore)
			return a.degradedResult(st)
		}
		if ctx.Err() != nil && step != stepFinalize {
			// Cancellation means stop with the best candidate so far.
			step = stepFinalize
			continue
		}

		switch step {
		case stepModerate:
			step = a.moderate(st)
		case stepGenerate:
			step = a.generate(ctx, st, req, fullContext)
		case stepHandleError:
			st.html = errorContentHTML
			step = stepModerate
		case stepValidate:
			step = a.validate(st)
		case stepEvaluate:
			step = a.evaluate(ctx, st, req)
		case stepFinalize:
			if st.bestScore >= 0 {
				st.html = st.bestHTML
				st.score = st.bestScore
			} else {
				st.html = noSatisfactoryHTML
			}
			step = stepDone
		}

		if step == stepDone && !st.maxExceeded && st.scored && st.score >= a.cfg.AcceptanceThreshold {
			accepted = true
		}
	}

	if accepted && st.html != "" && st.validationOutcome != outcomeError {
		return GenerationResult{Status: StatusSuccess, HTML: st.html, Score: st.score}
	}
	return a.degradedResult(st)
}

// degradedResult is the terminal error-path contract: the best candidate if
// one ever scored, the fixed placeholder otherwise.
func (a *HTMLAgent) degradedResult(st *generationState) GenerationResult {
	if st.bestScore >= 0 && st.bestHTML != "" {
		return GenerationResult{Status: StatusError, HTML: st.bestHTML, Score: st.bestScore}
	}
	return GenerationResult{Status: StatusError, HTML: noSatisfactoryHTML, Score: st.bestScore}
}

func (a *HTMLAgent) moderate(st *generationState) genStep {
	// Attempt 0 carries no prior outcome and is not a retry; any recorded
	// outcome means we came back here after a failure or a low score.
	isRetry := st.contentOutcome != outcomeUnset ||
		st.validationOutcome != outcomeUnset ||
		st.scored

	decision := a.moderator.Next(st.retryCount, isRetry)
	st.retryCount = decision.RetryCount
	if decision.Stop {
		log.Printf("html agent: max retries (%d) exceeded", a.moderator.MaxRetries())
		st.maxExceeded = true
		return stepFinalize
	}

	switch {
	case st.scored && st.score < a.cfg.AcceptanceThreshold:
		log.Printf("html agent: retry %d/%d due to low score (%d); feedback: %s",
			st.retryCount, a.moderator.MaxRetries(), st.score, st.feedback)
	case st.validationOutcome == outcomeError:
		log.Printf("html agent: retry %d/%d due to validation error", st.retryCount, a.moderator.MaxRetries())
	case st.contentOutcome == outcomeError:
		log.Printf("html agent: retry %d/%d due to generation error", st.retryCount, a.moderator.MaxRetries())
	default:
		log.Printf("html agent: initial attempt (%d/%d)", st.retryCount, a.moderator.MaxRetries())
	}

	// Clear transient fields so the next attempt starts clean.
	st.html = ""
	st.contentOutcome = outcomeUnset
	st.validationOutcome = outcomeUnset
	st.score = 0
	st.feedback = ""
	st.scored = false
	return stepGenerate
}

func (a *HTMLAgent) generate(ctx context.Context, st *generationState, req GenerationRequest, fullContext string) genStep {
	a.throttle(ctx)
	prompt := generationPrompt(req, fullContext, a.cfg.AllowedTags, a.cfg.ForbiddenTags)
	content, err := a.generator.Invoke(ctx, prompt)
	if err != nil {
		log.Printf("html agent: content generation error: %v", err)
		st.html = fmt.Sprintf("<p><span>Error during content generation: %v</span></p>", err)
		st.contentOutcome = outcomeError
		return stepHandleError
	}
	st.html = parse.StripFences(content)
	st.contentOutcome = outcomeSuccess
	log.Printf("html agent: generated HTML length: %d characters", len(st.html))
	return stepValidate
}

func (a *HTMLAgent) validate(st *generationState) genStep {
	a.throttleNoCtx()
	if st.html == "" {
		st.validationOutcome = outcomeError
		return stepModerate
	}
	cleaned := a.validator.CleanRawOutput(st.html)
	result := a.validator.ValidateAndRepair(cleaned)
	if result.Status == htmlcheck.StatusError {
		log.Printf("html agent: validation failed: %s", result.Message)
		st.validationOutcome = outcomeError
		if result.HTML != "" {
			// Keep whatever partial repair the validator produced.
			st.html = result.HTML
		}
		return stepModerate
	}
	st.html = result.HTML
	st.validationOutcome = outcomeSuccess
	return stepEvaluate
}

func (a *HTMLAgent) evaluate(ctx context.Context, st *generationState, req GenerationRequest) genStep {
	a.throttle(ctx)
	eval, err := a.generator.InvokeStructured(ctx, evaluatorPrompt(req, st.html, a.cfg.AllowedTags, a.cfg.ForbiddenTags))
	if err != nil {
		// A failed evaluation scores zero and is never promoted to best.
		log.Printf("html agent: evaluator error: %v", err)
		st.score = 0
		st.feedback = fmt.Sprintf("Error during evaluation: %v", err)
		st.scored = true
		return a.acceptOrReject(st)
	}

	st.score = eval.Score
	st.feedback = eval.Feedback
	st.scored = true
	if eval.Score > st.bestScore {
		log.Printf("html agent: new best score: %d (previous: %d)", eval.Score, st.bestScore)
		st.bestScore = eval.Score
		st.bestHTML = st.html
	}
	log.Printf("html agent: evaluation score: %d/100; feedback: %s", eval.Score, eval.Feedback)
	return a.acceptOrReject(st)
}

func (a *HTMLAgent) acceptOrReject(st *generationState) genStep {
	if st.score >= a.cfg.AcceptanceThreshold {
		return stepDone
	}
	return stepModerate
}

func (a *HTMLAgent) throttle(ctx context.Context) {
	if a.cfg.StepDelay <= 0 {
		return
	}
	select {
	case <-time.After(a.cfg.StepDelay):
	case <-ctx.Done():
	}
}

func (a *HTMLAgent) throttleNoCtx() {
	if a.cfg.StepDelay > 0 {
		time.Sleep(a.cfg.StepDelay)
	}
}
