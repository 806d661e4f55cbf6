package agents

// ModeratorDecision is the moderator's answer at the top of a cycle: either
// the loop may proceed with the given retry count, or it must stop and fall
// back to its best candidate so far.
type ModeratorDecision struct {
	Stop       bool
	RetryCount int
}

// RetryModerator decides whether a retry loop continues or terminates,
// independent of what work happens inside each iteration. Both the HTML
// agent and the apply agent own an instance with independent counters.
type RetryModerator struct {
	maxRetries int
}

func NewRetryModerator(maxRetries int) *RetryModerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryModerator{maxRetries: maxRetries}
}

func (m *RetryModerator) MaxRetries() int { return m.maxRetries }

// Next evaluates one cycle. The very first invocation of a run carries
// isRetry=false and does not consume the retry budget: attempt 0 is not a
// retry. Every subsequent pass, triggered by a failure or low-score signal,
// increments the counter. When the incremented value would exceed
// maxRetries, Next reports Stop and clamps the counter at its last valid
// value instead of letting it grow unboundedly.
func (m *RetryModerator) Next(retryCount int, isRetry bool) ModeratorDecision {
	if retryCount < 0 {
		retryCount = 0
	}
	if isRetry {
		retryCount++
	}
	if retryCount > m.maxRetries {
		return ModeratorDecision{Stop: true, RetryCount: m.maxRetries}
	}
	return ModeratorDecision{RetryCount: retryCount}
}
