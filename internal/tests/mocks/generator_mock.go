package mocks

import (
	"context"

	"docloom/internal/agents"
)

type GeneratorMock struct {
	InvokeFunc           func(ctx context.Context, prompt string) (string, error)
	InvokeStructuredFunc func(ctx context.Context, prompt string) (*agents.Evaluation, error)

	InvokeCalls           int
	InvokeStructuredCalls int
}

func (m *GeneratorMock) Invoke(ctx context.Context, prompt string) (string, error) {
	m.InvokeCalls++
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, prompt)
	}
	return "", nil
}

func (m *GeneratorMock) InvokeStructured(ctx context.Context, prompt string) (*agents.Evaluation, error) {
	m.InvokeStructuredCalls++
	if m.InvokeStructuredFunc != nil {
		return m.InvokeStructuredFunc(ctx, prompt)
	}
	return &agents.Evaluation{}, nil
}
