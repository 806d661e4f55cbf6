package mocks

import (
	"docloom/internal/htmlcheck"
)

type ValidatorMock struct {
	ValidateAndRepairFunc func(html string) htmlcheck.Result
	CleanRawOutputFunc    func(html string) string
}

func (m *ValidatorMock) ValidateAndRepair(html string) htmlcheck.Result {
	if m.ValidateAndRepairFunc != nil {
		return m.ValidateAndRepairFunc(html)
	}
	return htmlcheck.Result{Status: htmlcheck.StatusSuccess, HTML: html}
}

func (m *ValidatorMock) CleanRawOutput(html string) string {
	if m.CleanRawOutputFunc != nil {
		return m.CleanRawOutputFunc(html)
	}
	return html
}
