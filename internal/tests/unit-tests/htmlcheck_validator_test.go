package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/htmlcheck"
)

func TestValidator_EmptyContent(t *testing.T) {
	v := htmlcheck.New()

	for _, input := range []string{"", "   ", "\n\t"} {
		result := v.ValidateAndRepair(input)
		assert.Equal(t, htmlcheck.StatusError, result.Status)
		assert.Equal(t, "Empty content", result.Message)
	}
}

func TestValidator_WrapsBareTextInSpans(t *testing.T) {
	v := htmlcheck.New()

	result := v.ValidateAndRepair("<p>hello</p>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, "<p><span>hello</span></p>", result.HTML)
}

func TestValidator_ConvertsInlineStylingTags(t *testing.T) {
	v := htmlcheck.New()

	result := v.ValidateAndRepair("<p><i>x</i></p>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, `<p><span style="font-style:italic;">x</span></p>`, result.HTML)

	result = v.ValidateAndRepair("<p>text with <b>bold</b></p>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, `<p><span>text with </span><span style="font-weight:bold;">bold</span></p>`, result.HTML)
}

func TestValidator_UnwrapsForbiddenTags(t *testing.T) {
	v := htmlcheck.New()

	result := v.ValidateAndRepair("<div><p><span>a</span></p></div>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, "<p><span>a</span></p>", result.HTML)

	result = v.ValidateAndRepair("<p><em>x</em></p>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, "<p><span>x</span></p>", result.HTML)
}

func TestValidator_MovesHeaderRowsIntoTableBody(t *testing.T) {
	v := htmlcheck.New()

	result := v.ValidateAndRepair("<table><thead><tr><th><span>h</span></th></tr></thead></table>")
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, "<table><tbody><tr><th><span>h</span></th></tr></tbody></table>", result.HTML)
}

func TestValidator_KeepsWellFormedTable(t *testing.T) {
	v := htmlcheck.New()

	input := "<table><tbody><tr><td><span>a</span></td></tr></tbody></table>"
	result := v.ValidateAndRepair(input)
	assert.Equal(t, htmlcheck.StatusSuccess, result.Status)
	assert.Equal(t, input, result.HTML)
}

func TestValidator_ContentRemovedDuringValidation(t *testing.T) {
	v := htmlcheck.New()

	result := v.ValidateAndRepair("<br>")
	assert.Equal(t, htmlcheck.StatusError, result.Status)
	assert.Equal(t, "Content removed during validation", result.Message)
}

func TestValidator_RepairIsIdempotent(t *testing.T) {
	v := htmlcheck.New()

	inputs := []string{
		"<p>text with <b>bold</b></p>",
		"<div><p>hello <i>world</i></p></div>",
		"<table><thead><tr><th>h</th></tr></thead></table>",
	}
	for _, input := range inputs {
		first := v.ValidateAndRepair(input)
		assert.Equal(t, htmlcheck.StatusSuccess, first.Status)

		second := v.ValidateAndRepair(first.HTML)
		assert.Equal(t, htmlcheck.StatusSuccess, second.Status)
		assert.Equal(t, first.HTML, second.HTML)
	}
}

func TestValidator_CleanRawOutputStripsFences(t *testing.T) {
	v := htmlcheck.New()

	cleaned := v.CleanRawOutput("```html\n<p><span>x</span></p>\n```")
	assert.Equal(t, "<p><span>x</span></p>", cleaned)
}
