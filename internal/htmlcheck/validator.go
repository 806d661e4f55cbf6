// Package htmlcheck validates and repairs model-generated HTML so it is safe
// to splice into a structured document: only a fixed tag set, all visible
// text wrapped in spans, tables with explicit bodies, styling inline.
package htmlcheck

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docloom/internal/llm/parse"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result carries the repaired HTML, or the reason repair was impossible.
type Result struct {
	Status  string `json:"status"`
	HTML    string `json:"html"`
	Message string `json:"message,omitempty"`
}

var (
	defaultAllowedTags = []string{
		"p", "span", "u", "ol", "ul", "li", "table", "tr", "td", "th", "tbody",
		"h1", "h2", "h3", "h4", "h5", "h6",
	}
	defaultForbiddenTags = []string{
		"script", "iframe", "style", "link", "meta", "head", "body", "html",
		"div", "em", "br", "i", "b",
	}

	// Block elements whose direct text children must live inside spans.
	spanWrapParents = map[string]bool{
		"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
		"h6": true, "li": true, "td": true, "th": true,
	}
)

type Validator struct {
	allowedTags  []string
	allowedSet   map[string]bool
	forbiddenSet map[string]bool
	policy       *bluemonday.Policy
}

func New() *Validator {
	return NewWithTags(defaultAllowedTags, defaultForbiddenTags)
}

func NewWithTags(allowedTags, forbiddenTags []string) *Validator {
	allowed := make(map[string]bool, len(allowedTags))
	for _, t := range allowedTags {
		allowed[t] = true
	}
	forbidden := make(map[string]bool, len(forbiddenTags))
	for _, t := range forbiddenTags {
		forbidden[t] = true
	}

	policy := bluemonday.NewPolicy()
	policy.AllowElements(allowedTags...)
	policy.AllowAttrs("style").Globally()

	return &Validator{
		allowedTags:  allowedTags,
		allowedSet:   allowed,
		forbiddenSet: forbidden,
		policy:       policy,
	}
}

// CleanRawOutput strips common LLM artifacts like markdown code fences.
func (v *Validator) CleanRawOutput(raw string) string {
	return parse.StripFences(raw)
}

// ValidateAndRepair parses the content, rewrites it into the allowed shape
// and sanitizes the outcome. Feeding its own output back in is a no-op.
func (v *Validator) ValidateAndRepair(content string) Result {
	if strings.TrimSpace(content) == "" {
		return Result{Status: StatusError, Message: "Empty content"}
	}

	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), container)
	if err != nil {
		return Result{Status: StatusError, Message: "Content processing error: " + html.EscapeString(err.Error())}
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	v.restyleInlineTags(container)
	v.unwrapForbidden(container)
	v.ensureTableBodies(container)
	v.wrapStrayContent(container)

	var buf bytes.Buffer
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return Result{Status: StatusError, Message: "Content processing error: " + html.EscapeString(err.Error())}
		}
	}

	repaired := strings.TrimSpace(v.policy.Sanitize(buf.String()))
	if repaired == "" {
		return Result{Status: StatusError, Message: "Content removed during validation"}
	}
	return Result{Status: StatusSuccess, HTML: repaired}
}

// restyleInlineTags converts <i> and <b> into styled spans so emphasis
// survives the forbidden-tag pass.
func (v *Validator) restyleInlineTags(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		v.restyleInlineTags(c)
	}
	if n.Type != html.ElementNode {
		return
	}
	switch n.Data {
	case "i":
		toStyledSpan(n, "font-style:italic;")
	case "b":
		toStyledSpan(n, "font-weight:bold;")
	}
}

func toStyledSpan(n *html.Node, style string) {
	n.Data = "span"
	n.DataAtom = atom.Span
	for i, a := range n.Attr {
		if a.Key == "style" {
			n.Attr[i].Val = style + a.Val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}

// unwrapForbidden removes forbidden tags while keeping their contents.
func (v *Validator) unwrapForbidden(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		v.unwrapForbidden(c)
		if c.Type == html.ElementNode && v.forbiddenSet[c.Data] {
			unwrapNode(c)
		}
		c = next
	}
}

func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// ensureTableBodies guarantees every table carries a tbody and moves stray
// rows (direct children, or rows inside misplaced thead/tfoot) into it.
func (v *Validator) ensureTableBodies(n *html.Node) {
	forEachElement(n, "table", func(table *html.Node) {
		if directChild(table, "tbody") != nil {
			return
		}
		tbody := &html.Node{Type: html.ElementNode, Data: "tbody", DataAtom: atom.Tbody}

		var rows []*html.Node
		c := table.FirstChild
		for c != nil {
			next := c.NextSibling
			if c.Type == html.ElementNode {
				switch c.Data {
				case "tr":
					table.RemoveChild(c)
					rows = append(rows, c)
				case "thead", "tfoot":
					rows = append(rows, collectRows(c)...)
					table.RemoveChild(c)
				}
			}
			c = next
		}
		for _, row := range rows {
			tbody.AppendChild(row)
		}
		table.AppendChild(tbody)
	})
}

func collectRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.Data == "tr" {
			n.RemoveChild(c)
			rows = append(rows, c)
		} else {
			rows = append(rows, collectRows(c)...)
		}
		c = next
	}
	return rows
}

// wrapStrayContent wraps bare text (and disallowed non-span elements) found
// directly inside block elements into spans.
func (v *Validator) wrapStrayContent(n *html.Node) {
	if n.Type == html.ElementNode && spanWrapParents[n.Data] {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			switch {
			case c.Type == html.TextNode && strings.TrimSpace(c.Data) != "":
				wrapInSpan(c)
			case c.Type == html.ElementNode && c.Data != "span" && !v.allowedSet[c.Data]:
				spanifyElement(c)
			}
			c = next
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		v.wrapStrayContent(c)
	}
}

func wrapInSpan(text *html.Node) {
	parent := text.Parent
	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	parent.InsertBefore(span, text)
	parent.RemoveChild(text)
	span.AppendChild(text)
}

// spanifyElement replaces a disallowed element with a span holding its
// contents.
func spanifyElement(n *html.Node) {
	n.Data = "span"
	n.DataAtom = atom.Span
	n.Attr = nil
}

func directChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func forEachElement(n *html.Node, tag string, fn func(*html.Node)) {
	if n.Type == html.ElementNode && n.Data == tag {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		forEachElement(c, tag, fn)
	}
}
