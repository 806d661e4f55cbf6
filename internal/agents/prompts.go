package agents

import (
	"fmt"
	"strings"
)

// Default tag sets for generated document content. The validator enforces the
// same sets after generation.
var (
	DefaultAllowedTags = []string{
		"p", "span", "u", "ol", "ul", "li", "table", "tr", "td", "th", "tbody",
		"h1", "h2", "h3", "h4", "h5", "h6",
	}
	DefaultForbiddenTags = []string{
		"script", "iframe", "style", "link", "meta", "head", "body", "html",
		"div", "em", "br", "i", "b",
	}
)

// buildContext assembles the consolidated context string handed to the
// generator: task information first, then any prior conversation context.
func buildContext(description, styleGuidelines, previousContext string) string {
	var parts []string
	parts = append(parts, "=== TASK INFORMATION ===")
	parts = append(parts, fmt.Sprintf("Description: %s", description))
	parts = append(parts, fmt.Sprintf("Style Guidelines: %s", styleGuidelines))
	parts = append(parts, "")
	if previousContext != "" {
		parts = append(parts, "=== PREVIOUS CONTEXT ===")
		parts = append(parts, previousContext)
		parts = append(parts, "")
	}
	return strings.Join(parts, "\n")
}

func generationRules(allowedTags, forbiddenTags []string) string {
	return fmt.Sprintf(`
1. Valid Structure: Ensure perfect HTML syntax with properly nested tags
2. Allowed Tags ONLY: Use ONLY these tags: %s
3. Forbidden Tags: NEVER use these tags: %s
4. Text Encapsulation: ALL visible text MUST be wrapped in <span> tags
5. Span Placement: Place <span> tags immediately inside block elements (p, h1-h6, li, td, th)
6. Root Element: Start with appropriate block element (p, h1-h6, table, ul, ol)
7. Tables: Must contain <tbody>, use <th> for headers, <td> for data cells
8. Colors: Use HEX format only (#FF0000, #333333, etc.)
9. Styling: Use inline style attributes only - no external CSS
10. Headings: Use h1-h6 appropriately for content hierarchy
11. Spacing: Use <p> tags for paragraphs, margins/padding for spacing
12. Font Styling: Apply general styles to block elements, use <span> for inline changes
13. Attributes: Ensure valid CSS properties in double quotes
`, strings.Join(allowedTags, ", "), strings.Join(forbiddenTags, ", "))
}

func generationPrompt(req GenerationRequest, context string, allowedTags, forbiddenTags []string) string {
	return fmt.Sprintf(`You are an expert HTML content generator. Your task is to create high-quality HTML content based on the provided information.

=== CONTENT GENERATION RULES ===
%s

=== CONTEXT INFORMATION ===
%s

=== DOCUMENT STRUCTURE ===
%s

=== GENERATION TASK ===
Create HTML content that fulfills the following requirements:
- Description: %s
- Style Guidelines: %s

CRITICAL INSTRUCTIONS:
1. Respond with ONLY the HTML content - no explanations, markdown formatting, or code blocks
2. Start directly with the first HTML tag (e.g., <p>, <h1>, etc.)
3. Generate NEW, original content based on the description and guidelines
4. Use the context information to inform your content but create fresh material
5. Ensure all text is properly wrapped in <span> tags within block elements
6. Apply styles using inline style attributes only

Generate the HTML content now:`,
		generationRules(allowedTags, forbiddenTags),
		context,
		req.DocumentStructure,
		req.Description,
		req.StyleGuidelines,
	)
}

func evaluatorPrompt(req GenerationRequest, htmlContent string, allowedTags, forbiddenTags []string) string {
	return fmt.Sprintf(`You are an expert HTML content evaluator. Evaluate the provided HTML content based on the task requirements and quality standards.
The HTML content is generated as a part of a document editor such as google docs or microsoft word. Therefore, it shouldn't be treated as if it were a part of a website.

TASK REQUIREMENTS:
- Description: %s
- Style Guidelines: %s

HTML CONTENT TO EVALUATE:
%s

RULES GIVEN TO THE GENERATOR:
%s

EVALUATION CRITERIA:
1. Task Fulfillment (40 points): Does the content match the description and requirements?
2. Style Compliance (30 points): Does it follow the style guidelines?
3. HTML Quality (20 points): Is the HTML well-formed, semantic, and properly structured?
4. Content Quality (10 points): Is the content engaging, clear, and well-written?

Provide a score from 0-100 and detailed feedback. If the score is below 100, explain specific areas for improvement.

Respond with a JSON object:
{
    "score": <integer 0-100>,
    "feedback": "<detailed feedback string>"
}`,
		req.Description,
		req.StyleGuidelines,
		htmlContent,
		generationRules(allowedTags, forbiddenTags),
	)
}

// locationPrompt builds the per-action prompt for the apply agent. All three
// actions share the unified range representation: the model must answer with
// position_start and position_end identifiers. For INSERT the two are the
// same element, the insertion anchor.
func locationPrompt(applyType ApplyType, documentStructure, lastPrompt, chunkHTML string) string {
	switch applyType {
	case ApplyInsert:
		return fmt.Sprintf(`You are an expert document editing assistant. Your task is to determine the precise location to insert a new HTML chunk into an existing document.

### Current Document Structure
Here is the document, which is a sequence of HTML elements. Each element has a unique position_id.

%s

New Content to Insert:
%s

**User's Goal**
The user's original request was: "%s"

CRITICAL INSTRUCTIONS:
If the user wants to add to the end: You MUST find the VERY LAST element in the document that has a position_id attribute. Use that element's ID for BOTH position_start and position_end.
If the user specifies another position: Use the position_id they are referring to for both fields.
The insertion point is a single element, so position_start and position_end MUST be identical.
You must return ONLY a single, valid JSON object and nothing else.

Task: Decide the best position to insert this chunk.
Return a JSON object with:
- position_start: the position_id of the element to insert at
- position_end: the same position_id`, documentStructure, chunkHTML, lastPrompt)

	case ApplyDelete:
		return fmt.Sprintf(`You are a document editing assistant. Here is the current document structure (HTML with position_id attributes):

%s

The user's original request was: "%s"

Task: Decide which range of elements should be deleted from the document.
Return a JSON object with:
- position_start: the position_id of the first element to delete
- position_end: the position_id of the last element to delete (inclusive; equal to position_start for a single element)`, documentStructure, lastPrompt)

	case ApplyEdit:
		return fmt.Sprintf(`You are an expert document editing assistant. Your task is to determine the precise location in the document to REPLACE with a new HTML chunk.

### Current Document Structure
Here is the document, which is a sequence of HTML elements. Each element has a unique position_id.

%s

New Content to Use for Replacement:
%s

**User's Goal**
The user's original request was: "%s"

CRITICAL INSTRUCTIONS:
- You must identify the range of elements whose content should be replaced with the new chunk.
- If the user specifies a position, use the position_id they are referring to.
- If the user describes the content to edit, find the best matching elements.
- You must return ONLY a single, valid JSON object and nothing else.

Task: Decide the best range to REPLACE with this chunk.
Return a JSON object with:
- position_start: the position_id of the first element to replace
- position_end: the position_id of the last element to replace (inclusive; equal to position_start for a single element)`, documentStructure, chunkHTML, lastPrompt)

	default:
		return fmt.Sprintf("Unknown apply type: %s", applyType)
	}
}
