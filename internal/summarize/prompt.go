package summarize

import (
	"fmt"
	"strings"
)

const nodeSummaryPrompt = `You are given a section of a document. Write a concise description of the main points covered in this section, in at most three sentences.

Respond with ONLY the description, no preamble.`

const docDescriptionPrompt = `You are given the table of contents of a document with short summaries of its sections. Write a one-sentence description of the document that distinguishes it from other documents.

Respond with ONLY the sentence.`

// BuildNodePrompt creates the prompt summarizing one section.
func BuildNodePrompt(docName, title, text string) string {
	var sb strings.Builder
	sb.WriteString(nodeSummaryPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Document: %q\n", docName))
	if title != "" {
		sb.WriteString(fmt.Sprintf("Section: %q\n", title))
	}
	sb.WriteString("---\n")
	sb.WriteString(text)
	return sb.String()
}

// BuildDescriptionPrompt creates the prompt describing a whole document from
// its outline lines.
func BuildDescriptionPrompt(docName string, outline []string) string {
	var sb strings.Builder
	sb.WriteString(docDescriptionPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Document: %q\n", docName))
	sb.WriteString("---\n")
	sb.WriteString(strings.Join(outline, "\n"))
	return sb.String()
}
