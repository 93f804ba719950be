// internal/service/prompt.go
package service

import (
	"strings"
)

// defaultPostPrompt is the fallback used when a campaign carries no template.
const defaultPostPrompt = `Write a {length} social media post about "{topic}". ` +
	`The post is aimed at {audience}. Tone of voice: {tone}.`

// RenderPrompt substitutes {placeholder} tokens in a prompt template.
func RenderPrompt(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// scrubDashes applies the fixed substitutions performed on every generated
// body: em dashes and en dashes never survive into stored posts.
func scrubDashes(s string) string {
	s = strings.ReplaceAll(s, "—", " - ") // em dash
	s = strings.ReplaceAll(s, "–", "-")   // en dash
	return s
}

// capText truncates a context blob to the per-source character budget.
func capText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
