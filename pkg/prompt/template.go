// Package prompt renders the system prompt for each turn. Prompts use
// double-brace placeholders ("Today is {{date}}") filled at render time, so
// a configured prompt string can reference per-turn values without pulling in
// a full templating engine.
package prompt

import (
	"fmt"
	"strings"
)

// Template is a prompt string with {{name}} placeholders.
type Template struct {
	Text string
}

// NewTemplate wraps text as a Template.
func NewTemplate(text string) Template {
	return Template{Text: text}
}

// Render substitutes every placeholder present in vars. Placeholders without
// a matching key stay in the output untouched; values are formatted with
// fmt.Sprint.
func (t Template) Render(vars map[string]any) string {
	out := t.Text
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", fmt.Sprint(value))
	}
	return out
}
