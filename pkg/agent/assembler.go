package agent

import "github.com/baoman007/ai-weather-agent/pkg/types"

// Assemble builds the ordered message list for a model call: system prompt
// first, then the caller-supplied history verbatim, then the new user message.
// History entries are trusted as-is; entries without a role default to user so
// the wire protocol stays valid.
func Assemble(systemPrompt string, history []types.Message, user types.Message) []types.Message {
	out := make([]types.Message, 0, len(history)+2)
	out = append(out, types.Message{Role: types.RoleSystem, Content: systemPrompt})
	for _, msg := range history {
		if msg.Role == "" {
			msg.Role = types.RoleUser
		}
		out = append(out, msg)
	}
	return append(out, user)
}
