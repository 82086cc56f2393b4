package types

// Role identifies who authored a message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// FunctionCall is the function half of a tool call: the target name and the
// raw JSON argument text exactly as the model emitted it.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall represents a request from the model to invoke a specific tool.
// The ID is opaque and model-issued, unique within a turn.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionDefinition describes one callable function to the model.
// Parameters holds a JSON Schema object.
type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters"`
}

// ToolDefinition describes a tool available to the model.
// It matches the OpenAI tools schema.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image reference, either an https URL or a data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// Message is a single chat turn in OpenAI wire shape.
// An assistant message carrying ToolCalls may have empty Content; a tool
// message must carry the ToolCallID of the assistant request it answers.
type Message struct {
	Role       Role          `json:"role"`
	Content    string        `json:"content"`
	Name       string        `json:"name,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`
	Parts      []ContentPart `json:"-"` // multimodal content, set instead of Content
}

// ToolResult is the normalized outcome of one tool invocation. Content is
// always JSON text regardless of the tool's native result shape, because the
// model consumes all tool outputs as text.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
}

// ToolCallSummary is the caller-facing record of one invoked tool.
type ToolCallSummary struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Usage represents token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse represents the full response from a ChatModel.
type ChatResponse struct {
	Message      Message
	FinishReason string // stop, length, tool_calls, content_filter
	Usage        Usage
}

// UserText builds a plain-text user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// UserImage builds a multimodal user message pairing an image with a question.
func UserImage(imageURL, question string) Message {
	return Message{
		Role: RoleUser,
		Parts: []ContentPart{
			{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
			{Type: "text", Text: question},
		},
	}
}

// NewToolMessage converts a ToolResult into the tool-role message the model
// expects on the second pass.
func NewToolMessage(result ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    result.Content,
		Name:       result.Name,
		ToolCallID: result.ToolCallID,
	}
}

// Summarize maps requested tool calls to their caller-facing summaries,
// preserving emission order.
func Summarize(calls []ToolCall) []ToolCallSummary {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCallSummary, len(calls))
	for i, c := range calls {
		out[i] = ToolCallSummary{Name: c.Function.Name, Arguments: c.Function.Arguments}
	}
	return out
}
