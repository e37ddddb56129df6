// File path: internal/llm/providers/types.go
package providers

import "context"

// Message is one transcript entry. Assistant messages that request tool use
// carry ToolCalls; tool messages answer one call via ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to invoke a named tool. Arguments stay
// serialized until the invoker parses them.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec describes one catalogue entry forwarded to the model. Schema is a
// JSON-schema-like argument shape, treated as opaque metadata.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Schema      map[string]interface{} `json:"inputSchema"`
}

// Completion is a model response: either final text or tool-call requests.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider is the black-box model capability. ChatTools returns either a
// final message or an ordered list of requested tool invocations.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error)
	Name() string
}
