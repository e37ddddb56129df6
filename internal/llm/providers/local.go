// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"strings"
)

// LocalProvider is the offline fallback used when no API key is configured.
// It never requests tools.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1].Content
	return "[local-stub] " + strings.TrimSpace(last), nil
}

func (l *LocalProvider) ChatTools(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error) {
	content, err := l.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &Completion{Content: content}, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
