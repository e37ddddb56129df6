// File path: internal/agent/orchestrator.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/llm"
)

// DefaultMaxRounds caps the number of tool rounds per run.
const DefaultMaxRounds = 10

// ExhaustedText is returned when the round cap is reached. Hitting the cap
// is a defined terminal outcome, not an error.
const ExhaustedText = "Maximum tool calls reached"

// Invoker executes one named tool with parsed arguments. Failures are
// descriptive errors; the orchestrator surfaces them in the transcript
// instead of propagating.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]interface{}) (string, error)
}

// Orchestrator drives the bounded model/tool loop over an exclusively owned
// transcript. The transcript mutates only by appending or by prefix
// eviction under budget pressure.
type Orchestrator struct {
	provider llm.Provider
	invoker  Invoker
	budget   Budget
}

func New(provider llm.Provider, invoker Invoker) *Orchestrator {
	return &Orchestrator{provider: provider, invoker: invoker, budget: DefaultBudget()}
}

// WithBudget overrides the default budget; nil estimators fall back to the
// character heuristic.
func (o *Orchestrator) WithBudget(budget Budget) *Orchestrator {
	o.budget = budget
	return o
}

// Run executes the loop until the model stops requesting tools or maxRounds
// is reached. Model transport errors propagate to the caller; tool failures
// degrade to visible error entries in the transcript.
func (o *Orchestrator) Run(ctx context.Context, initial []llm.Message, catalog []llm.ToolSpec, maxRounds int) (string, error) {
	logger := common.Logger()
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	transcript := append([]llm.Message(nil), initial...)

	for round := 0; round < maxRounds; round++ {
		for i := range transcript {
			transcript[i].Content = o.budget.truncate(transcript[i].Content, o.budget.MessageTokens)
		}

		completion, err := o.provider.ChatTools(ctx, transcript, catalog)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}
		if len(completion.ToolCalls) == 0 {
			logger.Debug("agent: run complete", "rounds", round)
			return completion.Content, nil
		}

		transcript = append(transcript, llm.Message{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		for _, call := range completion.ToolCalls {
			result := o.invokeTool(ctx, call)
			result = o.budget.truncate(result, o.budget.ToolTokens)
			transcript = append(transcript, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}

		if total := o.budget.transcriptTokens(transcript); float64(total) > float64(o.budget.GlobalTokens)*o.budget.EvictThreshold {
			before := len(transcript)
			transcript = o.budget.evict(transcript)
			logger.Warn("agent: transcript evicted", "kept", len(transcript), "dropped", before-len(transcript))
		}
	}
	logger.Info("agent: round cap reached", "max_rounds", maxRounds)
	return ExhaustedText, nil
}

// invokeTool runs one requested call. Argument parse errors and invocation
// failures become visible error text; the loop never aborts on them.
func (o *Orchestrator) invokeTool(ctx context.Context, call llm.ToolCall) string {
	logger := common.Logger()
	args := map[string]interface{}{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			logger.Warn("agent: tool arguments unparsable", "tool", call.Name, "error", err)
			return fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err)
		}
	}
	result, err := o.invoker.Invoke(ctx, call.Name, args)
	if err != nil {
		logger.Warn("agent: tool invocation failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}
