// File path: internal/agent/budget.go
package agent

import (
	"unicode/utf8"

	"github.com/legacyforge/rpgbridge/internal/llm"
)

// TokenEstimator approximates token counts for budget decisions. The default
// divides character length by four; a real tokenizer can be substituted
// without touching the orchestration loop.
type TokenEstimator interface {
	Estimate(text string) int
}

type charEstimator struct{}

func (charEstimator) Estimate(text string) int {
	return len(text) / 4
}

// Budget bounds a single orchestration run. Truncation keeps the first 80%
// of the allowed character budget and appends a marker; eviction is a hard
// prefix drop down to the tail. Both are lossy and one-directional.
type Budget struct {
	MessageTokens  int
	ToolTokens     int
	GlobalTokens   int
	EvictThreshold float64
	EvictTail      int
	Estimator      TokenEstimator
}

const truncationMarker = "\n\n[Content truncated due to length limitations...]"

// DefaultBudget mirrors the limits of a 128k-context deployment.
func DefaultBudget() Budget {
	return Budget{
		MessageTokens:  100000,
		ToolTokens:     10000,
		GlobalTokens:   128000,
		EvictThreshold: 0.8,
		EvictTail:      5,
		Estimator:      charEstimator{},
	}
}

func (b Budget) estimator() TokenEstimator {
	if b.Estimator == nil {
		return charEstimator{}
	}
	return b.Estimator
}

// truncate caps text to maxTokens, keeping the first 80% of the character
// allowance when over budget. The cut never splits a multi-byte rune.
func (b Budget) truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || b.estimator().Estimate(text) <= maxTokens {
		return text
	}
	target := int(float64(maxTokens) * 4 * 0.8)
	if target > len(text) {
		target = len(text)
	}
	for target > 0 && target < len(text) && !utf8.RuneStart(text[target]) {
		target--
	}
	return text[:target] + truncationMarker
}

// transcriptTokens estimates the aggregate size of the whole transcript.
func (b Budget) transcriptTokens(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		total += b.estimator().Estimate(msg.Content)
	}
	return total
}

// evict drops the transcript prefix, keeping only the most recent tail.
// Ordering within the tail is preserved; evicted context is gone for good.
func (b Budget) evict(messages []llm.Message) []llm.Message {
	tail := b.EvictTail
	if tail <= 0 || len(messages) <= tail {
		return messages
	}
	return messages[len(messages)-tail:]
}
