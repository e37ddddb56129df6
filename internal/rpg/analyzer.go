// File path: internal/rpg/analyzer.go
package rpg

import (
	"sort"
	"strings"
)

// Complexity classifies the expected conversion effort for a source member.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Scoring weights reflect relative conversion cost per construct; the
// thresholds pair with them. Both are part of the output contract.
const (
	weightFile       = 2
	weightCalc       = 1
	weightIndicator  = 3
	weightSubroutine = 2

	mediumThreshold = 10
	highThreshold   = 30
)

// opBeginSubroutine marks the start of a subroutine in calculation specs.
const opBeginSubroutine = "BEGSR"

// AnalysisResult aggregates everything the converter needs from one pass
// over a source member. Entries preserve original line order per tag.
type AnalysisResult struct {
	Entries     map[RecordTag][]SpecEntry `json:"entries"`
	Indicators  []string                  `json:"indicators,omitempty"`
	Subroutines []string                  `json:"subroutines,omitempty"`
	FixedLines  int                       `json:"fixed_lines"`
	Score       int                       `json:"score"`
	Complexity  Complexity                `json:"complexity"`
}

// Analyze classifies every line of the source member and accumulates the
// structural summary used for conversion and effort scoring.
func Analyze(source string) *AnalysisResult {
	result := &AnalysisResult{Entries: make(map[RecordTag][]SpecEntry)}
	indicators := make(map[string]struct{})
	for i, line := range strings.Split(source, "\n") {
		entry := Classify(line, i+1)
		if entry.Tag == TagUnknown {
			continue
		}
		result.FixedLines++
		result.Entries[entry.Tag] = append(result.Entries[entry.Tag], entry)
		if entry.Tag != TagCalculation {
			continue
		}
		if ind := entry.Fields[FieldIndicators]; ind != "" {
			indicators[ind] = struct{}{}
		}
		if strings.EqualFold(entry.Fields[FieldOpcode], opBeginSubroutine) {
			if name := entry.Fields[FieldResult]; name != "" {
				result.Subroutines = append(result.Subroutines, name)
			}
		}
	}
	for ind := range indicators {
		result.Indicators = append(result.Indicators, ind)
	}
	sort.Strings(result.Indicators)
	result.Score = complexityScore(
		len(result.Entries[TagFile]),
		len(result.Entries[TagCalculation]),
		len(result.Indicators),
		len(result.Subroutines),
	)
	result.Complexity = classifyScore(result.Score)
	return result
}

func complexityScore(files, calcs, indicators, subroutines int) int {
	return weightFile*files + weightCalc*calcs + weightIndicator*indicators + weightSubroutine*subroutines
}

func classifyScore(score int) Complexity {
	switch {
	case score < mediumThreshold:
		return ComplexityLow
	case score < highThreshold:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}
