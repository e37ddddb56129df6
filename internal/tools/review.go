// File path: internal/tools/review.go
package tools

import (
	"regexp"
	"strings"

	"github.com/legacyforge/rpgbridge/internal/rpg"
)

// Review is the structured outcome of the heuristic quality check.
type Review struct {
	CodeType    string   `json:"type"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Complexity  string   `json:"complexity"`
}

var (
	whereClauseRe = regexp.MustCompile(`(?i)WHERE\s+`)
	selectStarRe  = regexp.MustCompile(`(?i)SELECT\s+\*`)
	orderByRe     = regexp.MustCompile(`(?i)ORDER\s+BY`)
	selectRe      = regexp.MustCompile(`(?i)SELECT`)
	monitorRe     = regexp.MustCompile(`(?i)MONITOR`)
	gotoRe        = regexp.MustCompile(`(?i)GOTO`)
)

// ReviewCode applies the quality heuristics for the given code family.
// SQL checks target scan and projection hygiene; RPG checks target error
// handling and structure. Fixed-format RPG additionally inherits the
// analyzer's complexity rating.
func ReviewCode(code, codeType string) Review {
	review := Review{CodeType: strings.ToLower(strings.TrimSpace(codeType)), Complexity: "low"}
	switch review.CodeType {
	case "sql":
		if !whereClauseRe.MatchString(code) {
			review.Issues = append(review.Issues, "Missing WHERE clause - potential full table scan")
		}
		if selectStarRe.MatchString(code) {
			review.Suggestions = append(review.Suggestions, "Avoid SELECT * - specify columns explicitly")
		}
		if selectRe.MatchString(code) && !orderByRe.MatchString(code) {
			review.Suggestions = append(review.Suggestions, "Consider adding ORDER BY for consistent results")
		}
	case "rpg":
		if !monitorRe.MatchString(code) {
			review.Suggestions = append(review.Suggestions, "Consider adding error handling with MONITOR")
		}
		if gotoRe.MatchString(code) {
			review.Issues = append(review.Issues, "GOTO statements found - consider structured programming")
		}
		if analysis := rpg.Analyze(code); analysis.FixedLines > 0 {
			review.Complexity = string(analysis.Complexity)
		}
	}
	return review
}
