// File path: internal/codescan/extractor.go
package codescan

import (
	"regexp"
	"strings"

	"github.com/legacyforge/rpgbridge/internal/rpg"
)

// BlockType labels the language family of an extracted fragment.
type BlockType string

const (
	BlockSQL      BlockType = "sql"
	BlockRPGFree  BlockType = "rpg-free"
	BlockRPGFixed BlockType = "rpg-fixed"
)

// BlockFormat describes how confident the extractor is about the fragment's
// statement structure.
type BlockFormat string

const (
	FormatStructured   BlockFormat = "structured"
	FormatUnstructured BlockFormat = "unstructured"
	FormatUnknown      BlockFormat = "unknown"
)

// CodeBlock is one tagged fragment recovered from free text. Blocks are
// independent values; callers filter overlaps as needed.
type CodeBlock struct {
	Type   BlockType   `json:"type"`
	Format BlockFormat `json:"format"`
	Text   string      `json:"text"`
}

type patternRule struct {
	blockType BlockType
	re        *regexp.Regexp
}

// Statement-shape rules, applied in order. The fixed-format detector runs
// independently of these; the two may overlap on the same region and both
// results are kept.
var patternRules = []patternRule{
	{BlockSQL, regexp.MustCompile(`(?ism)(CREATE\s+(?:TABLE|INDEX|VIEW|PROCEDURE|FUNCTION).*?;)`)},
	{BlockSQL, regexp.MustCompile(`(?ism)(SELECT.*?FROM.*?(?:;|$))`)},
	{BlockSQL, regexp.MustCompile(`(?ism)(INSERT\s+INTO.*?(?:;|$))`)},
	{BlockSQL, regexp.MustCompile(`(?ism)(UPDATE.*?SET.*?(?:;|$))`)},
	{BlockSQL, regexp.MustCompile(`(?ism)(DELETE\s+FROM.*?(?:;|$))`)},
	{BlockRPGFree, regexp.MustCompile(`(?ism)(DCL-.*?;)`)},
	{BlockRPGFree, regexp.MustCompile(`(?ism)(EXEC\s+SQL.*?;)`)},
	{BlockRPGFree, regexp.MustCompile(`(?ism)(IF\s+.*?ENDIF;)`)},
	{BlockRPGFree, regexp.MustCompile(`(?ism)(FOR\s+.*?ENDFOR;)`)},
	{BlockRPGFree, regexp.MustCompile(`(?ism)(MONITOR.*?ON-ERROR.*?ENDMON;)`)},
}

// Extract scans text for recognizable code fragments. It is a pure function
// of its input: the same text always yields the same blocks, pattern matches
// first, fixed-format regions last.
func Extract(text string) []CodeBlock {
	var blocks []CodeBlock
	for _, rule := range patternRules {
		for _, match := range rule.re.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			fragment := strings.TrimSpace(match[1])
			if fragment == "" {
				continue
			}
			blocks = append(blocks, CodeBlock{Type: rule.blockType, Format: FormatStructured, Text: fragment})
		}
	}
	for _, region := range rpg.FixedBlocks(text) {
		trimmed := strings.TrimSpace(region)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, CodeBlock{Type: BlockRPGFixed, Format: FormatUnknown, Text: trimmed})
	}
	return blocks
}

// Filter returns the blocks matching the requested type label, or all blocks
// when blockType is empty.
func Filter(blocks []CodeBlock, blockType BlockType) []CodeBlock {
	if blockType == "" {
		return blocks
	}
	var out []CodeBlock
	for _, block := range blocks {
		if block.Type == blockType {
			out = append(out, block)
		}
	}
	return out
}
