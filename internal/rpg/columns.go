// File path: internal/rpg/columns.go
package rpg

import "strings"

// RecordTag identifies the specification type of a fixed-format RPG line.
type RecordTag string

const (
	TagControl     RecordTag = "control"
	TagFile        RecordTag = "file"
	TagDefinition  RecordTag = "definition"
	TagInput       RecordTag = "input"
	TagCalculation RecordTag = "calculation"
	TagOutput      RecordTag = "output"
	TagUnknown     RecordTag = "unknown"
)

// minRecordWidth is the shortest line that can carry a specification tag.
// Shorter lines are unrecognized and contribute nothing.
const minRecordWidth = 6

// tagColumn is the 0-indexed column holding the specification letter.
const tagColumn = 5

var tagLetters = map[byte]RecordTag{
	'H': TagControl,
	'F': TagFile,
	'D': TagDefinition,
	'I': TagInput,
	'C': TagCalculation,
	'O': TagOutput,
}

// fieldRange is a 0-indexed, end-exclusive column span. The spans below are
// the fixed-format layout contract; changing them breaks compatibility with
// legacy source members.
type fieldRange struct {
	start int
	end   int
}

func (r fieldRange) slice(line string) string {
	if r.start >= len(line) {
		return ""
	}
	end := r.end
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[r.start:end])
}

// Field names used in SpecEntry.Fields.
const (
	FieldName       = "name"
	FieldTypeCode   = "type"
	FieldDevice     = "device"
	FieldKeyed      = "keyed"
	FieldIndicators = "indicators"
	FieldFactor1    = "factor1"
	FieldOpcode     = "opcode"
	FieldFactor2    = "factor2"
	FieldResult     = "result"
	FieldKind       = "kind"
)

var columnTable = map[RecordTag]map[string]fieldRange{
	TagFile: {
		FieldName:     {7, 15},
		FieldTypeCode: {15, 16},
		FieldKeyed:    {33, 34},
		FieldDevice:   {35, 42},
	},
	TagCalculation: {
		FieldIndicators: {7, 11},
		FieldFactor1:    {11, 25},
		FieldOpcode:     {26, 36},
		FieldFactor2:    {36, 49},
		FieldResult:     {50, 63},
	},
	TagDefinition: {
		FieldName: {6, 21},
		FieldKind: {24, 25},
	},
}

// SpecEntry is one classified fixed-format line. Fields holds the trimmed
// column extracts defined for the tag; tags without a column table carry an
// empty map.
type SpecEntry struct {
	Tag    RecordTag
	LineNo int
	Raw    string
	Fields map[string]string
}

// Classify reads the specification tag and its column fields from a single
// source line. Malformed or short lines come back as TagUnknown; no error is
// ever raised.
func Classify(line string, lineNo int) SpecEntry {
	entry := SpecEntry{Tag: TagUnknown, LineNo: lineNo, Raw: line, Fields: map[string]string{}}
	if len(line) < minRecordWidth {
		return entry
	}
	tag, ok := tagLetters[upperByte(line[tagColumn])]
	if !ok {
		return entry
	}
	entry.Tag = tag
	for name, span := range columnTable[tag] {
		entry.Fields[name] = span.slice(line)
	}
	return entry
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
