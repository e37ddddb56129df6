// File path: internal/rpg/converter.go
package rpg

import (
	"fmt"
	"strings"
)

// StandardsHints enables the optional post-pass that normalizes indentation
// of the generated free-form source.
type StandardsHints struct {
	IndentUnit string
}

const defaultIndentUnit = "  "

// verifyMarker is appended to definition placeholders; full data-type
// recovery from the fixed layout is out of scope.
const verifyMarker = "// verify recovered type"

// ConversionResult carries the generated free-form source together with the
// decisions and review items recorded along the way. Success=false means the
// generated text is not authoritative; Original is never modified.
type ConversionResult struct {
	Original string          `json:"original"`
	FreeForm string          `json:"freeform"`
	Notes    []string        `json:"notes,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
}

// usageByTypeCode maps the F-spec file-type code to a free-form USAGE clause.
var usageByTypeCode = map[string]string{
	"I": "*INPUT",
	"O": "*OUTPUT",
	"U": "*UPDATE",
	"C": "*INPUT:*OUTPUT",
}

// arithmeticOps maps arithmetic mnemonics to their infix symbol.
var arithmeticOps = map[string]string{
	"ADD":  "+",
	"SUB":  "-",
	"MULT": "*",
	"DIV":  "/",
}

// assignmentOps are mnemonics that reduce to a plain assignment.
var assignmentOps = map[string]struct{}{
	"MOVE":  {},
	"MOVEL": {},
	"Z-ADD": {},
}

// comparisonOps maps structured-conditional mnemonics to their operator.
var comparisonOps = map[string]string{
	"IFEQ": "=",
	"IFNE": "<>",
	"IFGT": ">",
	"IFLT": "<",
	"IFGE": ">=",
	"IFLE": "<=",
}

// Convert analyzes the fixed-format source and emits the equivalent
// free-form member. Any internal failure is captured in the result rather
// than propagated; the original source is preserved untouched either way.
func Convert(source string, hints *StandardsHints) (result *ConversionResult) {
	result = &ConversionResult{Original: source}
	defer func() {
		if r := recover(); r != nil {
			result.FreeForm = ""
			result.Success = false
			result.Error = fmt.Sprintf("conversion failed: %v", r)
		}
	}()

	analysis := Analyze(source)
	result.Analysis = analysis
	if analysis.FixedLines == 0 {
		result.Success = true
		result.Notes = append(result.Notes, "no fixed-format records recognized; nothing to convert")
		return result
	}

	var lines []string
	emit := func(line string) { lines = append(lines, line) }
	note := func(format string, args ...interface{}) {
		result.Notes = append(result.Notes, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...interface{}) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	if len(analysis.Entries[TagControl]) > 0 {
		emit("CTL-OPT DFTACTGRP(*NO) ACTGRP(*CALLER);")
		note("control specifications replaced by a single CTL-OPT statement")
	}

	for _, entry := range analysis.Entries[TagFile] {
		emit(convertFile(entry, note))
	}

	for _, entry := range analysis.Entries[TagDefinition] {
		name := entry.Fields[FieldName]
		if name == "" {
			continue
		}
		emit(fmt.Sprintf("DCL-S %s VARCHAR(100); %s", name, verifyMarker))
		note("line %d: definition %s declared with placeholder type", entry.LineNo, name)
	}

	if len(analysis.Entries[TagCalculation]) > 0 && len(lines) > 0 {
		emit("")
	}
	for _, entry := range analysis.Entries[TagCalculation] {
		if ind := entry.Fields[FieldIndicators]; ind != "" {
			warn("line %d: conditioning indicators %q require manual review", entry.LineNo, ind)
		}
		convertCalc(entry, emit, note)
	}

	if hints != nil {
		lines = applyStandards(lines, hints, note)
	}

	result.FreeForm = strings.Join(lines, "\n")
	result.Success = true
	return result
}

func convertFile(entry SpecEntry, note func(string, ...interface{})) string {
	name := entry.Fields[FieldName]
	device := entry.Fields[FieldDevice]
	if device == "" {
		device = "DISK"
	}
	usage, ok := usageByTypeCode[strings.ToUpper(entry.Fields[FieldTypeCode])]
	if !ok {
		usage = "*INPUT"
		note("line %d: file %s has unrecognized type code %q, defaulted to input", entry.LineNo, name, entry.Fields[FieldTypeCode])
	}
	decl := fmt.Sprintf("DCL-F %s %s(*EXT) USAGE(%s)", name, device, usage)
	if strings.EqualFold(entry.Fields[FieldKeyed], "K") {
		decl += " KEYED"
	}
	note("line %d: file %s declared with usage %s", entry.LineNo, name, usage)
	return decl + ";"
}

// convertCalculation translates one C-spec through the mnemonic dispatch
// tables. Unknown mnemonics are preserved as commented originals so nothing
// is silently dropped.
// convertCalc indirects the calculation dispatch; the recover path in
// Convert is exercised through it.
var convertCalc = convertCalculation

func convertCalculation(entry SpecEntry, emit func(string), note func(string, ...interface{})) {
	op := strings.ToUpper(entry.Fields[FieldOpcode])
	factor1 := entry.Fields[FieldFactor1]
	factor2 := entry.Fields[FieldFactor2]
	resultField := entry.Fields[FieldResult]

	switch {
	case op == opBeginSubroutine:
		emit(fmt.Sprintf("DCL-PROC %s;", resultField))
		note("line %d: subroutine %s converted to procedure", entry.LineNo, resultField)
	case op == "ENDSR":
		emit("END-PROC;")
		note("line %d: subroutine end converted to END-PROC", entry.LineNo)
	case op == "EXSR":
		emit(fmt.Sprintf("%s();", factor2))
		note("line %d: EXSR %s converted to direct call", entry.LineNo, factor2)
	case op == "CHAIN":
		emit(fmt.Sprintf("CHAIN (%s) %s;", factor1, factor2))
		emit(fmt.Sprintf("IF NOT %%FOUND(%s);", factor2))
		emit("// record not found")
		emit("ENDIF;")
		note("line %d: CHAIN converted with generated not-found guard", entry.LineNo)
	case op == "ELSE":
		emit("ELSE;")
		note("line %d: ELSE carried over", entry.LineNo)
	case op == "ENDIF" || op == "END":
		emit("ENDIF;")
		note("line %d: block end converted to ENDIF", entry.LineNo)
	default:
		if symbol, ok := arithmeticOps[op]; ok {
			if factor1 == "" {
				emit(fmt.Sprintf("%s %s= %s;", resultField, symbol, factor2))
			} else {
				emit(fmt.Sprintf("%s = %s %s %s;", resultField, factor1, symbol, factor2))
			}
			note("line %d: %s converted to infix %s", entry.LineNo, op, symbol)
			return
		}
		if _, ok := assignmentOps[op]; ok {
			emit(fmt.Sprintf("%s = %s;", resultField, factor2))
			note("line %d: %s converted to assignment", entry.LineNo, op)
			return
		}
		if operator, ok := comparisonOps[op]; ok {
			emit(fmt.Sprintf("IF %s %s %s;", factor1, operator, factor2))
			note("line %d: %s converted to structured IF", entry.LineNo, op)
			return
		}
		emit(fmt.Sprintf("// UNSUPPORTED: %s", strings.TrimSpace(entry.Raw)))
		note("line %d: opcode %s has no free-form mapping; original preserved as comment", entry.LineNo, op)
	}
}

// applyStandards indents every generated line that is not a declaration or
// directive by exactly one indent unit.
func applyStandards(lines []string, hints *StandardsHints, note func(string, ...interface{})) []string {
	unit := hints.IndentUnit
	if unit == "" {
		unit = defaultIndentUnit
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isDeclarationLine(trimmed) || isDirectiveLine(trimmed) {
			out[i] = trimmed
			continue
		}
		out[i] = unit + trimmed
		note("standards: indented generated line %d", i+1)
	}
	return out
}

func isDeclarationLine(line string) bool {
	upper := strings.ToUpper(line)
	return strings.HasPrefix(upper, "DCL-") || strings.HasPrefix(upper, "END-PROC")
}

func isDirectiveLine(line string) bool {
	upper := strings.ToUpper(line)
	return strings.HasPrefix(upper, "**") || strings.HasPrefix(upper, "CTL-OPT")
}
