// File path: internal/codescan/extractor_test.go
package codescan

import (
	"strings"
	"testing"
)

func TestExtractSQLStatements(t *testing.T) {
	text := "Reference doc.\n\nCREATE TABLE CUSTOMER (ID INT);\n\nSELECT NAME FROM CUSTOMER WHERE ID = 1;\n"
	blocks := Filter(Extract(text), BlockSQL)
	if len(blocks) < 2 {
		t.Fatalf("expected create and select fragments, got %v", blocks)
	}
	if blocks[0].Format != FormatStructured {
		t.Fatalf("expected structured format, got %s", blocks[0].Format)
	}
	if !strings.HasPrefix(blocks[0].Text, "CREATE TABLE") {
		t.Fatalf("expected create statement first, got %q", blocks[0].Text)
	}
}

func TestExtractFreeFormRPG(t *testing.T) {
	text := "Example:\nDCL-S counter INT(10);\nMONITOR;\n  READ custmast;\nON-ERROR;\n  dump();\nENDMON;\n"
	blocks := Filter(Extract(text), BlockRPGFree)
	var sawDecl, sawMonitor bool
	for _, block := range blocks {
		if strings.HasPrefix(block.Text, "DCL-S") {
			sawDecl = true
		}
		if strings.HasPrefix(block.Text, "MONITOR") {
			sawMonitor = true
		}
	}
	if !sawDecl || !sawMonitor {
		t.Fatalf("expected declaration and monitor fragments, got %v", blocks)
	}
}

func TestExtractFixedFormatRegion(t *testing.T) {
	fixed := "     C                   ADD       10            TOTAL"
	text := "Legacy excerpt follows.\n" + fixed + "\nExcerpt ends."
	blocks := Filter(Extract(text), BlockRPGFixed)
	if len(blocks) != 1 {
		t.Fatalf("expected one fixed-format block, got %v", blocks)
	}
	if blocks[0].Format != FormatUnknown {
		t.Fatalf("expected unknown format marker, got %s", blocks[0].Format)
	}
	if !strings.Contains(blocks[0].Text, "ADD") {
		t.Fatalf("expected block text preserved, got %q", blocks[0].Text)
	}
}

func TestExtractUnterminatedStatementStopsAtLineEnd(t *testing.T) {
	text := "SELECT NAME FROM CUSTOMER\nThe result set lists every active customer.\nSecond paragraph stays prose.\n"
	blocks := Filter(Extract(text), BlockSQL)
	if len(blocks) != 1 {
		t.Fatalf("expected one sql block, got %v", blocks)
	}
	if blocks[0].Text != "SELECT NAME FROM CUSTOMER" {
		t.Fatalf("expected match to end at the line break, got %q", blocks[0].Text)
	}
	if strings.Contains(blocks[0].Text, "prose") {
		t.Fatalf("prose leaked into code block: %q", blocks[0].Text)
	}
}

func TestExtractPureFunction(t *testing.T) {
	text := "SELECT A FROM B;\nDCL-S x CHAR(10);"
	first := Extract(text)
	second := Extract(text)
	if len(first) != len(second) {
		t.Fatalf("extract not repeatable: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("block %d differs between scans", i)
		}
	}
}

func TestExtractOverlapKept(t *testing.T) {
	// A fixed-format line that also matches no free-form rule still appears
	// once from the state machine; a free-form IF block inside prose appears
	// regardless of surrounding fixed regions.
	text := "     C     A             IFEQ      'A'\nIF status = 'A';\nENDIF;\n"
	blocks := Extract(text)
	if len(Filter(blocks, BlockRPGFixed)) == 0 {
		t.Fatalf("expected fixed block, got %v", blocks)
	}
	if len(Filter(blocks, BlockRPGFree)) == 0 {
		t.Fatalf("expected free-form block, got %v", blocks)
	}
}
