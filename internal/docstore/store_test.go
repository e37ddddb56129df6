// File path: internal/docstore/store_test.go
package docstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/legacyforge/rpgbridge/internal/codescan"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "catalog.db")
	cfg.ChunkSize = 120
	cfg.ChunkOverlap = 20
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetDocument(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	doc := Document{
		Filename:    "orders.txt",
		DocType:     "db2",
		Description: "order table notes",
		Content:     "The ORDERS table keys on ORDERNO and carries CUSTNO plus status flags.",
	}
	saved, err := store.SaveDocument(ctx, doc, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != DocumentID("orders.txt") {
		t.Fatalf("unexpected id %q", saved.ID)
	}

	got, err := store.GetDocument(ctx, "orders.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != doc.Content {
		t.Fatalf("content mismatch: %q", got.Content)
	}
	if got.DocType != "db2" {
		t.Fatalf("doc type mismatch: %q", got.DocType)
	}
}

func TestSaveDocumentRequiresFilename(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveDocument(context.Background(), Document{Content: "x"}, nil); err == nil {
		t.Fatal("expected error for missing filename")
	}
}

func TestSaveDocumentUpsertsByFilename(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := Document{Filename: "guide.txt", DocType: "rpg", Content: "first version"}
	if _, err := store.SaveDocument(ctx, first, nil); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := Document{Filename: "guide.txt", DocType: "rpg", Content: "second version"}
	if _, err := store.SaveDocument(ctx, second, nil); err != nil {
		t.Fatalf("save second: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 document after upsert, got %d", count)
	}
	got, err := store.GetDocument(ctx, "guide.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "second version" {
		t.Fatalf("expected replaced content, got %q", got.Content)
	}
}

func TestListDocumentsFiltersByType(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	docs := []Document{
		{Filename: "a.txt", DocType: "db2", Content: "alpha", UploadedAt: time.Now().Add(-2 * time.Hour)},
		{Filename: "b.txt", DocType: "rpg", Content: "beta", UploadedAt: time.Now().Add(-time.Hour)},
		{Filename: "c.txt", DocType: "db2", Content: "gamma", UploadedAt: time.Now()},
	}
	for _, doc := range docs {
		if _, err := store.SaveDocument(ctx, doc, nil); err != nil {
			t.Fatalf("save %s: %v", doc.Filename, err)
		}
	}

	all, err := store.ListDocuments(ctx, "all")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}
	if all[0].Filename != "c.txt" {
		t.Fatalf("expected newest first, got %q", all[0].Filename)
	}
	if all[0].Content != "" {
		t.Fatal("listing should not carry content")
	}

	db2, err := store.ListDocuments(ctx, "db2")
	if err != nil {
		t.Fatalf("list db2: %v", err)
	}
	if len(db2) != 2 {
		t.Fatalf("expected 2 db2 documents, got %d", len(db2))
	}
}

func TestSearchReturnsExcerpts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("Filler text about nothing in particular. ", 10) +
		"The CUSTMAST file holds customer master records keyed by CUSTNO. " +
		strings.Repeat("More filler following the interesting part. ", 10)
	if _, err := store.SaveDocument(ctx, Document{Filename: "cust.txt", DocType: "db2", Content: long}, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.SaveDocument(ctx, Document{Filename: "other.txt", DocType: "db2", Content: "unrelated material"}, nil); err != nil {
		t.Fatalf("save other: %v", err)
	}

	results, err := store.Search(ctx, "custmast", "all", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Document.Filename != "cust.txt" {
		t.Fatalf("unexpected document %q", results[0].Document.Filename)
	}
	if len(results[0].Excerpts) == 0 {
		t.Fatal("expected at least one excerpt")
	}
	for _, excerpt := range results[0].Excerpts {
		if len([]rune(excerpt)) > 210 {
			t.Fatalf("excerpt too long: %d runes", len([]rune(excerpt)))
		}
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Search(context.Background(), "   ", "all", 5); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestCodeBlocksFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	blocks := []codescan.CodeBlock{
		{Type: codescan.BlockSQL, Format: codescan.FormatStructured, Text: "SELECT CUSTNO FROM CUSTMAST;"},
		{Type: codescan.BlockRPGFree, Format: codescan.FormatStructured, Text: "DCL-S total PACKED(9:2);"},
	}
	saved, err := store.SaveDocument(ctx, Document{Filename: "mix.txt", DocType: "rpg", Content: "examples"}, blocks)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.CodeBlocks != 2 {
		t.Fatalf("expected 2 code blocks recorded, got %d", saved.CodeBlocks)
	}

	sqlOnly, err := store.CodeBlocks(ctx, "sql", "")
	if err != nil {
		t.Fatalf("code blocks: %v", err)
	}
	if len(sqlOnly) != 1 || sqlOnly[0].Type != "sql" {
		t.Fatalf("unexpected sql filter result: %+v", sqlOnly)
	}
	if sqlOnly[0].Filename != "mix.txt" {
		t.Fatalf("expected source filename, got %q", sqlOnly[0].Filename)
	}

	topical, err := store.CodeBlocks(ctx, "all", "custmast")
	if err != nil {
		t.Fatalf("topic filter: %v", err)
	}
	if len(topical) != 1 || !strings.Contains(topical[0].Content, "CUSTMAST") {
		t.Fatalf("unexpected topic filter result: %+v", topical)
	}
}
