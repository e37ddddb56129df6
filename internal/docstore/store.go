// File path: internal/docstore/store.go
package docstore

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tmc/langchaingo/textsplitter"
	_ "modernc.org/sqlite"

	"github.com/legacyforge/rpgbridge/internal/codescan"
	"github.com/legacyforge/rpgbridge/internal/common"
)

// Document is one processed reference document. Content is the already
// decoded text handed over by ingestion; the store never sees binaries.
type Document struct {
	ID          string    `db:"id" json:"id"`
	Filename    string    `db:"filename" json:"filename"`
	DocType     string    `db:"doc_type" json:"doc_type"`
	Description string    `db:"description" json:"description"`
	Content     string    `db:"content" json:"content,omitempty"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
	CodeBlocks  int       `db:"code_blocks" json:"code_blocks"`
}

// StoredBlock is a persisted code fragment extracted at ingest time.
type StoredBlock struct {
	DocID    string `db:"doc_id" json:"doc_id"`
	Filename string `db:"filename" json:"filename"`
	Type     string `db:"block_type" json:"type"`
	Format   string `db:"format" json:"format"`
	Content  string `db:"content" json:"content"`
}

// SearchResult pairs a matching document with its relevant excerpts.
type SearchResult struct {
	Document Document `json:"document"`
	Excerpts []string `json:"excerpts"`
}

// Store wraps a pooled sqlx.DB connection to the SQLite catalog.
type Store struct {
	db       *sqlx.DB
	splitter textsplitter.RecursiveCharacter
}

// Open constructs a Store at the configured path, migrating the schema on
// first use.
func Open(cfg Config) (*Store, error) {
	cfg.applyDefaults()
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	store := &Store{
		db: db,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
	}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`PRAGMA journal_mode = WAL;`,
	`CREATE TABLE IF NOT EXISTS documents (
                id TEXT PRIMARY KEY,
                filename TEXT NOT NULL UNIQUE,
                doc_type TEXT NOT NULL,
                description TEXT,
                content TEXT NOT NULL,
                uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS chunks (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                doc_id TEXT NOT NULL,
                seq INTEGER NOT NULL,
                content TEXT NOT NULL,
                FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS code_blocks (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                doc_id TEXT NOT NULL,
                block_type TEXT NOT NULL,
                format TEXT NOT NULL,
                content TEXT NOT NULL,
                FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
        );`,
	`CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type);`,
	`CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);`,
	`CREATE INDEX IF NOT EXISTS idx_code_blocks_type ON code_blocks(block_type);`,
}

// DocumentID derives the stable catalog id for a filename.
func DocumentID(filename string) string {
	sum := md5.Sum([]byte(filename))
	return hex.EncodeToString(sum[:])
}

// SaveDocument upserts a document, re-chunks its content for search, and
// replaces its extracted code blocks.
func (s *Store) SaveDocument(ctx context.Context, doc Document, blocks []codescan.CodeBlock) (Document, error) {
	logger := common.Logger()
	doc.Filename = strings.TrimSpace(doc.Filename)
	if doc.Filename == "" {
		return Document{}, errors.New("filename required")
	}
	if doc.ID == "" {
		doc.ID = DocumentID(doc.Filename)
	}
	if doc.DocType == "" {
		doc.DocType = "reference"
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	chunks, err := s.splitter.SplitText(doc.Content)
	if err != nil {
		return Document{}, fmt.Errorf("split content: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, doc_type, description, content, uploaded_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT(id) DO UPDATE SET doc_type=excluded.doc_type,
                        description=excluded.description, content=excluded.content,
                        uploaded_at=excluded.uploaded_at`,
		doc.ID, doc.Filename, doc.DocType, doc.Description, doc.Content, doc.UploadedAt); err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, doc.ID); err != nil {
		return Document{}, fmt.Errorf("clear chunks: %w", err)
	}
	for seq, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chunks (doc_id, seq, content) VALUES (?, ?, ?)`, doc.ID, seq, chunk); err != nil {
			return Document{}, fmt.Errorf("save chunk %d: %w", seq, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM code_blocks WHERE doc_id = ?`, doc.ID); err != nil {
		return Document{}, fmt.Errorf("clear code blocks: %w", err)
	}
	for _, block := range blocks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO code_blocks (doc_id, block_type, format, content) VALUES (?, ?, ?, ?)`,
			doc.ID, string(block.Type), string(block.Format), block.Text); err != nil {
			return Document{}, fmt.Errorf("save code block: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("commit save: %w", err)
	}
	doc.CodeBlocks = len(blocks)
	logger.Info("docstore: document saved", "filename", doc.Filename, "type", doc.DocType, "chunks", len(chunks), "code_blocks", len(blocks))
	return doc, nil
}

// GetDocument loads one document with content by filename.
func (s *Store) GetDocument(ctx context.Context, filename string) (Document, error) {
	var doc Document
	err := s.db.GetContext(ctx, &doc,
		`SELECT d.id, d.filename, d.doc_type, d.description, d.content, d.uploaded_at,
                        (SELECT COUNT(*) FROM code_blocks b WHERE b.doc_id = d.id) AS code_blocks
                 FROM documents d WHERE d.filename = ?`, filename)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q not found", filename)
	}
	return doc, err
}

// ListDocuments returns document metadata (without content), newest first,
// optionally filtered by doc type. docType "all" or "" means no filter.
func (s *Store) ListDocuments(ctx context.Context, docType string) ([]Document, error) {
	query := `SELECT d.id, d.filename, d.doc_type, d.description, '' AS content, d.uploaded_at,
                        (SELECT COUNT(*) FROM code_blocks b WHERE b.doc_id = d.id) AS code_blocks
                 FROM documents d`
	var args []interface{}
	docType = strings.ToLower(strings.TrimSpace(docType))
	if docType != "" && docType != "all" {
		query += ` WHERE d.doc_type = ?`
		args = append(args, docType)
	}
	query += ` ORDER BY d.uploaded_at DESC`
	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Search finds documents whose chunks contain the query and returns up to
// two excerpts per document, capped at maxResults documents.
func (s *Store) Search(ctx context.Context, query, docType string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query required")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	docs, err := s.ListDocuments(ctx, docType)
	if err != nil {
		return nil, err
	}
	needle := "%" + strings.ToLower(query) + "%"
	var results []SearchResult
	for _, doc := range docs {
		var excerpts []string
		err := s.db.SelectContext(ctx, &excerpts,
			`SELECT content FROM chunks WHERE doc_id = ? AND LOWER(content) LIKE ? ORDER BY seq LIMIT 2`,
			doc.ID, needle)
		if err != nil {
			return nil, fmt.Errorf("search chunks: %w", err)
		}
		if len(excerpts) == 0 {
			continue
		}
		for i, excerpt := range excerpts {
			excerpts[i] = clipExcerpt(excerpt, 200)
		}
		results = append(results, SearchResult{Document: doc, Excerpts: excerpts})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

// CodeBlocks returns stored fragments, optionally filtered by block type and
// by a topic substring.
func (s *Store) CodeBlocks(ctx context.Context, blockType, topic string) ([]StoredBlock, error) {
	query := `SELECT b.doc_id, d.filename, b.block_type, b.format, b.content
                 FROM code_blocks b INNER JOIN documents d ON d.id = b.doc_id`
	var clauses []string
	var args []interface{}
	blockType = strings.ToLower(strings.TrimSpace(blockType))
	if blockType != "" && blockType != "all" {
		clauses = append(clauses, `b.block_type = ?`)
		args = append(args, blockType)
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		clauses = append(clauses, `LOWER(b.content) LIKE ?`)
		args = append(args, "%"+strings.ToLower(topic)+"%")
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY b.id`
	var blocks []StoredBlock
	if err := s.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("list code blocks: %w", err)
	}
	return blocks, nil
}

// Count returns the number of catalogued documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func clipExcerpt(text string, limit int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)
	if len(runes) <= limit {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
