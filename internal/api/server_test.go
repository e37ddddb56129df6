// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/legacyforge/rpgbridge/internal/artifact"
	"github.com/legacyforge/rpgbridge/internal/docstore"
	"github.com/legacyforge/rpgbridge/internal/llm"
)

type stubProvider struct {
	completions []*llm.Completion
	calls       int
}

func (p *stubProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "stub reply", nil
}

func (p *stubProvider) ChatTools(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (*llm.Completion, error) {
	if p.calls < len(p.completions) {
		c := p.completions[p.calls]
		p.calls++
		return c, nil
	}
	p.calls++
	return &llm.Completion{Content: "stub reply"}, nil
}

func (p *stubProvider) Name() string { return "stub" }

func newTestServer(t *testing.T, provider llm.Provider) *Server {
	t.Helper()
	cfg := docstore.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "catalog.db")
	docs, err := docstore.Open(cfg)
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	arts, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("open artifact store: %v", err)
	}
	if provider == nil {
		provider = &stubProvider{}
	}
	srv, err := NewServer(docs, arts, provider, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func uploadFile(t *testing.T, srv *Server, filename, docType, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if docType != "" {
		if err := writer.WriteField("document_type", docType); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestUploadAndListDocuments(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := uploadFile(t, srv, "standards.md", "standards",
		"House rules.\n\nSELECT CUSTNO FROM CUSTMAST WHERE STATUS = 'A';\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", rec.Code, rec.Body.String())
	}
	var doc docstore.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Filename != "standards.md" || doc.DocType != "standards" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.CodeBlocks != 1 {
		t.Fatalf("expected 1 extracted code block, got %d", doc.CodeBlocks)
	}
	if doc.Content != "" {
		t.Fatal("upload response should not echo content")
	}

	rec = doJSON(t, srv, http.MethodGet, "/documents?type=standards", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}
	var listing struct {
		Documents []docstore.Document `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(listing.Documents))
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := uploadFile(t, srv, "binary.exe", "reference", "MZ")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file type") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	source := "     FCUSTMAST IF   E           K DISK\n"
	rec := doJSON(t, srv, http.MethodPost, "/v1/analyze", map[string]string{"source": source})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var analysis struct {
		FixedLines int    `json:"fixed_lines"`
		Complexity string `json:"complexity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.FixedLines != 1 {
		t.Fatalf("expected 1 fixed line, got %d", analysis.FixedLines)
	}
	if analysis.Complexity != "low" {
		t.Fatalf("expected low complexity, got %q", analysis.Complexity)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/analyze", map[string]string{"source": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank source, got %d", rec.Code)
	}
}

func TestConvertEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/v1/convert", map[string]interface{}{
		"source": "     H DATEDIT(*YMD)\n", "indent": 4,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Success  bool   `json:"success"`
		FreeForm string `json:"freeform"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Fatal("expected successful conversion")
	}
	if !strings.Contains(result.FreeForm, "CTL-OPT") {
		t.Fatalf("expected control declaration, got %q", result.FreeForm)
	}
}

func TestChatRunsToolLoop(t *testing.T) {
	provider := &stubProvider{
		completions: []*llm.Completion{
			{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "list_documents", Arguments: "{}"}}},
			{Content: "catalog is empty"},
		},
	}
	srv := newTestServer(t, provider)
	rec := doJSON(t, srv, http.MethodPost, "/v1/chat", map[string]interface{}{
		"message": "what documents do we have?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "catalog is empty" {
		t.Fatalf("unexpected response: %q", resp.Response)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", provider.calls)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/v1/chat", map[string]string{"message": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestToolsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/v1/tools", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Tools) != 10 {
		t.Fatalf("expected 10 tools, got %d", len(payload.Tools))
	}
}

func TestMCPToolsList(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/mcp", map[string]interface{}{
		"jsonrpc": "2.0", "id": 1, "method": "tools/list",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Result struct {
			Tools []toolDescriptor `json:"tools"`
		} `json:"result"`
		Error *rpcError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if len(resp.Result.Tools) != 10 {
		t.Fatalf("expected 10 tools, got %d", len(resp.Result.Tools))
	}
	for _, tool := range resp.Result.Tools {
		if tool.InputSchema == nil {
			t.Fatalf("tool %q missing inputSchema", tool.Name)
		}
	}
}

func TestMCPToolsCall(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/mcp", map[string]interface{}{
		"jsonrpc": "2.0", "id": 2, "method": "tools/call",
		"params": map[string]interface{}{"name": "list_documents", "arguments": map[string]interface{}{}},
	})
	var resp struct {
		Result toolCallResult `json:"result"`
		Error  *rpcError      `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if len(resp.Result.Content) != 1 || !strings.Contains(resp.Result.Content[0].Text, "No documents") {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}

func TestMCPUnknownToolIsErrorResult(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/mcp", map[string]interface{}{
		"jsonrpc": "2.0", "id": 3, "method": "tools/call",
		"params": map[string]interface{}{"name": "drop_tables"},
	})
	var resp struct {
		Result toolCallResult `json:"result"`
		Error  *rpcError      `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("tool failure should be a result, got protocol error: %+v", resp.Error)
	}
	if !resp.Result.IsError {
		t.Fatal("expected isError result")
	}
}

func TestMCPMethodNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/mcp", map[string]interface{}{
		"jsonrpc": "2.0", "id": 4, "method": "resources/list",
	})
	var resp struct {
		Error *rpcError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != rpcMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestArtifactsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/artifacts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Artifacts []artifact.Artifact `json:"artifacts"`
		Count     int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 0 || payload.Artifacts == nil {
		t.Fatalf("expected empty artifact list, got %+v", payload)
	}

	created, err := srv.artifacts.Create(context.Background(), "prog.rpgle", "rpgle", "", "CTL-OPT;")
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	rec = doJSON(t, srv, http.MethodGet, "/artifacts", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if payload.Count != 1 || payload.Artifacts[0].ID != created.ID {
		t.Fatalf("expected created artifact, got %+v", payload)
	}
}

func TestLogsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	// exercise a couple of requests so the sink has entries
	for i := 0; i < 2; i++ {
		doJSON(t, srv, http.MethodGet, fmt.Sprintf("/healthz?i=%d", i), nil)
	}
	rec := doJSON(t, srv, http.MethodGet, "/v1/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Logs []map[string]interface{} `json:"logs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
