// File path: internal/api/upload_handler.go
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/legacyforge/rpgbridge/internal/artifact"
	"github.com/legacyforge/rpgbridge/internal/codescan"
	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/docstore"
)

var allowedUploadExts = map[string]struct{}{
	".md": {}, ".markdown": {}, ".txt": {}, ".rpgle": {}, ".rpg": {}, ".sql": {},
}

// handleUpload ingests one reference document: a multipart "file" part plus
// optional document_type and description fields. Content is chunked and its
// code fragments are extracted before the catalog row is written.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload form: %w", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file part required: %w", err))
		return
	}
	defer file.Close()

	filename := filepath.Base(strings.TrimSpace(header.Filename))
	if filename == "" || filename == "." {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file name required"))
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedUploadExts[ext]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", ext))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.cfg.MaxUploadBytes))
		return
	}
	if !utf8.Valid(data) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file content must be UTF-8 text"))
		return
	}
	content := string(data)

	doc := docstore.Document{
		Filename:    filename,
		DocType:     trimLower(r.FormValue("document_type")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Content:     content,
	}
	blocks := codescan.Extract(content)
	saved, err := s.docs.SaveDocument(r.Context(), doc, blocks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("save document: %w", err))
		return
	}
	logger.Info("api: document uploaded", "filename", saved.Filename, "type", saved.DocType, "bytes", len(data))
	saved.Content = ""
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.ListDocuments(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	arts, err := s.artifacts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if arts == nil {
		arts = []artifact.Artifact{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"artifacts": arts, "count": len(arts)})
}
