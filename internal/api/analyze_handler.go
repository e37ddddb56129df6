// File path: internal/api/analyze_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/rpg"
)

type analyzeRequest struct {
	Source string `json:"source"`
}

type convertRequest struct {
	Source string `json:"source"`
	Indent int    `json:"indent,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("source is required"))
		return
	}
	analysis := rpg.Analyze(req.Source)
	common.Logger().Info("api: source analyzed", "fixed_lines", analysis.FixedLines, "complexity", analysis.Complexity)
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("source is required"))
		return
	}
	var hints *rpg.StandardsHints
	if req.Indent > 0 {
		hints = &rpg.StandardsHints{IndentUnit: strings.Repeat(" ", req.Indent)}
	}
	result := rpg.Convert(req.Source, hints)
	common.Logger().Info("api: source converted", "success", result.Success, "warnings", len(result.Warnings))
	writeJSON(w, http.StatusOK, result)
}
