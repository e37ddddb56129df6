// File path: internal/api/chat_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/llm"
	"github.com/legacyforge/rpgbridge/internal/tools"
)

const chatSystemPrompt = "You are a DB2/RPG coding assistant. Help with code-related questions, " +
	"reference uploaded documents when possible, and provide accurate technical guidance. " +
	"Use the available tools to search references, analyze fixed-format RPG, convert source, " +
	"review code, and persist generated artifacts."

type chatRequest struct {
	Message   string `json:"message"`
	System    string `json:"system,omitempty"`
	MaxRounds int    `json:"max_rounds,omitempty"`
	History   []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Provider string `json:"provider"`
}

// handleChat runs one bounded orchestration loop: the transcript starts from
// the system prompt plus any supplied history and ends when the model
// answers without tool calls or the round cap is hit.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	system := chatSystemPrompt
	if strings.TrimSpace(req.System) != "" {
		system = strings.TrimSpace(req.System)
	}
	transcript := []llm.Message{{Role: "system", Content: system}}
	for _, msg := range req.History {
		role := trimLower(msg.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		transcript = append(transcript, llm.Message{Role: role, Content: msg.Content})
	}
	transcript = append(transcript, llm.Message{Role: "user", Content: req.Message})

	maxRounds := req.MaxRounds
	if maxRounds <= 0 || maxRounds > s.cfg.MaxChatRounds {
		maxRounds = s.cfg.MaxChatRounds
	}
	logger.Info("api: chat requested", "history", len(req.History), "max_rounds", maxRounds)
	answer, err := s.runner.Run(r.Context(), transcript, tools.Catalog(), maxRounds)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("chat completion: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: answer, Provider: s.provider.Name()})
}
