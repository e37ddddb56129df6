// File path: internal/api/mcp_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/tools"
)

// JSON-RPC 2.0 error codes used by the MCP endpoint.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type toolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type toolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// handleMCP serves the tool surface over JSON-RPC 2.0 so MCP clients can
// drive the same runtime the chat loop uses. Tool failures come back as
// isError results, not protocol errors.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: rpcParseError, Message: "parse error: " + err.Error()}})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcInvalidRequest, Message: "invalid request"}})
		return
	}

	switch req.Method {
	case "tools/list":
		specs := tools.Catalog()
		descriptors := make([]toolDescriptor, 0, len(specs))
		for _, spec := range specs {
			descriptors = append(descriptors, toolDescriptor{
				Name:        spec.Name,
				Description: spec.Description,
				InputSchema: spec.Schema,
			})
		}
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{"tools": descriptors}})
	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcInvalidRequest, Message: "tool name required"}})
			return
		}
		logger.Info("api: mcp tool call", "tool", params.Name)
		out, err := s.runtime.Invoke(r.Context(), params.Name, params.Arguments)
		if err != nil {
			writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: toolCallResult{
				Content: []textContent{{Type: "text", Text: err.Error()}},
				IsError: true,
			}})
			return
		}
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: toolCallResult{
			Content: []textContent{{Type: "text", Text: out}},
		}})
	default:
		writeRPC(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcMethodNotFound, Message: "method not found: " + req.Method}})
	}
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	writeJSON(w, http.StatusOK, resp)
}
