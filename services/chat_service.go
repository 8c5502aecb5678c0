package services

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/memory"
	"github.com/vytalcare/health-navigator/navigator"
)

// ChatService exposes the chat pipeline over HTTP. The streaming endpoint
// emits newline-delimited JSON frames so browser clients can read tokens
// incrementally.
type ChatService struct {
	flow    *navigator.ChatFlow
	history *memory.HistoryManager
}

func ProvideChatService(flow *navigator.ChatFlow, history *memory.HistoryManager) *ChatService {
	return &ChatService{flow: flow, history: history}
}

func (s *ChatService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

func (s *ChatService) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	thread := s.history.LoadThread(r.Context(), req.SessionID)
	response := s.flow.Run(r.Context(), req.Message, thread.Messages)

	thread.UserID = req.UserID
	if err := s.history.AppendTurn(r.Context(), thread, req.Message, response.Response, response.Sources); err != nil {
		logger.Error("Failed to persist chat turn", zap.String("sessionId", req.SessionID), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *ChatService) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	thread := s.history.LoadThread(r.Context(), req.SessionID)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	reporter := navigator.NewNDJSONReporter(w)
	answer, err := s.flow.RunStream(r.Context(), req.Message, thread.Messages, reporter)
	if err != nil {
		// Already reported in-band; nothing more to send on a committed stream.
		logger.Error("Streaming chat failed", zap.String("sessionId", req.SessionID), zap.Error(err))
	}

	if answer != "" {
		thread.UserID = req.UserID
		if err := s.history.AppendTurn(r.Context(), thread, req.Message, answer, nil); err != nil {
			logger.Error("Failed to persist streamed turn", zap.String("sessionId", req.SessionID), zap.Error(err))
		}
	}
}

func (s *ChatService) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return req, false
	}

	return req, true
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
