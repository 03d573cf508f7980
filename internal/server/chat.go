package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/payprhq/paypr-backend/internal/models"
	"github.com/payprhq/paypr-backend/internal/store"
)

const (
	defaultSessionTitle = "Untitled Chat"
	welcomeMessage      = "New chat session started. Ready to help with your documents!"
)

// sessionTitle derives a short title from the first user message.
func sessionTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 4 {
		words = words[:4]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > 30 {
		title = string(runes[:27]) + "..."
	}
	if title == "" {
		return "New Chat"
	}
	return title
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "documentId is required")
		return
	}

	if _, err := s.store.GetDocument(r.Context(), req.DocumentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		slog.Error("Failed to look up document for session.", "documentId", req.DocumentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	session := &models.ChatSession{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Title:      defaultSessionTitle,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateSession(r.Context(), session); err != nil {
		slog.Error("Failed to create session.", "documentId", req.DocumentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	// The welcome is stored as a regular assistant message so the history
	// endpoint returns it like any other turn.
	welcome := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   welcomeMessage,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(r.Context(), welcome); err != nil {
		slog.Warn("Failed to store welcome message.", "sessionId", session.ID, "error", err)
	}

	slog.Info("Chat session created.", "sessionId", session.ID, "documentId", req.DocumentID)
	writeJSON(w, http.StatusOK, models.SessionResponse{
		ID:         session.ID,
		DocumentID: session.DocumentID,
		Title:      session.Title,
		Message:    welcomeMessage,
		CreatedAt:  session.CreatedAt,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if _, err := s.store.GetDocument(r.Context(), documentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		slog.Error("Failed to look up document.", "documentId", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	sessions, err := s.store.ListSessionsByDocument(r.Context(), documentID)
	if err != nil {
		slog.Error("Failed to list sessions.", "documentId", documentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	responses := make([]models.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, models.SessionResponse{
			ID:         session.ID,
			DocumentID: session.DocumentID,
			Title:      session.Title,
			CreatedAt:  session.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, models.SessionListResponse{Sessions: responses, Total: len(responses)})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := s.store.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("Failed to look up session.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	messages, err := s.store.ListMessages(r.Context(), sessionID, 0)
	if err != nil {
		slog.Error("Failed to list messages.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, models.MessageResponse{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, models.MessageListResponse{Messages: responses, Total: len(responses)})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req models.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get session.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer message")
		return
	}

	record, err := s.store.GetDocument(r.Context(), session.DocumentID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found for this session")
		return
	}
	if err != nil {
		slog.Error("Failed to get session document.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer message")
		return
	}

	// History is taken before the new question is appended; the question
	// itself rides in the prompt, not the history.
	messages, err := s.store.ListMessages(r.Context(), sessionID, s.cfg.ChatHistoryWindow*2)
	if err != nil {
		slog.Error("Failed to load history.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer message")
		return
	}
	history := make([]models.ConversationTurn, 0, len(messages))
	for _, msg := range messages {
		history = append(history, models.ConversationTurn{Role: msg.Role, Content: msg.Content})
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(r.Context(), userMsg); err != nil {
		slog.Error("Failed to store user message.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer message")
		return
	}

	answer := s.chat.Answer(r.Context(), content, record.Context(), history)

	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(r.Context(), assistantMsg); err != nil {
		slog.Error("Failed to store assistant message.", "sessionId", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to answer message")
		return
	}

	if session.Title == "" || session.Title == defaultSessionTitle {
		if err := s.store.UpdateSessionTitle(r.Context(), sessionID, sessionTitle(content)); err != nil {
			slog.Warn("Failed to update session title.", "sessionId", sessionID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, models.AnswerResponse{
		SessionID: sessionID,
		Answer:    answer,
		CreatedAt: assistantMsg.CreatedAt,
	})
}
