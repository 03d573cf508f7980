package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/payprhq/paypr-backend/internal/gemini"
	"github.com/payprhq/paypr-backend/internal/metrics"
	"github.com/payprhq/paypr-backend/internal/models"
)

// ChatFallbackAnswer is returned whenever the model call fails. A chat turn
// never hard-fails.
const ChatFallbackAnswer = "I apologize, but I encountered an error while processing your question. Please try again."

// ChatService answers questions strictly from a document's canonical text.
// It is stateless: conversation identity and history persistence belong to
// the caller, which supplies the bounded history window on each call.
type ChatService struct {
	generator     TextGenerator
	historyWindow int
}

// NewChatService creates a chat service keeping at most historyWindow
// previous turns in each prompt.
func NewChatService(generator TextGenerator, historyWindow int) *ChatService {
	return &ChatService{generator: generator, historyWindow: historyWindow}
}

// Answer builds the grounded prompt for one question and returns the model's
// response verbatim, or the fixed fallback string on any failure.
func (s *ChatService) Answer(ctx context.Context, question string, doc *models.DocumentContext, history []models.ConversationTurn) string {
	prompt := s.buildPrompt(question, doc, history)

	answer, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		slog.Error("Chat answer generation failed; returning fallback answer.", "filename", doc.Filename, "error", err)
		metrics.ChatAnswers.WithLabelValues("fallback").Inc()
		return ChatFallbackAnswer
	}
	metrics.ChatAnswers.WithLabelValues(models.StatusSuccess).Inc()
	return answer
}

// buildPrompt composes, in fixed order: the role preamble with the fenced
// canonical text, the last turns of history as User/Assistant lines, and
// the current question. Older turns beyond the window are silently dropped.
func (s *ChatService) buildPrompt(question string, doc *models.DocumentContext, history []models.ConversationTurn) string {
	var b strings.Builder
	b.WriteString(gemini.ChatContextHeader(doc.Filename, doc.CanonicalText))

	if len(history) > s.historyWindow {
		history = history[len(history)-s.historyWindow:]
	}
	for _, turn := range history {
		role := "User"
		if turn.Role == models.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
	}

	b.WriteString(gemini.ChatContextFooter(question))
	return b.String()
}
