package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payprhq/paypr-backend/internal/models"
)

func testDocContext() *models.DocumentContext {
	return models.NewDocumentContext("handbook.pdf", models.MethodDualExtract,
		"# Handbook\n\nVacation policy: 20 days.", nil)
}

func TestAnswer_ReturnsModelResponseVerbatim(t *testing.T) {
	gen := &stubGenerator{response: "You get 20 days."}
	svc := NewChatService(gen, 5)

	got := svc.Answer(context.Background(), "How many vacation days?", testDocContext(), nil)

	assert.Equal(t, "You get 20 days.", got)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, `"handbook.pdf"`)
	assert.Contains(t, prompt, "```markdown\n# Handbook\n\nVacation policy: 20 days.\n```")
	assert.Contains(t, prompt, "**Current User Question**: How many vacation days?")
	assert.Contains(t, prompt, `"This information is not available in the document"`)
}

func TestAnswer_UnrelatedQuestionPassesThrough(t *testing.T) {
	gen := &stubGenerator{response: "This information is not available in the document."}
	svc := NewChatService(gen, 5)

	got := svc.Answer(context.Background(), "What is the capital of France?", testDocContext(), nil)

	assert.Equal(t, "This information is not available in the document.", got)
}

func TestAnswer_FallbackOnFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exhausted")}
	svc := NewChatService(gen, 5)

	got := svc.Answer(context.Background(), "anything", testDocContext(), nil)

	assert.Equal(t, ChatFallbackAnswer, got)
}

func TestAnswer_HistoryWindowDropsOldestTurns(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	svc := NewChatService(gen, 5)

	var history []models.ConversationTurn
	for i := 1; i <= 10; i++ {
		role := models.RoleUser
		if i%2 == 0 {
			role = models.RoleAssistant
		}
		history = append(history, models.ConversationTurn{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	svc.Answer(context.Background(), "q", testDocContext(), history)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	// The trailing newline keeps turn-1 from matching inside turn-10.
	assert.NotContains(t, prompt, "turn-1\n")
	assert.NotContains(t, prompt, "turn-5\n")
	assert.Contains(t, prompt, "Assistant: turn-6\n")
	assert.Contains(t, prompt, "User: turn-7\n")
	assert.Contains(t, prompt, "Assistant: turn-10\n")
	assert.Less(t, strings.Index(prompt, "turn-6\n"), strings.Index(prompt, "turn-10"))
}

func TestAnswer_EmptyHistory(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	svc := NewChatService(gen, 5)

	svc.Answer(context.Background(), "q", testDocContext(), nil)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "**Previous Conversation**:\n\n**Current User Question**: q")
}
