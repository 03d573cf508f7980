package store

import (
	"context"
	"errors"

	"github.com/payprhq/paypr-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentStore persists processed document records.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *models.DocumentRecord) error
	GetDocument(ctx context.Context, id string) (*models.DocumentRecord, error)
	ListDocuments(ctx context.Context) ([]*models.DocumentRecord, error)
	DeleteDocument(ctx context.Context, id string) error
}

// ChatStore persists chat sessions and their messages.
type ChatStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	UpdateSessionTitle(ctx context.Context, id, title string) error
	ListSessionsByDocument(ctx context.Context, documentID string) ([]*models.ChatSession, error)
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	// ListMessages returns messages in chronological order. A positive limit
	// restricts the result to the most recent messages.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error)
}

// Store bundles document and chat persistence behind one value.
type Store interface {
	DocumentStore
	ChatStore
}
