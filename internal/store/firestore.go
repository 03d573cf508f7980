package store

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/payprhq/paypr-backend/internal/models"
)

// FirestoreStore persists documents and chat data in Cloud Firestore.
type FirestoreStore struct {
	client              *firestore.Client
	documentsCollection string
	sessionsCollection  string
	messagesCollection  string
}

// NewFirestoreStore creates a store backed by the given Firestore client.
func NewFirestoreStore(client *firestore.Client, documents, sessions, messages string) *FirestoreStore {
	return &FirestoreStore{
		client:              client,
		documentsCollection: documents,
		sessionsCollection:  sessions,
		messagesCollection:  messages,
	}
}

func (s *FirestoreStore) SaveDocument(ctx context.Context, doc *models.DocumentRecord) error {
	if _, err := s.client.Collection(s.documentsCollection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *FirestoreStore) GetDocument(ctx context.Context, id string) (*models.DocumentRecord, error) {
	snap, err := s.client.Collection(s.documentsCollection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}

	var doc models.DocumentRecord
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *FirestoreStore) ListDocuments(ctx context.Context) ([]*models.DocumentRecord, error) {
	it := s.client.Collection(s.documentsCollection).Documents(ctx)
	defer it.Stop()

	var docs []*models.DocumentRecord
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}

		var doc models.DocumentRecord
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, &doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (s *FirestoreStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.documentsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if _, err := s.client.Collection(s.sessionsCollection).Doc(session.ID).Set(ctx, session); err != nil {
		return fmt.Errorf("failed to create session %s: %w", session.ID, err)
	}
	return nil
}

func (s *FirestoreStore) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	snap, err := s.client.Collection(s.sessionsCollection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var session models.ChatSession
	if err := snap.DataTo(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *FirestoreStore) UpdateSessionTitle(ctx context.Context, id, title string) error {
	updates := []firestore.Update{
		{Path: "title", Value: title},
	}
	if _, err := s.client.Collection(s.sessionsCollection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update session %s title: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) ListSessionsByDocument(ctx context.Context, documentID string) ([]*models.ChatSession, error) {
	snaps, err := s.client.Collection(s.sessionsCollection).
		Where("documentId", "==", documentID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for document %s: %w", documentID, err)
	}

	sessions := make([]*models.ChatSession, 0, len(snaps))
	for _, snap := range snaps {
		var session models.ChatSession
		if err := snap.DataTo(&session); err != nil {
			return nil, fmt.Errorf("failed to decode session %s: %w", snap.Ref.ID, err)
		}
		sessions = append(sessions, &session)
	}

	// Sorted here rather than in the query to avoid a composite index requirement.
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (s *FirestoreStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	if _, err := s.client.Collection(s.messagesCollection).Doc(msg.ID).Set(ctx, msg); err != nil {
		return fmt.Errorf("failed to append message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *FirestoreStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	snaps, err := s.client.Collection(s.messagesCollection).
		Where("sessionId", "==", sessionID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for session %s: %w", sessionID, err)
	}

	messages := make([]*models.ChatMessage, 0, len(snaps))
	for _, snap := range snaps {
		var msg models.ChatMessage
		if err := snap.DataTo(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", snap.Ref.ID, err)
		}
		messages = append(messages, &msg)
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}
