package store

import (
	"context"
	"sort"
	"sync"

	"github.com/payprhq/paypr-backend/internal/models"
)

// MemoryStore is an in-process store used when no Firestore project is
// configured. Data does not survive a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*models.DocumentRecord
	sessions  map[string]*models.ChatSession
	messages  map[string][]*models.ChatMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]*models.DocumentRecord),
		sessions:  make(map[string]*models.ChatSession),
		messages:  make(map[string][]*models.ChatMessage),
	}
}

func (s *MemoryStore) SaveDocument(_ context.Context, doc *models.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	s.documents[doc.ID] = &stored
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (*models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *doc
	return &result, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context) ([]*models.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*models.DocumentRecord, 0, len(s.documents))
	for _, doc := range s.documents {
		result := *doc
		docs = append(docs, &result)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, id)
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *session
	return &result, nil
}

func (s *MemoryStore) UpdateSessionTitle(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Title = title
	return nil
}

func (s *MemoryStore) ListSessionsByDocument(_ context.Context, documentID string) ([]*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*models.ChatSession
	for _, session := range s.sessions {
		if session.DocumentID != documentID {
			continue
		}
		result := *session
		sessions = append(sessions, &result)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], &stored)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[sessionID]
	messages := make([]*models.ChatMessage, 0, len(stored))
	for _, msg := range stored {
		result := *msg
		messages = append(messages, &result)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}
