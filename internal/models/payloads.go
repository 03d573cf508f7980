package models

import "time"

// These structs define the JSON payloads for the HTTP API.

// UploadResponse is returned by the document upload endpoint.
type UploadResponse struct {
	ID               string           `json:"id"`
	Filename         string           `json:"filename"`
	Size             int64            `json:"size"`
	MimeType         string           `json:"mimeType"`
	Status           string           `json:"status"`
	ProcessingMethod ProcessingMethod `json:"processingMethod,omitempty"`
	WordCount        int              `json:"wordCount"`
	CharCount        int              `json:"charCount"`
	Message          string           `json:"message,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// DocumentSummary is the list-view projection of a stored document.
type DocumentSummary struct {
	ID               string           `json:"id"`
	Filename         string           `json:"filename"`
	Size             int64            `json:"size"`
	MimeType         string           `json:"mimeType"`
	Status           string           `json:"status"`
	ProcessingMethod ProcessingMethod `json:"processingMethod,omitempty"`
	WordCount        int              `json:"wordCount"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// DocumentListResponse is returned by the document list endpoint.
type DocumentListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int               `json:"total"`
}

// CreateSessionRequest opens a new chat session over a document.
type CreateSessionRequest struct {
	DocumentID string `json:"documentId"`
}

// SessionResponse describes one chat session.
type SessionResponse struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SessionListResponse is returned by the per-document session list endpoint.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// PostMessageRequest carries one user question.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse describes one persisted chat message.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageListResponse is returned by the session history endpoint.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
}

// AnswerResponse is returned when a question has been answered.
type AnswerResponse struct {
	SessionID string    `json:"sessionId"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
