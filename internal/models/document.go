package models

import (
	"strings"
	"time"
)

// ProcessingMethod identifies how a document's canonical text was produced.
type ProcessingMethod string

const (
	// MethodDirectSummary is the image-heavy path: one vision-model summary,
	// no extraction engines involved.
	MethodDirectSummary ProcessingMethod = "direct_summary"
	// MethodDualExtract is the text-heavy path: two extraction engines
	// reconciled into one canonical text.
	MethodDualExtract ProcessingMethod = "dual_extract_consolidated"
	// MethodPassthrough covers non-PDF uploads handled by the simple
	// extractors.
	MethodPassthrough ProcessingMethod = "passthrough"
)

// EngineName identifies an extraction engine variant.
type EngineName string

const (
	EngineStructural EngineName = "structural"
	EngineOCR        EngineName = "ocr"
	EngineVision     EngineName = "vision_direct"
)

// ClassificationResult carries the page statistics behind a branch decision.
// Derived per upload, consumed once, never persisted.
type ClassificationResult struct {
	IsImageHeavy     bool
	AvgTextPerPage   float64
	AvgImagesPerPage float64
	PagesSampled     int
}

// ExtractionOutput is one engine's result for one run. Never mutated after
// creation; discarded once consolidated.
type ExtractionOutput struct {
	Engine    EngineName
	Text      string
	CharCount int
}

// NewExtractionOutput builds an output with its derived character count.
func NewExtractionOutput(engine EngineName, text string) ExtractionOutput {
	return ExtractionOutput{Engine: engine, Text: text, CharCount: len(text)}
}

// DocumentContext is the canonical result of one pipeline run: the single
// reconciled text every later chat turn is answered from. Created once,
// handed to persistence, never mutated; a re-upload produces a new one.
type DocumentContext struct {
	Filename         string           `json:"filename" firestore:"filename"`
	ProcessingMethod ProcessingMethod `json:"processingMethod" firestore:"processingMethod"`
	CanonicalText    string           `json:"canonicalText" firestore:"canonicalText"`
	WordCount        int              `json:"wordCount" firestore:"wordCount"`
	CharCount        int              `json:"charCount" firestore:"charCount"`
	Metadata         map[string]any   `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}

// NewDocumentContext builds a context with derived word/char counts.
func NewDocumentContext(filename string, method ProcessingMethod, canonicalText string, metadata map[string]any) *DocumentContext {
	return &DocumentContext{
		Filename:         filename,
		ProcessingMethod: method,
		CanonicalText:    canonicalText,
		WordCount:        CountWords(canonicalText),
		CharCount:        len(canonicalText),
		Metadata:         metadata,
	}
}

// CountWords counts whitespace-separated tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// Process result statuses. Callers branch on Status, never on error types.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ProcessResult is the record returned for every pipeline invocation.
// A failed result means the pipeline ended with no usable canonical text;
// all lesser failures degrade internally and still yield success.
type ProcessResult struct {
	Status        string           `json:"status"`
	Filename      string           `json:"filename"`
	ErrorMessage  string           `json:"errorMessage,omitempty"`
	Document      *DocumentContext `json:"document,omitempty"`
	Understanding string           `json:"understanding,omitempty"`
}

// FailedResult builds a failure record for a document.
func FailedResult(filename string, err error) *ProcessResult {
	return &ProcessResult{
		Status:       StatusFailed,
		Filename:     filename,
		ErrorMessage: err.Error(),
	}
}

// Role labels one side of a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry of a chat session's history. The history
// sequence is append-only and owned by the chat collaborator.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DocumentRecord is the persisted form of a processed upload.
type DocumentRecord struct {
	ID               string           `json:"id" firestore:"id"`
	Filename         string           `json:"filename" firestore:"filename"`
	Size             int64            `json:"size" firestore:"size"`
	MimeType         string           `json:"mimeType" firestore:"mimeType"`
	Status           string           `json:"status" firestore:"status"`
	ProcessingMethod ProcessingMethod `json:"processingMethod" firestore:"processingMethod"`
	CanonicalText    string           `json:"canonicalText,omitempty" firestore:"canonicalText,omitempty"`
	WordCount        int              `json:"wordCount" firestore:"wordCount"`
	CharCount        int              `json:"charCount" firestore:"charCount"`
	Metadata         map[string]any   `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	Understanding    string           `json:"understanding,omitempty" firestore:"understanding,omitempty"`
	RawPath          string           `json:"rawPath,omitempty" firestore:"rawPath,omitempty"`
	ErrorDetails     string           `json:"errorDetails,omitempty" firestore:"errorDetails,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" firestore:"createdAt"`
}

// Context rebuilds the chat-facing DocumentContext from a stored record.
func (r *DocumentRecord) Context() *DocumentContext {
	return &DocumentContext{
		Filename:         r.Filename,
		ProcessingMethod: r.ProcessingMethod,
		CanonicalText:    r.CanonicalText,
		WordCount:        r.WordCount,
		CharCount:        r.CharCount,
		Metadata:         r.Metadata,
	}
}

// ChatSession groups the messages exchanged over one document.
type ChatSession struct {
	ID         string    `json:"id" firestore:"id"`
	DocumentID string    `json:"documentId" firestore:"documentId"`
	Title      string    `json:"title" firestore:"title"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// ChatMessage is one persisted turn of a session.
type ChatMessage struct {
	ID        string    `json:"id" firestore:"id"`
	SessionID string    `json:"sessionId" firestore:"sessionId"`
	Role      Role      `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
