package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/payprhq/paypr-backend/internal/config"
	"github.com/payprhq/paypr-backend/internal/models"
	"github.com/payprhq/paypr-backend/internal/store"
)

// PDFProcessor runs the full classification and extraction pipeline on a PDF.
type PDFProcessor interface {
	Process(ctx context.Context, data []byte, filename string) *models.ProcessResult
}

// PassthroughProcessor extracts text from the simple non-PDF formats.
type PassthroughProcessor interface {
	Process(data []byte, filename, mimeType string) *models.ProcessResult
}

// Answerer produces a grounded answer for one chat question.
type Answerer interface {
	Answer(ctx context.Context, question string, doc *models.DocumentContext, history []models.ConversationTurn) string
}

// Archiver stores the original upload bytes and reports the object path.
// A nil Archiver disables archival, which is the demo-mode configuration.
type Archiver interface {
	Save(ctx context.Context, documentID, filename string, data []byte) (string, error)
	Delete(ctx context.Context, documentID, filename string) error
}

// Server wires the HTTP API to the processing pipeline and the stores.
type Server struct {
	cfg     *config.Config
	store   store.Store
	archive Archiver
	pdf     PDFProcessor
	basic   PassthroughProcessor
	chat    Answerer
}

// NewServer creates the HTTP layer. archive may be nil.
func NewServer(cfg *config.Config, st store.Store, archive Archiver, pdf PDFProcessor, basic PassthroughProcessor, chat Answerer) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		archive: archive,
		pdf:     pdf,
		basic:   basic,
		chat:    chat,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/documents/upload", s.handleUpload)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)

	mux.HandleFunc("POST /api/chat/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/chat/documents/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/chat/sessions/{id}/messages", s.handleListMessages)
	mux.HandleFunc("POST /api/chat/sessions/{id}/messages", s.handlePostMessage)

	return requestLog(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "running", Service: "paypr-backend"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: "paypr-backend"})
}

// requestLog wraps the mux with per-request structured logging.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("Request handled.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
