package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/payprhq/paypr-backend/internal/models"
	"github.com/payprhq/paypr-backend/internal/store"
)

var allowedMIMETypes = map[string]bool{
	"application/pdf":                true,
	"application/msword":             true,
	"application/vnd.ms-excel":       true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"text/plain":    true,
	"text/markdown": true,
	"text/csv":      true,
	"image/jpeg":    true,
	"image/png":     true,
}

var extensionMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// resolveMIMEType prefers the client-declared content type and falls back to
// the file extension when the declaration is missing or generic.
func resolveMIMEType(declared, filename string) string {
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return extensionMIMETypes[strings.ToLower(filepath.Ext(filename))]
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File size exceeds %dMB limit", s.cfg.MaxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "A multipart 'file' field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File size exceeds %dMB limit", s.cfg.MaxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, "Uploaded file must have a filename")
		return
	}

	mimeType := resolveMIMEType(header.Header.Get("Content-Type"), filename)
	if !allowedMIMETypes[mimeType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", mimeType))
		return
	}

	logCtx := slog.With("filename", filename, "mimeType", mimeType, "sizeBytes", len(data))
	logCtx.Info("Upload received.")

	var result *models.ProcessResult
	if mimeType == "application/pdf" {
		result = s.pdf.Process(r.Context(), data, filename)
	} else {
		result = s.basic.Process(data, filename, mimeType)
	}

	if result.Status != models.StatusSuccess {
		logCtx.Error("Processing failed.", "error", result.ErrorMessage)
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Error processing document: %s", result.ErrorMessage))
		return
	}

	documentID := uuid.NewString()
	record := &models.DocumentRecord{
		ID:            documentID,
		Filename:      result.Filename,
		Size:          int64(len(data)),
		MimeType:      mimeType,
		Status:        result.Status,
		Understanding: result.Understanding,
		CreatedAt:     time.Now().UTC(),
	}
	if result.Document != nil {
		record.ProcessingMethod = result.Document.ProcessingMethod
		record.CanonicalText = result.Document.CanonicalText
		record.WordCount = result.Document.WordCount
		record.CharCount = result.Document.CharCount
		record.Metadata = result.Document.Metadata
	}

	// Archival is best-effort; a processed document is still usable without
	// its raw copy.
	if s.archive != nil {
		rawPath, err := s.archive.Save(r.Context(), documentID, filename, data)
		if err != nil {
			logCtx.Warn("Failed to archive raw upload.", "error", err)
		} else {
			record.RawPath = rawPath
		}
	}

	if err := s.store.SaveDocument(r.Context(), record); err != nil {
		logCtx.Error("Failed to save document record.", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save document")
		return
	}

	logCtx.Info("Document stored.", "documentId", documentID, "processingMethod", record.ProcessingMethod)
	writeJSON(w, http.StatusOK, models.UploadResponse{
		ID:               record.ID,
		Filename:         record.Filename,
		Size:             record.Size,
		MimeType:         record.MimeType,
		Status:           record.Status,
		ProcessingMethod: record.ProcessingMethod,
		WordCount:        record.WordCount,
		CharCount:        record.CharCount,
		Message:          record.Understanding,
		CreatedAt:        record.CreatedAt,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListDocuments(r.Context())
	if err != nil {
		slog.Error("Failed to list documents.", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	summaries := make([]models.DocumentSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, models.DocumentSummary{
			ID:               record.ID,
			Filename:         record.Filename,
			Size:             record.Size,
			MimeType:         record.MimeType,
			Status:           record.Status,
			ProcessingMethod: record.ProcessingMethod,
			WordCount:        record.WordCount,
			CreatedAt:        record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, models.DocumentListResponse{Documents: summaries, Total: len(summaries)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get document.", "documentId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get document for deletion.", "documentId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	if s.archive != nil && record.RawPath != "" {
		if err := s.archive.Delete(r.Context(), record.ID, record.Filename); err != nil {
			slog.Warn("Failed to delete raw archive object.", "documentId", id, "error", err)
		}
	}

	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		slog.Error("Failed to delete document record.", "documentId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	slog.Info("Document deleted.", "documentId", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}
