package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/payprhq/paypr-backend/internal/config"
	"github.com/payprhq/paypr-backend/internal/docling"
	"github.com/payprhq/paypr-backend/internal/gcp"
	"github.com/payprhq/paypr-backend/internal/gemini"
	"github.com/payprhq/paypr-backend/internal/mistral"
	"github.com/payprhq/paypr-backend/internal/server"
	"github.com/payprhq/paypr-backend/internal/services"
	"github.com/payprhq/paypr-backend/internal/store"
)

func main() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("Fatal error during startup", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// --- 1. AI clients ---
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.FilePollInterval, cfg.FilePollTimeout)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer geminiClient.Close()

	mistralClient := mistral.NewClient(cfg.MistralAPIKey, cfg.MistralBaseURL, cfg.MistralOCRModel, cfg.OCRFallbackFloor)
	doclingClient := docling.NewClient(cfg.DoclingBaseURL)

	// --- 2. Processing pipeline ---
	classifier := services.NewClassifier(cfg)
	structural := services.NewStructuralEngine(doclingClient)
	ocr := services.NewOCREngine(mistralClient)
	vision := services.NewVisionEngine(geminiClient)
	consolidator := services.NewConsolidator(geminiClient, vision, cfg.GeminiModel)
	processor := services.NewProcessor(classifier, structural, ocr, consolidator, geminiClient)
	basic := services.NewBasicExtractor()
	chat := services.NewChatService(geminiClient, cfg.ChatHistoryWindow)

	// --- 3. Persistence ---
	var (
		st      store.Store
		archive server.Archiver
	)
	if cfg.GCPProjectID != "" {
		firestoreClient, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return fmt.Errorf("failed to create firestore client: %w", err)
		}
		defer firestoreClient.Close()
		st = store.NewFirestoreStore(firestoreClient, cfg.DocumentsCollection, cfg.SessionsCollection, cfg.MessagesCollection)

		if cfg.RawBucket != "" {
			rawArchive, err := gcp.NewRawArchive(ctx, cfg.RawBucket)
			if err != nil {
				return fmt.Errorf("failed to create raw archive: %w", err)
			}
			defer rawArchive.Close()
			archive = rawArchive
		}
		slog.Info("Using Firestore persistence.", "project", cfg.GCPProjectID)
	} else {
		st = store.NewMemoryStore()
		slog.Warn("GCP_PROJECT_ID not set, using in-memory persistence. Data will not survive a restart.")
	}

	// --- 4. HTTP server ---
	srv := server.NewServer(cfg, st, archive, processor, basic, chat)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening.", "port", cfg.Port, "model", cfg.GeminiModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
