package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/payprhq/paypr-backend/internal/gemini"
	"github.com/payprhq/paypr-backend/internal/metrics"
	"github.com/payprhq/paypr-backend/internal/models"
)

// Processor runs the full extraction pipeline for one PDF upload:
// classification, branch selection, extraction, and consolidation.
// One instance serves all requests; it holds no per-document state.
type Processor struct {
	classifier   *Classifier
	structural   ExtractionEngine
	ocr          ExtractionEngine
	consolidator *Consolidator
	generator    TextGenerator
}

// NewProcessor wires the pipeline from its collaborators.
func NewProcessor(classifier *Classifier, structural, ocr ExtractionEngine, consolidator *Consolidator, generator TextGenerator) *Processor {
	return &Processor{
		classifier:   classifier,
		structural:   structural,
		ocr:          ocr,
		consolidator: consolidator,
		generator:    generator,
	}
}

// Process runs the pipeline to completion for already-validated bytes and
// returns a result record. Callers branch on its Status: a failed record
// means the run ended with no usable canonical text. Errors never cross
// this boundary as panics.
func (p *Processor) Process(ctx context.Context, data []byte, filename string) *models.ProcessResult {
	start := time.Now()
	logCtx := slog.With("filename", filename, "sizeBytes", len(data))
	logCtx.Info("Starting document processing.")

	data, pageCount := p.preflight(data, logCtx)

	classification := p.classifier.Classify(data)
	logCtx = logCtx.With("isImageHeavy", classification.IsImageHeavy)

	var outputs []models.ExtractionOutput
	if !classification.IsImageHeavy {
		outputs = p.runEngines(ctx, data, filename, logCtx)
	}

	doc, err := p.consolidator.Consolidate(ctx, classification, data, outputs, filename)
	if err != nil {
		logCtx.Error("Consolidation failed.", "error", err)
		metrics.DocumentsProcessed.WithLabelValues(methodLabel(classification), models.StatusFailed).Inc()
		return models.FailedResult(filename, err)
	}
	if pageCount > 0 {
		doc.Metadata["pageCount"] = pageCount
	}

	understanding := p.understand(ctx, doc, logCtx)

	method := string(doc.ProcessingMethod)
	metrics.DocumentsProcessed.WithLabelValues(method, models.StatusSuccess).Inc()
	metrics.ProcessingDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	logCtx.Info("Document processing complete.", "method", method, "charCount", doc.CharCount)

	return &models.ProcessResult{
		Status:        models.StatusSuccess,
		Filename:      filename,
		Document:      doc,
		Understanding: understanding,
	}
}

// preflight optimizes the PDF through a scoped temp directory and reads its
// page count for diagnostics. Both are best-effort: a document that fails
// relaxed validation continues with its original bytes, since the engines
// and the classifier absorb malformed input themselves.
func (p *Processor) preflight(data []byte, logCtx *slog.Logger) ([]byte, int) {
	tempDir, err := os.MkdirTemp("", "paypr-upload-*")
	if err != nil {
		logCtx.Warn("Failed to create temp directory; skipping PDF optimization.", "error", err)
		return data, 0
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source.pdf")
	optimizedPath := filepath.Join(tempDir, "optimized.pdf")
	if err := os.WriteFile(sourcePath, data, 0o600); err != nil {
		logCtx.Warn("Failed to buffer upload on disk; skipping PDF optimization.", "error", err)
		return data, 0
	}

	if err := optimizePDF(sourcePath, optimizedPath); err != nil {
		logCtx.Warn("PDF optimization failed; continuing with original bytes.", "error", err)
		return data, 0
	}

	pageCount, err := api.PageCountFile(optimizedPath)
	if err != nil {
		logCtx.Warn("Failed to read PDF page count.", "error", err)
		pageCount = 0
	}

	optimized, err := os.ReadFile(optimizedPath)
	if err != nil {
		logCtx.Warn("Failed to read optimized PDF; continuing with original bytes.", "error", err)
		return data, pageCount
	}
	logCtx.Info("PDF optimized.", "pageCount", pageCount, "optimizedBytes", len(optimized))
	return optimized, pageCount
}

func optimizePDF(inPath, outPath string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.OptimizeFile(inPath, outPath, cfg)
}

// runEngines runs both extraction engines concurrently. Each absorbs its own
// failures, so the group itself never errors; consolidation waits for both.
func (p *Processor) runEngines(ctx context.Context, data []byte, filename string, logCtx *slog.Logger) []models.ExtractionOutput {
	var structuralText, ocrText string

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		structuralText, _ = p.structural.Extract(gctx, data, filename)
		return nil
	})
	eg.Go(func() error {
		ocrText, _ = p.ocr.Extract(gctx, data, filename)
		return nil
	})
	_ = eg.Wait()

	logCtx.Info("Extraction engines finished.", "structuralChars", len(structuralText), "ocrChars", len(ocrText))
	return []models.ExtractionOutput{
		models.NewExtractionOutput(models.EngineStructural, structuralText),
		models.NewExtractionOutput(models.EngineOCR, ocrText),
	}
}

// understand asks the model to confirm it is ready to answer questions over
// the consolidated document. Failure degrades to a fixed acknowledgement.
func (p *Processor) understand(ctx context.Context, doc *models.DocumentContext, logCtx *slog.Logger) string {
	if doc.ProcessingMethod == models.MethodDirectSummary {
		return "Document processed and summarized using Gemini image analysis."
	}

	answer, err := p.generator.GenerateText(ctx, gemini.UnderstandingPrompt(doc.Filename, doc.CanonicalText))
	if err != nil {
		logCtx.Warn("Understanding confirmation failed; using fixed acknowledgement.", "error", err)
		return fmt.Sprintf("I have processed the document '%s' and I'm ready to assist you with questions about its content.", doc.Filename)
	}
	return answer
}

func methodLabel(classification models.ClassificationResult) string {
	if classification.IsImageHeavy {
		return string(models.MethodDirectSummary)
	}
	return string(models.MethodDualExtract)
}
