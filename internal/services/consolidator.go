package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payprhq/paypr-backend/internal/gemini"
	"github.com/payprhq/paypr-backend/internal/models"
)

// Consolidation modes recorded in document metadata.
const (
	ConsolidationReconciled   = "ai_reconciled"
	ConsolidationConcatenated = "labeled_concatenation"
	ConsolidationVisionDirect = "vision_summary"
)

// Consolidator turns a branch decision plus its extraction results into the
// single canonical document body.
type Consolidator struct {
	generator TextGenerator
	vision    ExtractionEngine
	model     string
}

// NewConsolidator creates a consolidator using the given reconciliation
// model and direct-summary engine. The model name is recorded in document
// metadata.
func NewConsolidator(generator TextGenerator, vision ExtractionEngine, model string) *Consolidator {
	return &Consolidator{generator: generator, vision: vision, model: model}
}

// Consolidate produces the DocumentContext for one pipeline run.
//
// Image-heavy documents get a direct vision summary; its failure is fatal
// because no fallback text exists. Text-heavy documents get an AI
// reconciliation of the extraction outputs; its failure degrades to a
// deterministic labeled concatenation so unique content is never dropped.
// The only dual-branch error is both outputs being empty.
func (c *Consolidator) Consolidate(ctx context.Context, classification models.ClassificationResult, data []byte, outputs []models.ExtractionOutput, filename string) (*models.DocumentContext, error) {
	if classification.IsImageHeavy {
		summary, err := c.vision.Extract(ctx, data, filename)
		if err != nil {
			return nil, err
		}
		metadata := c.classificationMetadata(classification)
		metadata["consolidation"] = ConsolidationVisionDirect
		return models.NewDocumentContext(filename, models.MethodDirectSummary, summary, metadata), nil
	}

	structural := outputByEngine(outputs, models.EngineStructural)
	ocr := outputByEngine(outputs, models.EngineOCR)
	if structural.CharCount == 0 && ocr.CharCount == 0 {
		return nil, fmt.Errorf("both extraction engines returned empty output for %s", filename)
	}

	text, mode := c.reconcile(ctx, filename, structural, ocr)

	metadata := c.classificationMetadata(classification)
	metadata["structuralChars"] = structural.CharCount
	metadata["ocrChars"] = ocr.CharCount
	metadata["consolidation"] = mode
	return models.NewDocumentContext(filename, models.MethodDualExtract, text, metadata), nil
}

// reconcile merges the two extractions with the model, falling back to a
// labeled concatenation on any failure or refusal.
func (c *Consolidator) reconcile(ctx context.Context, filename string, structural, ocr models.ExtractionOutput) (string, string) {
	prompt := gemini.ConsolidationPrompt(filename, structural.Text, ocr.Text)
	merged, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		slog.Error("Reconciliation failed; falling back to labeled concatenation.", "filename", filename, "error", err)
		return labeledConcatenation(filename, structural, ocr), ConsolidationConcatenated
	}
	if gemini.IsRefusal(merged) {
		slog.Warn("Reconciliation response reads as a refusal; falling back to labeled concatenation.", "filename", filename)
		return labeledConcatenation(filename, structural, ocr), ConsolidationConcatenated
	}
	return merged, ConsolidationReconciled
}

// labeledConcatenation deterministically combines both raw outputs under
// fixed subheadings.
func labeledConcatenation(filename string, structural, ocr models.ExtractionOutput) string {
	return fmt.Sprintf("# Document: %s\n\n## Structural Extraction\n\n%s\n\n## OCR Extraction\n\n%s",
		filename, structural.Text, ocr.Text)
}

func outputByEngine(outputs []models.ExtractionOutput, name models.EngineName) models.ExtractionOutput {
	for _, output := range outputs {
		if output.Engine == name {
			return output
		}
	}
	return models.ExtractionOutput{Engine: name}
}

func (c *Consolidator) classificationMetadata(classification models.ClassificationResult) map[string]any {
	return map[string]any{
		"pagesSampled":     classification.PagesSampled,
		"avgTextPerPage":   classification.AvgTextPerPage,
		"avgImagesPerPage": classification.AvgImagesPerPage,
		"model":            c.model,
	}
}
