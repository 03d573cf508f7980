package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payprhq/paypr-backend/internal/gemini"
	"github.com/payprhq/paypr-backend/internal/metrics"
	"github.com/payprhq/paypr-backend/internal/models"
)

// ExtractionEngine turns raw document bytes into a normalized text/markup
// string. The structural and OCR variants never return a non-nil error:
// a failed engine logs, counts the failure, and degrades to an empty string,
// because the pipeline tolerates one engine failing silently. The vision
// variant returns real errors; with no fallback text, its failure fails
// the whole document.
type ExtractionEngine interface {
	Name() models.EngineName
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// StructuralConverter is the remote collaborator contract for layout-aware
// markdown conversion.
type StructuralConverter interface {
	Convert(ctx context.Context, data []byte, filename string) (string, error)
}

// OCRProcessor is the remote collaborator contract for vision-based text
// recognition.
type OCRProcessor interface {
	Process(ctx context.Context, data []byte, filename string) (string, error)
}

// TextGenerator is the generative-model contract for plain text prompts.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// FileSummarizer is the generative-model contract for prompts grounded on an
// uploaded file, including the asynchronous file-processing wait.
type FileSummarizer interface {
	SummarizeFile(ctx context.Context, data []byte, filename, prompt string) (string, error)
}

type structuralEngine struct {
	converter StructuralConverter
}

// NewStructuralEngine wraps a layout converter as an extraction engine.
func NewStructuralEngine(converter StructuralConverter) ExtractionEngine {
	return &structuralEngine{converter: converter}
}

func (e *structuralEngine) Name() models.EngineName { return models.EngineStructural }

func (e *structuralEngine) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	markdown, err := e.converter.Convert(ctx, data, filename)
	if err != nil {
		slog.Error("Structural conversion failed; continuing with empty output.", "filename", filename, "error", err)
		metrics.EngineFailures.WithLabelValues(string(models.EngineStructural)).Inc()
		return "", nil
	}
	return markdown, nil
}

type ocrEngine struct {
	processor OCRProcessor
}

// NewOCREngine wraps an OCR processor as an extraction engine.
func NewOCREngine(processor OCRProcessor) ExtractionEngine {
	return &ocrEngine{processor: processor}
}

func (e *ocrEngine) Name() models.EngineName { return models.EngineOCR }

func (e *ocrEngine) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	text, err := e.processor.Process(ctx, data, filename)
	if err != nil {
		slog.Error("OCR extraction failed; continuing with empty output.", "filename", filename, "error", err)
		metrics.EngineFailures.WithLabelValues(string(models.EngineOCR)).Inc()
		return "", nil
	}
	return text, nil
}

type visionEngine struct {
	summarizer FileSummarizer
}

// NewVisionEngine wraps a file summarizer as the direct-summary engine.
func NewVisionEngine(summarizer FileSummarizer) ExtractionEngine {
	return &visionEngine{summarizer: summarizer}
}

func (e *visionEngine) Name() models.EngineName { return models.EngineVision }

func (e *visionEngine) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	summary, err := e.summarizer.SummarizeFile(ctx, data, filename, gemini.SummaryPrompt(filename))
	if err != nil {
		metrics.EngineFailures.WithLabelValues(string(models.EngineVision)).Inc()
		return "", fmt.Errorf("vision summary for %s: %w", filename, err)
	}
	return summary, nil
}
