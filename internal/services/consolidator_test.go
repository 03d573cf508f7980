package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payprhq/paypr-backend/internal/models"
)

const testModel = "gemini-2.5-flash"

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func dualOutputs(structural, ocr string) []models.ExtractionOutput {
	return []models.ExtractionOutput{
		models.NewExtractionOutput(models.EngineStructural, structural),
		models.NewExtractionOutput(models.EngineOCR, ocr),
	}
}

func TestConsolidate_DualReconciled(t *testing.T) {
	gen := &stubGenerator{response: "# Merged Document"}
	c := NewConsolidator(gen, NewVisionEngine(&stubSummarizer{}), testModel)

	classification := models.ClassificationResult{AvgTextPerPage: 400, PagesSampled: 3}
	doc, err := c.Consolidate(context.Background(), classification, []byte("pdf"), dualOutputs("# Structural body", "# OCR body"), "rich.pdf")
	require.NoError(t, err)

	assert.Equal(t, models.MethodDualExtract, doc.ProcessingMethod)
	assert.Equal(t, "# Merged Document", doc.CanonicalText)
	assert.Equal(t, ConsolidationReconciled, doc.Metadata["consolidation"])
	assert.Equal(t, len("# Structural body"), doc.Metadata["structuralChars"])
	assert.Equal(t, len("# OCR body"), doc.Metadata["ocrChars"])
	assert.Equal(t, 3, doc.Metadata["pagesSampled"])
	assert.Equal(t, testModel, doc.Metadata["model"])

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "# Structural body")
	assert.Contains(t, gen.prompts[0], "# OCR body")
	assert.Contains(t, gen.prompts[0], "rich.pdf")
}

func TestConsolidate_FallbackKeepsBothExtractions(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	c := NewConsolidator(gen, NewVisionEngine(&stubSummarizer{}), testModel)

	doc, err := c.Consolidate(context.Background(), models.ClassificationResult{}, []byte("pdf"),
		dualOutputs("unique structural line", "unique ocr line"), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, models.MethodDualExtract, doc.ProcessingMethod)
	assert.Equal(t, ConsolidationConcatenated, doc.Metadata["consolidation"])
	assert.Contains(t, doc.CanonicalText, "# Document: doc.pdf")
	assert.Contains(t, doc.CanonicalText, "## Structural Extraction")
	assert.Contains(t, doc.CanonicalText, "unique structural line")
	assert.Contains(t, doc.CanonicalText, "## OCR Extraction")
	assert.Contains(t, doc.CanonicalText, "unique ocr line")
}

func TestConsolidate_RefusalFallsBack(t *testing.T) {
	gen := &stubGenerator{response: "I cannot provide a consolidation of this document."}
	c := NewConsolidator(gen, NewVisionEngine(&stubSummarizer{}), testModel)

	doc, err := c.Consolidate(context.Background(), models.ClassificationResult{}, []byte("pdf"),
		dualOutputs("structural", "ocr"), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, ConsolidationConcatenated, doc.Metadata["consolidation"])
	assert.Contains(t, doc.CanonicalText, "structural")
	assert.Contains(t, doc.CanonicalText, "ocr")
}

func TestConsolidate_OneEmptyEngineStillReconciles(t *testing.T) {
	gen := &stubGenerator{response: "# Merged"}
	c := NewConsolidator(gen, NewVisionEngine(&stubSummarizer{}), testModel)

	doc, err := c.Consolidate(context.Background(), models.ClassificationResult{}, []byte("pdf"),
		dualOutputs("", "ocr only"), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, "# Merged", doc.CanonicalText)
	assert.Equal(t, 0, doc.Metadata["structuralChars"])
	assert.Equal(t, len("ocr only"), doc.Metadata["ocrChars"])
}

func TestConsolidate_BothEmptyFails(t *testing.T) {
	gen := &stubGenerator{response: "ignored"}
	c := NewConsolidator(gen, NewVisionEngine(&stubSummarizer{}), testModel)

	_, err := c.Consolidate(context.Background(), models.ClassificationResult{}, []byte("pdf"),
		dualOutputs("", ""), "empty.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both extraction engines")
	assert.Contains(t, err.Error(), "empty.pdf")
	assert.Empty(t, gen.prompts)
}

func TestConsolidate_ImageHeavyVisionSummary(t *testing.T) {
	summarizer := &stubSummarizer{summary: "# Document Summary: scan.pdf"}
	c := NewConsolidator(&stubGenerator{}, NewVisionEngine(summarizer), testModel)

	classification := models.ClassificationResult{IsImageHeavy: true, AvgImagesPerPage: 2, PagesSampled: 3}
	doc, err := c.Consolidate(context.Background(), classification, []byte("pdf"), nil, "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, models.MethodDirectSummary, doc.ProcessingMethod)
	assert.Equal(t, "# Document Summary: scan.pdf", doc.CanonicalText)
	assert.Equal(t, ConsolidationVisionDirect, doc.Metadata["consolidation"])
	assert.Equal(t, 3, doc.Metadata["pagesSampled"])
	assert.Equal(t, testModel, doc.Metadata["model"])
}

func TestConsolidate_ImageHeavyFailureIsFatal(t *testing.T) {
	c := NewConsolidator(&stubGenerator{}, NewVisionEngine(&stubSummarizer{err: errors.New("file processing failed")}), testModel)

	_, err := c.Consolidate(context.Background(), models.ClassificationResult{IsImageHeavy: true}, []byte("pdf"), nil, "scan.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.pdf")
}
