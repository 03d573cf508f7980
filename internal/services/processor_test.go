package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payprhq/paypr-backend/internal/models"
	"github.com/payprhq/paypr-backend/internal/testutil"
)

// stubEngine implements ExtractionEngine directly, bypassing the remote
// collaborators, so pipeline tests control each branch's output.
type stubEngine struct {
	name  models.EngineName
	text  string
	err   error
	calls int
}

func (s *stubEngine) Name() models.EngineName { return s.name }

func (s *stubEngine) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func textRichPDF() []byte {
	pdf := testutil.NewPDF()
	for i := 0; i < 3; i++ {
		pdf.AddPage(strings.Repeat("a", 500), 0)
	}
	return pdf.Bytes()
}

func imageHeavyPDF() []byte {
	pdf := testutil.NewPDF()
	for i := 0; i < 3; i++ {
		pdf.AddPage("tiny text", 2)
	}
	return pdf.Bytes()
}

func TestProcess_TextRichTakesDualExtraction(t *testing.T) {
	gen := &stubGenerator{response: "# Merged"}
	structural := &stubEngine{name: models.EngineStructural, text: "# Structural body"}
	ocr := &stubEngine{name: models.EngineOCR, text: "# OCR body"}
	vision := &stubEngine{name: models.EngineVision, err: errors.New("wrong branch")}

	p := NewProcessor(testClassifier(), structural, ocr, NewConsolidator(gen, vision, testModel), gen)
	result := p.Process(context.Background(), textRichPDF(), "rich.pdf")

	require.Equal(t, models.StatusSuccess, result.Status)
	require.NotNil(t, result.Document)
	assert.Equal(t, models.MethodDualExtract, result.Document.ProcessingMethod)
	assert.Equal(t, "# Merged", result.Document.CanonicalText)
	assert.Equal(t, ConsolidationReconciled, result.Document.Metadata["consolidation"])
	assert.NotEmpty(t, result.Understanding)
	assert.Equal(t, 1, structural.calls)
	assert.Equal(t, 1, ocr.calls)
	assert.Zero(t, vision.calls)

	// First the reconciliation prompt, then the understanding prompt.
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "# Structural body")
	assert.Contains(t, gen.prompts[0], "# OCR body")
	assert.Contains(t, gen.prompts[1], "# Merged")
}

func TestProcess_ImageHeavyTakesDirectSummary(t *testing.T) {
	gen := &stubGenerator{response: "unused"}
	structural := &stubEngine{name: models.EngineStructural, text: "unused"}
	ocr := &stubEngine{name: models.EngineOCR, text: "unused"}
	vision := &stubEngine{name: models.EngineVision, text: "# Document Summary: scan.pdf"}

	p := NewProcessor(testClassifier(), structural, ocr, NewConsolidator(gen, vision, testModel), gen)
	result := p.Process(context.Background(), imageHeavyPDF(), "scan.pdf")

	require.Equal(t, models.StatusSuccess, result.Status)
	require.NotNil(t, result.Document)
	assert.Equal(t, models.MethodDirectSummary, result.Document.ProcessingMethod)
	assert.Equal(t, "# Document Summary: scan.pdf", result.Document.CanonicalText)
	assert.Equal(t, "Document processed and summarized using Gemini image analysis.", result.Understanding)
	assert.Zero(t, structural.calls)
	assert.Zero(t, ocr.calls)
	assert.Equal(t, 1, vision.calls)
	assert.Empty(t, gen.prompts)
}

func TestProcess_DirectSummaryFailureFailsDocument(t *testing.T) {
	gen := &stubGenerator{response: "unused"}
	structural := &stubEngine{name: models.EngineStructural}
	ocr := &stubEngine{name: models.EngineOCR}
	vision := &stubEngine{name: models.EngineVision, err: errors.New("file processing timed out")}

	p := NewProcessor(testClassifier(), structural, ocr, NewConsolidator(gen, vision, testModel), gen)
	result := p.Process(context.Background(), imageHeavyPDF(), "scan.pdf")

	require.Equal(t, models.StatusFailed, result.Status)
	assert.Nil(t, result.Document)
	assert.Equal(t, "scan.pdf", result.Filename)
	assert.Contains(t, result.ErrorMessage, "file processing timed out")
}

func TestProcess_BothEnginesEmptyFailsDocument(t *testing.T) {
	gen := &stubGenerator{response: "unused"}
	structural := &stubEngine{name: models.EngineStructural, text: ""}
	ocr := &stubEngine{name: models.EngineOCR, text: ""}
	vision := &stubEngine{name: models.EngineVision}

	p := NewProcessor(testClassifier(), structural, ocr, NewConsolidator(gen, vision, testModel), gen)
	result := p.Process(context.Background(), textRichPDF(), "blank.pdf")

	require.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "both extraction engines")
}

func TestProcess_ReconciliationFailureDegradesToConcatenation(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	structural := &stubEngine{name: models.EngineStructural, text: "structural text"}
	ocr := &stubEngine{name: models.EngineOCR, text: "ocr text"}
	vision := &stubEngine{name: models.EngineVision}

	p := NewProcessor(testClassifier(), structural, ocr, NewConsolidator(gen, vision, testModel), gen)
	result := p.Process(context.Background(), textRichPDF(), "doc.pdf")

	require.Equal(t, models.StatusSuccess, result.Status)
	require.NotNil(t, result.Document)
	assert.Equal(t, ConsolidationConcatenated, result.Document.Metadata["consolidation"])
	assert.Contains(t, result.Document.CanonicalText, "structural text")
	assert.Contains(t, result.Document.CanonicalText, "ocr text")
	// The understanding call fails over to the fixed acknowledgement too.
	assert.Contains(t, result.Understanding, "I have processed the document 'doc.pdf'")
}
