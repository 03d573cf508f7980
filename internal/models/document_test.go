package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocumentContext_DerivesCounts(t *testing.T) {
	doc := NewDocumentContext("report.pdf", MethodDualExtract, "alpha beta  gamma", nil)

	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, MethodDualExtract, doc.ProcessingMethod)
	assert.Equal(t, 3, doc.WordCount)
	assert.Equal(t, len("alpha beta  gamma"), doc.CharCount)
	assert.Nil(t, doc.Metadata)
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", " \n\t ", 0},
		{"simple", "one two three", 3},
		{"mixed whitespace", "a\tb\nc  d", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.in))
		})
	}
}

func TestNewExtractionOutput(t *testing.T) {
	output := NewExtractionOutput(EngineOCR, "recognized text")
	assert.Equal(t, EngineOCR, output.Engine)
	assert.Equal(t, len("recognized text"), output.CharCount)

	empty := NewExtractionOutput(EngineStructural, "")
	assert.Zero(t, empty.CharCount)
}

func TestFailedResult(t *testing.T) {
	result := FailedResult("broken.pdf", errors.New("boom"))

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "broken.pdf", result.Filename)
	assert.Equal(t, "boom", result.ErrorMessage)
	assert.Nil(t, result.Document)
}

func TestDocumentRecord_Context(t *testing.T) {
	record := &DocumentRecord{
		ID:               "doc-1",
		Filename:         "a.pdf",
		ProcessingMethod: MethodDirectSummary,
		CanonicalText:    "summary text",
		WordCount:        2,
		CharCount:        12,
		Metadata:         map[string]any{"pageCount": 3},
	}

	doc := record.Context()
	assert.Equal(t, "a.pdf", doc.Filename)
	assert.Equal(t, MethodDirectSummary, doc.ProcessingMethod)
	assert.Equal(t, "summary text", doc.CanonicalText)
	assert.Equal(t, 2, doc.WordCount)
	assert.Equal(t, map[string]any{"pageCount": 3}, doc.Metadata)
}
