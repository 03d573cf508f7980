package services

import (
	"bytes"
	"log/slog"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/payprhq/paypr-backend/internal/config"
	"github.com/payprhq/paypr-backend/internal/models"
)

// Classifier decides whether a PDF takes the direct-summary branch (scanned,
// image-heavy documents) or the dual-extraction branch (text-bearing ones)
// by sampling page-level text and image statistics.
type Classifier struct {
	samplePages  int
	textFloor    float64
	imageDensity float64
	textCeiling  float64
}

// NewClassifier creates a classifier with the configured thresholds.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		samplePages:  cfg.ClassifierSamplePages,
		textFloor:    cfg.ClassifierTextFloor,
		imageDensity: cfg.ClassifierImageDensity,
		textCeiling:  cfg.ClassifierTextCeiling,
	}
}

// Classify inspects raw PDF bytes and never fails outward: any parse error
// or parser panic yields the permissive text-heavy default, since sending a
// scanned document down the dual branch only degrades quality while the
// reverse skips the cheaper, more accurate extraction entirely.
func (c *Classifier) Classify(data []byte) (result models.ClassificationResult) {
	// The underlying parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("PDF classification panicked; defaulting to text-heavy.", "panic", r)
			result = models.ClassificationResult{}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("Failed to open PDF for classification; defaulting to text-heavy.", "error", err)
		return models.ClassificationResult{}
	}

	sample := min(c.samplePages, reader.NumPage())
	if sample < 1 {
		// Zero-page document: averages stay 0 and the safer dual branch wins.
		return models.ClassificationResult{}
	}

	var totalText, totalImages int
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= sample; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		totalText += meaningfulChars(pageText(page, fonts))
		totalImages += countPageImages(page)
	}

	avgText := float64(totalText) / float64(sample)
	avgImages := float64(totalImages) / float64(sample)

	result = models.ClassificationResult{
		IsImageHeavy:     avgText < c.textFloor || (avgImages >= c.imageDensity && avgText < c.textCeiling),
		AvgTextPerPage:   avgText,
		AvgImagesPerPage: avgImages,
		PagesSampled:     sample,
	}
	slog.Info("PDF classified.",
		"avgTextPerPage", avgText,
		"avgImagesPerPage", avgImages,
		"pagesSampled", sample,
		"isImageHeavy", result.IsImageHeavy,
	)
	return result
}

// pageText extracts the text layer of one page, reusing the shared font
// cache across pages.
func pageText(page pdf.Page, fonts map[string]*pdf.Font) string {
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := page.Font(name)
			fonts[name] = &font
		}
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return text
}

// meaningfulChars counts non-whitespace runes.
func meaningfulChars(s string) int {
	var n int
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// countPageImages counts raster image XObjects referenced by the page's
// resource dictionary.
func countPageImages(page pdf.Page) int {
	xobjects := page.V.Key("Resources").Key("XObject")
	if xobjects.IsNull() {
		return 0
	}
	var count int
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
