package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/payprhq/paypr-backend/internal/models"
)

// BasicExtractor handles non-PDF uploads with simple pass-through
// extraction. No AI calls are involved; the extracted text becomes the
// canonical text directly.
type BasicExtractor struct{}

// NewBasicExtractor creates a pass-through extractor.
func NewBasicExtractor() *BasicExtractor {
	return &BasicExtractor{}
}

// Process extracts text from a non-PDF upload and returns a result record.
func (e *BasicExtractor) Process(data []byte, filename, mimeType string) *models.ProcessResult {
	var (
		text     string
		metadata map[string]any
		err      error
	)

	switch {
	case mimeType == "text/plain", mimeType == "text/markdown":
		text, metadata, err = extractPlainText(data)
	case mimeType == "text/csv":
		text, metadata, err = extractCSV(data)
	case mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		text, metadata, err = extractDOCX(data)
	case mimeType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		mimeType == "application/vnd.ms-excel":
		text, metadata, err = extractXLSX(data)
	case mimeType == "application/msword":
		err = fmt.Errorf("legacy .doc format is not supported; convert the file to .docx")
	case strings.HasPrefix(mimeType, "image/"):
		text, metadata, err = extractImage(data, filename)
	default:
		err = fmt.Errorf("unsupported mime type %q", mimeType)
	}

	if err != nil {
		slog.Error("Basic extraction failed.", "filename", filename, "mimeType", mimeType, "error", err)
		return models.FailedResult(filename, err)
	}

	doc := models.NewDocumentContext(filename, models.MethodPassthrough, text, metadata)
	return &models.ProcessResult{
		Status:   models.StatusSuccess,
		Filename: filename,
		Document: doc,
	}
}

func extractPlainText(data []byte) (string, map[string]any, error) {
	if !utf8.Valid(data) {
		return "", nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	text := string(data)
	metadata := map[string]any{
		"numLines": len(strings.Split(text, "\n")),
		"encoding": "utf-8",
	}
	return text, metadata, nil
}

func extractCSV(data []byte) (string, map[string]any, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("csv file is empty")
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return "", nil, fmt.Errorf("failed to render csv: %w", err)
	}

	metadata := map[string]any{
		"numRows":     len(rows) - 1,
		"numColumns":  len(rows[0]),
		"columnNames": rows[0],
	}
	return strings.TrimRight(buf.String(), "\n"), metadata, nil
}

// word/document.xml structure, just deep enough to reach the text runs.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func extractDOCX(data []byte) (string, map[string]any, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open docx archive: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", nil, fmt.Errorf("failed to open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("failed to read document.xml: %w", err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}

		var b strings.Builder
		for _, para := range doc.Body.Paragraphs {
			var line strings.Builder
			for _, run := range para.Runs {
				for _, t := range run.Text {
					line.WriteString(t.Content)
				}
			}
			if strings.TrimSpace(line.String()) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line.String())
		}

		metadata := map[string]any{
			"numParagraphs": len(doc.Body.Paragraphs),
		}
		return b.String(), metadata, nil
	}
	return "", nil, fmt.Errorf("no word/document.xml in archive")
}

func extractXLSX(data []byte) (string, map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var parts []string
	var totalRows int
	sheetInfo := map[string]any{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}

		var buf bytes.Buffer
		w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		var columns int
		for _, row := range rows {
			columns = max(columns, len(row))
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		if err := w.Flush(); err != nil {
			return "", nil, fmt.Errorf("failed to render sheet %s: %w", sheet, err)
		}

		parts = append(parts, fmt.Sprintf("Sheet: %s\n%s", sheet, strings.TrimRight(buf.String(), "\n")))
		sheetInfo[sheet] = map[string]any{"rows": len(rows), "columns": columns}
		totalRows += len(rows)
	}

	metadata := map[string]any{
		"numSheets": len(sheetInfo),
		"totalRows": totalRows,
		"sheetInfo": sheetInfo,
	}
	return strings.Join(parts, "\n\n"), metadata, nil
}

// extractImage records image dimensions; there is no OCR on bare images, so
// the canonical text is a short placeholder describing the file.
func extractImage(data []byte, filename string) (string, map[string]any, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image: %w", err)
	}

	text := fmt.Sprintf("Image file: %s (%s, %dx%d)", filename, strings.ToUpper(format), cfg.Width, cfg.Height)
	metadata := map[string]any{
		"format": format,
		"width":  cfg.Width,
		"height": cfg.Height,
	}
	return text, metadata, nil
}
