package docling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client calls a docling-serve deployment to convert a document's layout
// (headings, tables, reading order) into a markdown export.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a converter client for the given docling-serve base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
	}
}

type convertResponse struct {
	Status   string `json:"status"`
	Document struct {
		MDContent string `json:"md_content"`
	} `json:"document"`
}

// Convert posts the document for conversion and returns its markdown export.
func (c *Client) Convert(ctx context.Context, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.WriteField("to_formats", "md"); err != nil {
		return "", fmt.Errorf("failed to write format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1alpha/convert/file", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}

	var converted convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return "", fmt.Errorf("failed to decode conversion response: %w", err)
	}
	if converted.Document.MDContent == "" {
		return "", fmt.Errorf("conversion returned no markdown for %s", filename)
	}
	return converted.Document.MDContent, nil
}
