package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.mistral.ai"

// Client is a minimal REST client for the Mistral OCR API. Recognition is a
// three-step flow: upload the document, fetch a short-lived signed URL for
// it, then run OCR against that URL.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	model         string
	fallbackFloor int
}

// NewClient creates an OCR client. baseURL may be empty for the public API;
// tests point it at a local server.
func NewClient(apiKey, baseURL, model string, fallbackFloor int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		baseURL:       baseURL,
		apiKey:        apiKey,
		model:         model,
		fallbackFloor: fallbackFloor,
	}
}

// Process runs the full recognition flow for one document and returns the
// recognized text with per-page headings. Transport and API failures are
// errors; an empty recognition result is not.
func (c *Client) Process(ctx context.Context, data []byte, filename string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("mistral api key is not configured")
	}

	fileID, err := c.uploadFile(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("mistral upload: %w", err)
	}

	signedURL, err := c.signedURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("mistral signed url: %w", err)
	}

	body, err := c.recognize(ctx, signedURL)
	if err != nil {
		return "", fmt.Errorf("mistral ocr: %w", err)
	}

	text := ExtractText(body, c.fallbackFloor)
	if text == "" {
		slog.Warn("Mistral OCR returned no recognizable text.", "filename", filename)
	}
	return text, nil
}

type uploadResponse struct {
	ID string `json:"id"`
}

func (c *Client) uploadFile(ctx context.Context, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("purpose", "ocr"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var uploaded uploadResponse
	if err := c.do(req, &uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response contained no file id")
	}
	return uploaded.ID, nil
}

type signedURLResponse struct {
	URL string `json:"url"`
}

func (c *Client) signedURL(ctx context.Context, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/files/%s/url?expiry=1", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var signed signedURLResponse
	if err := c.do(req, &signed); err != nil {
		return "", err
	}
	if signed.URL == "" {
		return "", fmt.Errorf("signed url response contained no url")
	}
	return signed.URL, nil
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// recognize returns the raw OCR response body; the caller parses it with
// shape tolerance.
func (c *Client) recognize(ctx context.Context, documentURL string) ([]byte, error) {
	payload, err := json.Marshal(ocrRequest{
		Model:              c.model,
		Document:           ocrDocument{Type: "document_url", DocumentURL: documentURL},
		IncludeImageBase64: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}
	return io.ReadAll(resp.Body)
}

// do issues a request and decodes a JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(snippet))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
