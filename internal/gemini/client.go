package gemini

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client holds the pre-configured generative model plus the file-processing
// poll settings. One instance is created at process start and shared by
// every pipeline invocation.
type Client struct {
	model        *genai.GenerativeModel
	base         *genai.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient creates a client for the given model, authenticated by API key.
func NewClient(ctx context.Context, apiKey, modelName string, pollInterval, pollTimeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewClient: apiKey cannot be empty")
	}

	base, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(modelName)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &Client{
		model:        model,
		base:         base,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}, nil
}

// GenerateText sends a single text prompt and returns the model's text
// response. An empty response is treated as an error so callers can take
// their fallback paths.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// SummarizeFile uploads raw document bytes, waits for the remote
// file-processing job to finish, then generates a response for the prompt
// grounded on that file. The uploaded file is deleted best-effort afterward.
func (c *Client) SummarizeFile(ctx context.Context, data []byte, filename, prompt string) (string, error) {
	file, err := c.base.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: filename,
		MIMEType:    "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to gemini: %w", err)
	}
	defer func() {
		if err := c.base.DeleteFile(context.WithoutCancel(ctx), file.Name); err != nil {
			slog.Warn("Failed to delete uploaded gemini file.", "file", file.Name, "error", err)
		}
	}()

	file, err = pollFileState(ctx, c.base.GetFile, file, c.pollInterval, c.pollTimeout)
	if err != nil {
		return "", err
	}

	resp, err := c.model.GenerateContent(ctx,
		genai.FileData{MIMEType: file.MIMEType, URI: file.URI},
		genai.Text(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response for file %s", filename)
	}
	return text, nil
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// extractText parses the model's response and robustly extracts text content.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var content strings.Builder
	var textPartsFound int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
			textPartsFound++
		}
	}

	if textPartsFound > 1 {
		slog.Warn("Gemini response contained multiple text parts; they have been concatenated.", "parts", textPartsFound)
	}

	contentStr := strings.TrimSpace(content.String())
	contentStr = strings.TrimPrefix(contentStr, "```markdown")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// IsRefusal reports whether a response reads as a model refusal rather than
// document content.
func IsRefusal(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
