package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// fileGetter fetches the current state of an uploaded file.
type fileGetter func(ctx context.Context, name string) (*genai.File, error)

// pollFileState waits for a freshly uploaded file to leave the PROCESSING
// state, re-fetching it at a fixed interval under an elapsed-time ceiling.
// A FAILED terminal state or an exhausted ceiling is an error; any other
// terminal state returns the file for use.
func pollFileState(ctx context.Context, get fileGetter, file *genai.File, interval, timeout time.Duration) (*genai.File, error) {
	deadline := time.Now().Add(timeout)

	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("gemini file %s still processing after %s", file.Name, timeout)
		}
		slog.Info("Waiting for gemini to process the file.", "file", file.Name)

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		refreshed, err := get(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh gemini file state: %w", err)
		}
		file = refreshed
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("gemini failed to process file %s", file.Name)
	}
	return file, nil
}
