package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// RawArchive stores the original uploaded bytes in a GCS bucket so a
// document can be reprocessed later without another upload.
type RawArchive struct {
	client *storage.Client
	bucket string
}

// NewRawArchive creates an archive writing to the given bucket.
func NewRawArchive(ctx context.Context, bucket string) (*RawArchive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket must be provided to create a raw archive")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &RawArchive{client: client, bucket: bucket}, nil
}

// objectName places each upload under its document ID so the same filename
// can be archived for different documents.
func objectName(documentID, filename string) string {
	return fmt.Sprintf("raw/%s/%s", documentID, filename)
}

// Save writes the original upload only if the object doesn't already exist
// and returns the object path. A duplicate write is treated as success.
func (a *RawArchive) Save(ctx context.Context, documentID, filename string, data []byte) (string, error) {
	name := objectName(documentID, filename)
	writer := a.client.Bucket(a.bucket).Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Raw object already archived, skipping.", "object", name)
			return name, nil
		}
		return "", fmt.Errorf("failed to write raw object %s: %w", name, err)
	}

	if err := writer.Close(); err != nil {
		// The precondition failure often surfaces at Close for small objects.
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Raw object already archived, skipping.", "object", name)
			return name, nil
		}
		return "", fmt.Errorf("failed to finalize raw object %s: %w", name, err)
	}
	return name, nil
}

// Delete removes an archived upload. A missing object is not an error.
func (a *RawArchive) Delete(ctx context.Context, documentID, filename string) error {
	name := objectName(documentID, filename)
	if err := a.client.Bucket(a.bucket).Object(name).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete raw object %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying storage client.
func (a *RawArchive) Close() error {
	return a.client.Close()
}
