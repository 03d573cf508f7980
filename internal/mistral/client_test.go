package mistral

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_FullFlow(t *testing.T) {
	var gotAuth, gotPurpose string
	var ocrReq map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPurpose = r.FormValue("purpose")
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "scan.pdf", header.Filename)
		json.NewEncoder(w).Encode(map[string]string{"id": "file-123"})
	})
	mux.HandleFunc("GET /v1/files/file-123/url", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("expiry"))
		json.NewEncoder(w).Encode(map[string]string{"url": "https://signed.example/file-123"})
	})
	mux.HandleFunc("POST /v1/ocr", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ocrReq))
		json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]string{{"markdown": "# Scanned\n\nHello"}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient("test-key", server.URL, "mistral-ocr-latest", 100)
	got, err := client.Process(context.Background(), []byte("%PDF-fake"), "scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "ocr", gotPurpose)
	assert.Equal(t, "mistral-ocr-latest", ocrReq["model"])
	assert.Equal(t, true, ocrReq["include_image_base64"])
	document, ok := ocrReq["document"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "document_url", document["type"])
	assert.Equal(t, "https://signed.example/file-123", document["document_url"])

	assert.Contains(t, got, "# Page 1")
	assert.Contains(t, got, "# Scanned")
}

func TestProcess_MissingAPIKey(t *testing.T) {
	client := NewClient("", "http://localhost:0", "mistral-ocr-latest", 100)

	_, err := client.Process(context.Background(), []byte("x"), "a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestProcess_UploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid file"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, "mistral-ocr-latest", 100)
	_, err := client.Process(context.Background(), []byte("x"), "a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral upload")
	assert.Contains(t, err.Error(), "unexpected status 422")
	assert.Contains(t, err.Error(), "invalid file")
}

func TestProcess_EmptyRecognitionIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "file-9"})
	})
	mux.HandleFunc("GET /v1/files/file-9/url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://signed.example/file-9"})
	})
	mux.HandleFunc("POST /v1/ocr", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"pages": []any{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient("test-key", server.URL, "mistral-ocr-latest", 100)
	got, err := client.Process(context.Background(), []byte("x"), "blank.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("key", "", "mistral-ocr-latest", 100)
	assert.Equal(t, defaultBaseURL, client.baseURL)
}
