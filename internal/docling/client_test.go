package docling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1alpha/convert/file", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "md", r.FormValue("to_formats"))
		_, header, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "layout.pdf", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"status":   "success",
			"document": map[string]string{"md_content": "# Converted\n\nBody"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.Convert(context.Background(), []byte("%PDF-fake"), "layout.pdf")
	require.NoError(t, err)
	assert.Equal(t, "# Converted\n\nBody", got)
}

func TestConvert_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion engine crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Convert(context.Background(), []byte("x"), "a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "conversion engine crashed")
}

func TestConvert_EmptyMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "document": map[string]string{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Convert(context.Background(), []byte("x"), "a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no markdown")
}
