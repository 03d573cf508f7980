package mistral

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText_PagesInOrder(t *testing.T) {
	body := []byte(`{"pages": [{"markdown": "# Invoice\n\nTotal: 42"}, {"markdown": "Second page"}]}`)

	got := ExtractText(body, 100)
	assert.Contains(t, got, "# Page 1")
	assert.Contains(t, got, "# Invoice")
	assert.Contains(t, got, "# Page 2")
	assert.Contains(t, got, "Second page")
	assert.Less(t, strings.Index(got, "# Page 1"), strings.Index(got, "# Page 2"))
}

func TestExtractText_FieldPriority(t *testing.T) {
	body := []byte(`{"pages": [{"text": "plain", "markdown": "rich"}]}`)
	assert.Equal(t, "# Page 1\n\nrich", ExtractText(body, 100))

	body = []byte(`{"pages": [{"content": "generic only"}]}`)
	assert.Equal(t, "# Page 1\n\ngeneric only", ExtractText(body, 100))
}

func TestExtractText_SkipsUnrecognizedPageKeepsNumbering(t *testing.T) {
	body := []byte(`{"pages": [{"images": ["a"]}, {"markdown": "usable"}]}`)

	got := ExtractText(body, 100)
	assert.Equal(t, "# Page 2\n\nusable", got)
}

func TestExtractText_RootLevelFields(t *testing.T) {
	assert.Equal(t, "whole document", ExtractText([]byte(`{"markdown": "whole document"}`), 100))
	assert.Equal(t, "fallback text", ExtractText([]byte(`{"pages": [], "text": "fallback text"}`), 100))
}

func TestExtractText_LongestStringFallback(t *testing.T) {
	long := strings.Repeat("a", 150)
	medium := strings.Repeat("b", 120)
	body := []byte(fmt.Sprintf(`{"id": "abc", "first": %q, "second": %q}`, medium, long))

	assert.Equal(t, long, ExtractText(body, 100))
}

func TestExtractText_FallbackRespectsFloor(t *testing.T) {
	assert.Equal(t, "", ExtractText([]byte(`{"note": "too short"}`), 100))
}

func TestExtractText_UnusableBodies(t *testing.T) {
	assert.Equal(t, "", ExtractText([]byte("not json"), 100))
	assert.Equal(t, "", ExtractText([]byte(`[1, 2, 3]`), 100))
	assert.Equal(t, "", ExtractText([]byte(`{"pages": "not-a-list"}`), 100))
	assert.Equal(t, "", ExtractText([]byte(`{}`), 100))
}
