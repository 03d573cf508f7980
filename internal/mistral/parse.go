package mistral

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ExtractText pulls recognized text out of an OCR response body without
// assuming a fixed schema. Per page it tries the rich markup field, then the
// plain text field, then the generic content field; pages are joined in
// original order under page-boundary headings. When no known shape matches,
// the last resort is the longest top-level string value over fallbackFloor
// characters. Returns "" when nothing usable is found.
func ExtractText(body []byte, fallbackFloor int) string {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		slog.Warn("OCR response is not a JSON object.", "error", err)
		return ""
	}

	if pagesRaw, ok := root["pages"]; ok {
		if text := extractFromPages(pagesRaw); text != "" {
			return text
		}
	}

	if text := firstStringField(root, "markdown", "text", "content"); text != "" {
		return strings.TrimSpace(text)
	}

	return longestStringField(root, fallbackFloor)
}

func extractFromPages(pagesRaw json.RawMessage) string {
	var pages []map[string]json.RawMessage
	if err := json.Unmarshal(pagesRaw, &pages); err != nil {
		slog.Warn("OCR pages field has an unexpected shape.", "error", err)
		return ""
	}

	var b strings.Builder
	for i, page := range pages {
		text := firstStringField(page, "markdown", "text", "content")
		if text == "" {
			slog.Warn("OCR page carried no recognizable text field.", "page", i+1)
			continue
		}
		fmt.Fprintf(&b, "# Page %d\n\n", i+1)
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// firstStringField returns the first non-empty string value among the given
// keys, in priority order.
func firstStringField(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// longestStringField scans every top-level string value and returns the
// longest one over the floor. Deliberately permissive: with an unknown
// response shape this may pick unrelated text, but it beats dropping a
// recognition result on the floor.
func longestStringField(obj map[string]json.RawMessage, floor int) string {
	var longest string
	for _, raw := range obj {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if len(s) > floor && len(s) > len(longest) {
			longest = s
		}
	}
	return strings.TrimSpace(longest)
}
