// Package testutil builds small but structurally valid PDF files so the
// classifier and pipeline tests run against real parser behavior instead
// of canned fixtures.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PDFBuilder assembles a minimal single-font PDF, one page at a time.
type PDFBuilder struct {
	pages []pdfPage
}

type pdfPage struct {
	text   string
	images int
}

// NewPDF starts an empty document.
func NewPDF() *PDFBuilder {
	return &PDFBuilder{}
}

// AddPage appends a page carrying the given text and image count.
func (b *PDFBuilder) AddPage(text string, images int) *PDFBuilder {
	b.pages = append(b.pages, pdfPage{text: text, images: images})
	return b
}

// Bytes renders the document with a classic xref table.
func (b *PDFBuilder) Bytes() []byte {
	// Object layout: 1 catalog, 2 page tree, 3 font, then per page its
	// content stream, its image XObjects, and the page dict itself.
	type layout struct {
		content int
		images  []int
		page    int
	}

	next := 4
	layouts := make([]layout, len(b.pages))
	for i, page := range b.pages {
		layouts[i].content = next
		next++
		for j := 0; j < page.images; j++ {
			layouts[i].images = append(layouts[i].images, next)
			next++
		}
		layouts[i].page = next
		next++
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, next)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, 0, len(layouts))
	for _, l := range layouts {
		kids = append(kids, fmt.Sprintf("%d 0 R", l.page))
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(b.pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, page := range b.pages {
		l := layouts[i]

		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapeString(page.text))
		writeObj(l.content, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))

		for _, num := range l.images {
			writeObj(num, "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\nx\nendstream")
		}

		resources := "/Font << /F1 3 0 R >>"
		if len(l.images) > 0 {
			xobjects := make([]string, 0, len(l.images))
			for j, num := range l.images {
				xobjects = append(xobjects, fmt.Sprintf("/Im%d %d 0 R", j, num))
			}
			resources += fmt.Sprintf(" /XObject << %s >>", strings.Join(xobjects, " "))
		}
		writeObj(l.page, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>",
			resources, l.content))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", next)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num < next; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", next, xrefOffset)

	return buf.Bytes()
}

// escapeString escapes the characters PDF literal strings reserve.
func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
