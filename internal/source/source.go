// Package source converts uploaded documents into narration markdown.
// Each converter maps a document format onto the heading/body dialect
// the script parser understands; markdown input passes through as-is.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Converter turns one document format into narration markdown.
type Converter interface {
	Convert(r io.Reader, filename string) ([]byte, error)
}

// ForFile selects a converter based on the file extension.
func ForFile(filename string) (Converter, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return &Markdown{}, nil
	case ".txt":
		return &Text{}, nil
	case ".html", ".htm":
		return &HTML{}, nil
	case ".docx":
		return &DOCX{}, nil
	case ".pdf":
		return &PDF{FallbackPdftotext: true}, nil
	case ".pptx":
		return &PPTX{IncludeSlideTitles: true}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

// Markdown passes narration markdown through untouched.
type Markdown struct{}

func (m *Markdown) Convert(r io.Reader, filename string) ([]byte, error) {
	return io.ReadAll(r)
}

// baseTitle strips the extension from a filename for use as a
// top-level heading.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// mdBuilder accumulates dialect markdown.
type mdBuilder struct {
	buf strings.Builder
}

func (b *mdBuilder) heading(level int, title string) {
	if b.buf.Len() > 0 {
		b.buf.WriteString("\n")
	}
	b.buf.WriteString(strings.Repeat("#", level))
	b.buf.WriteString(" ")
	b.buf.WriteString(strings.TrimSpace(title))
	b.buf.WriteString("\n")
}

func (b *mdBuilder) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.buf.WriteString("\n")
	b.buf.WriteString(text)
	b.buf.WriteString("\n")
}

func (b *mdBuilder) bytes() []byte {
	return []byte(b.buf.String())
}
