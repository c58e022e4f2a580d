package source

import (
	"bufio"
	"io"
	"strings"
)

// Text converts plain text files: the filename becomes the single
// heading and blank-line-separated paragraphs become its body.
type Text struct{}

func (t *Text) Convert(r io.Reader, filename string) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var b mdBuilder
	b.heading(1, baseTitle(filename))
	for _, para := range paragraphs {
		b.paragraph(para)
	}
	return b.bytes(), nil
}
