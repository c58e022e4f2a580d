package script

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Directive grammar. Anything that does not match stays plain text, so
// a malformed tag (e.g. "[voice:]") is narrated literally rather than
// failing the document.
var (
	aliasPattern = regexp.MustCompile(`\[alias:([A-Za-z0-9_]+)=([A-Za-z0-9_-]+)\]`)
	voicePattern = regexp.MustCompile(`\[voice:([A-Za-z0-9_-]+)\]`)
)

// Parse turns dialect markdown into a section arena plus the alias
// table collected from the preamble. It never fails: unparseable
// constructs degrade to plain text.
func Parse(src []byte) *Document {
	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := &Document{Aliases: AliasTable{}}

	// Stack tracks the chain of open sections by heading level.
	// A virtual level-0 entry stands in for the document root.
	type stackEntry struct {
		index int // arena index, -1 for the root
		level int
	}
	stack := []stackEntry{{index: -1, level: 0}}

	var body bytes.Buffer // accumulated text for the open section
	var preamble bytes.Buffer

	flush := func() {
		top := stack[len(stack)-1]
		if top.index < 0 {
			// Text before the first heading is the preamble: alias
			// directives are honored here and nothing is narrated.
			if preamble.Len() > 0 {
				preamble.WriteString("\n\n")
			}
			preamble.Write(body.Bytes())
		} else if body.Len() > 0 {
			s := &doc.Sections[top.index]
			s.Segments = splitSegments(body.String())
		}
		body.Reset()
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			level := node.Level
			title := Clean(string(node.Text(src)))

			// Close everything at this level or deeper.
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].index

			idx := len(doc.Sections)
			doc.Sections = append(doc.Sections, Section{
				Level:  level,
				Title:  title,
				Parent: parent,
			})
			if parent >= 0 {
				doc.Sections[parent].Children = append(doc.Sections[parent].Children, idx)
			}
			stack = append(stack, stackEntry{index: idx, level: level})

		default:
			if t := extractText(n, src); t != "" {
				if body.Len() > 0 {
					body.WriteString("\n\n")
				}
				body.WriteString(t)
			}
		}
	}
	flush()

	for _, m := range aliasPattern.FindAllStringSubmatch(preamble.String(), -1) {
		doc.Aliases[m[1]] = m[2]
	}

	return doc
}

// splitSegments cuts body text at voice tags. Text before the first tag
// becomes an untagged lead segment (voice filled in at resolution);
// each tag opens a segment spoken by the named voice. Blank runs
// between tags produce nothing.
func splitSegments(body string) []VoiceSegment {
	var segments []VoiceSegment
	add := func(voice, raw string) {
		if t := Clean(raw); t != "" {
			segments = append(segments, VoiceSegment{Voice: voice, Text: t})
		}
	}

	pos := 0
	current := ""
	for _, m := range voicePattern.FindAllStringSubmatchIndex(body, -1) {
		add(current, body[pos:m[0]])
		current = body[m[2]:m[3]]
		pos = m[1]
	}
	add(current, body[pos:])
	return segments
}

// extractText flattens a goldmark block node into plain text. Leaf
// blocks yield their raw source lines, which keeps directive tags
// byte-for-byte intact; container blocks (lists, quotes) recurse.
func extractText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
			buf.WriteByte('\n')
		}
		return strings.TrimSpace(buf.String())
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := extractText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
