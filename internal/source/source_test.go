package source

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"script.md", false},
		{"notes.TXT", false},
		{"page.html", false},
		{"doc.docx", false},
		{"paper.pdf", false},
		{"deck.pptx", false},
		{"image.png", true},
		{"noext", true},
	}
	for _, tt := range tests {
		c, err := ForFile(tt.filename)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForFile(%q): expected error", tt.filename)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForFile(%q): %v", tt.filename, err)
			continue
		}
		if c == nil {
			t.Errorf("ForFile(%q): nil converter", tt.filename)
		}
	}
}

func TestMarkdownPassthrough(t *testing.T) {
	input := "# Title\n\n[voice:Rachel] Hello.\n"
	out, err := (&Markdown{}).Convert(strings.NewReader(input), "script.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != input {
		t.Errorf("expected passthrough, got %q", out)
	}
}

func TestTextConvert(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph."
	out, err := (&Text{}).Convert(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.HasPrefix(got, "# notes\n") {
		t.Errorf("expected title heading, got %q", got)
	}
	if !strings.Contains(got, "First paragraph line one.\nFirst paragraph line two.") {
		t.Errorf("paragraph lines not preserved: %q", got)
	}
	if !strings.Contains(got, "Second paragraph.") {
		t.Errorf("missing second paragraph: %q", got)
	}
}

func TestTextConvertEmpty(t *testing.T) {
	out, err := (&Text{}).Convert(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "# empty" {
		t.Errorf("expected bare heading, got %q", out)
	}
}

func TestHTMLConvert(t *testing.T) {
	input := `<html><head><title>My Page</title></head><body>
<h1>Chapter One</h1>
<p>Opening text.</p>
<h2>Details</h2>
<p>More text.</p>
<script>ignore()</script>
</body></html>`
	out, err := (&HTML{}).Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "# My Page\n") {
		t.Errorf("expected document title from <title>, got %q", got)
	}
	if !strings.Contains(got, "## Chapter One\n") {
		t.Errorf("h1 should shift to level 2: %q", got)
	}
	if !strings.Contains(got, "### Details\n") {
		t.Errorf("h2 should shift to level 3: %q", got)
	}
	if !strings.Contains(got, "Opening text.") || !strings.Contains(got, "More text.") {
		t.Errorf("body text missing: %q", got)
	}
	if strings.Contains(got, "ignore()") {
		t.Errorf("script content leaked: %q", got)
	}
}

const slideXMLTmpl = `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:sp><p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
<p:txBody><a:p><a:r><a:t>TITLE</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:sld>`

const notesXMLTmpl = `<?xml version="1.0"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
         xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:sp><p:nvSpPr><p:nvPr><p:ph type="sldNum"/></p:nvPr></p:nvSpPr>
<p:txBody><a:p><a:r><a:t>1</a:t></a:r></a:p></p:txBody></p:sp>
<p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
<p:txBody>BODY</p:txBody></p:sp>
</p:spTree></p:cSld></p:notes>`

func buildDeck(t *testing.T, slides map[string]string, notes map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	for num, title := range slides {
		add("ppt/slides/slide"+num+".xml", strings.Replace(slideXMLTmpl, "TITLE", title, 1))
	}
	for num, paras := range notes {
		var body strings.Builder
		for _, p := range strings.Split(paras, "|") {
			body.WriteString("<a:p><a:r><a:t>" + p + "</a:t></a:r></a:p>")
		}
		add("ppt/notesSlides/notesSlide"+num+".xml", strings.Replace(notesXMLTmpl, "BODY", body.String(), 1))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPPTXConvert(t *testing.T) {
	deck := buildDeck(t,
		map[string]string{"1": "Welcome", "2": "Agenda", "3": "Closing"},
		map[string]string{"1": "Hello everyone.|Second point.", "3": "Thanks for listening."},
	)

	p := &PPTX{IncludeSlideTitles: true, DefaultVoice: "Rachel"}
	out, err := p.Convert(bytes.NewReader(deck), "quarterly.pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)

	if !strings.HasPrefix(got, "# quarterly\n") {
		t.Errorf("expected deck heading, got %q", got)
	}
	if !strings.Contains(got, "## Slide 1 - Welcome\n") {
		t.Errorf("missing slide 1 heading: %q", got)
	}
	if !strings.Contains(got, "[voice:Rachel] Hello everyone.") {
		t.Errorf("default voice tag missing on first notes body: %q", got)
	}
	if !strings.Contains(got, "Second point.") {
		t.Errorf("second notes paragraph missing: %q", got)
	}
	// Slide 2 has no notes and should be dropped entirely.
	if strings.Contains(got, "Slide 2") {
		t.Errorf("empty-notes slide should be skipped: %q", got)
	}
	if !strings.Contains(got, "## Slide 3 - Closing\n") {
		t.Errorf("missing slide 3 heading: %q", got)
	}
	// Only the first notes body carries the voice tag.
	if strings.Count(got, "[voice:Rachel]") != 1 {
		t.Errorf("expected exactly one voice tag: %q", got)
	}
	// The slide number placeholder must not leak into notes text.
	if strings.Contains(got, "\n1\n") {
		t.Errorf("slide number placeholder leaked: %q", got)
	}
}

func TestPPTXIncludeEmptyNotes(t *testing.T) {
	deck := buildDeck(t,
		map[string]string{"1": "Only", "2": "Blank"},
		map[string]string{"1": "Something."},
	)

	p := &PPTX{IncludeEmptyNotes: true}
	out, err := p.Convert(bytes.NewReader(deck), "deck.pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "## Slide 2\n") {
		t.Errorf("expected empty slide section: %q", got)
	}
	// Titles off: headings stay bare.
	if strings.Contains(got, "Slide 1 - ") {
		t.Errorf("unexpected title suffix: %q", got)
	}
}

func TestPPTXNoSlides(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Close()
	if _, err := (&PPTX{}).Convert(bytes.NewReader(buf.Bytes()), "empty.pptx"); err == nil {
		t.Error("expected error for deck without slides")
	}
}
