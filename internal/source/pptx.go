package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PPTX converts PowerPoint decks: the deck name becomes the top-level
// heading and each slide's speaker notes become a "Slide N" section.
type PPTX struct {
	// IncludeEmptyNotes emits sections for slides with no notes.
	IncludeEmptyNotes bool
	// IncludeSlideTitles appends " - Title" to slide headings.
	IncludeSlideTitles bool
	// DefaultVoice, when set, opens the first notes body with a voice
	// tag so resolution has an explicit starting voice.
	DefaultVoice string
}

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
var notesPathRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)

func (p *PPTX) Convert(r io.Reader, filename string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pptx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}

	titles := map[int]string{}
	notes := map[int]string{}
	var nums []int

	for _, f := range zr.File {
		if m := slidePathRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			nums = append(nums, n)
			xmlData, err := readZipFile(f)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			titles[n] = placeholderText(xmlData, "title", "ctrTitle")
		} else if m := notesPathRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			xmlData, err := readZipFile(f)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			notes[n] = placeholderText(xmlData, "body")
		}
	}
	if len(nums) == 0 {
		return nil, fmt.Errorf("no slides in %s", filename)
	}
	sort.Ints(nums)

	var b mdBuilder
	b.heading(1, baseTitle(filename))

	voicePending := p.DefaultVoice != ""
	for _, n := range nums {
		body := strings.TrimSpace(notes[n])
		if body == "" && !p.IncludeEmptyNotes {
			continue
		}
		heading := fmt.Sprintf("Slide %d", n)
		if p.IncludeSlideTitles {
			if t := strings.TrimSpace(titles[n]); t != "" {
				heading += " - " + t
			}
		}
		b.heading(2, heading)
		if body != "" && voicePending {
			body = fmt.Sprintf("[voice:%s] %s", p.DefaultVoice, body)
			voicePending = false
		}
		b.paragraph(body)
	}

	return b.bytes(), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// placeholderText extracts the text of shapes whose placeholder type
// matches one of types, joining paragraphs with newlines. DrawingML
// nests text as sp > txBody > p > r > t; the placeholder type lives on
// sp > nvSpPr > nvPr > ph.
func placeholderText(xmlData []byte, types ...string) string {
	wanted := map[string]bool{}
	for _, t := range types {
		wanted[t] = true
	}

	dec := xml.NewDecoder(bytes.NewReader(xmlData))
	var out strings.Builder
	var para strings.Builder
	shapeDepth := 0 // nesting depth inside the current <sp>
	inShape := false
	match := false
	inText := false

	flushPara := func() {
		if t := strings.TrimSpace(para.String()); t != "" {
			if out.Len() > 0 {
				out.WriteString("\n")
			}
			out.WriteString(t)
		}
		para.Reset()
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sp":
				inShape = true
				match = false
				shapeDepth = 0
			case "ph":
				if inShape {
					for _, a := range el.Attr {
						if a.Name.Local == "type" && wanted[a.Value] {
							match = true
						}
					}
				}
			case "t":
				if match {
					inText = true
				}
			}
			if inShape {
				shapeDepth++
			}
		case xml.EndElement:
			if inShape {
				shapeDepth--
				if shapeDepth == 0 && el.Name.Local == "sp" {
					flushPara()
					inShape = false
					match = false
				}
			}
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if match {
					flushPara()
				}
			}
		case xml.CharData:
			if inText {
				para.Write(el)
			}
		}
	}
	flushPara()
	return out.String()
}
