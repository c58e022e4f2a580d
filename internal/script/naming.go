package script

import (
	"regexp"
	"strings"
)

var (
	nonWordRuns   = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// slugTitle reduces one heading title to a filename token: lowercase,
// letters and digits kept, internal hyphens kept, every other run of
// characters collapsed to a single underscore. Digits survive verbatim,
// so "Section 2.3: Advanced Topics" -> "section_2_3_advanced_topics".
func slugTitle(title string) string {
	s := nonWordRuns.ReplaceAllString(strings.ToLower(title), "_")
	// A hyphen that was punctuation rather than a word join ends up
	// flanked by underscores; fold it away.
	for strings.Contains(s, "_-") || strings.Contains(s, "-_") {
		s = strings.ReplaceAll(s, "_-", "_")
		s = strings.ReplaceAll(s, "-_", "_")
	}
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_-")
}

// FileStem derives the deterministic output name for a section from
// its heading hierarchy: ancestor titles root-to-leaf, slugged and
// joined by underscores. Identical hierarchies always produce the same
// stem; the caller appends the format extension.
func FileStem(titlePath []string) string {
	var tokens []string
	for _, t := range titlePath {
		if s := slugTitle(t); s != "" {
			tokens = append(tokens, s)
		}
	}
	return strings.Join(tokens, "_")
}

// OutputName returns the generated relative filename for the section
// at arena index i, e.g. "title_sub.mp3".
func (d *Document) OutputName(i int, ext string) string {
	stem := FileStem(d.TitlePath(i))
	if stem == "" {
		stem = "section"
	}
	return stem + "." + strings.TrimPrefix(ext, ".")
}
