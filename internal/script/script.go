// Package script implements the markdown narration dialect: heading
// sections, preamble alias definitions and inline voice switches, plus
// the voice resolution and output naming rules built on top of it.
package script

// Document is a parsed narration script. Sections form an arena in
// document order: tree links are indices into the Sections slice, so
// nodes carry no back-pointers.
type Document struct {
	Sections []Section
	Aliases  AliasTable
}

// Section is one heading plus its direct body content.
type Section struct {
	Level int    // heading depth, 1-based
	Title string // sanitized heading text

	Parent   int   // arena index of the parent section, -1 for top level
	Children []int // arena indices, document order

	// Segments is the section's direct body split at voice tags.
	// Voices are raw tag names (or "" for the untagged lead segment)
	// until Resolve assigns concrete voices.
	Segments []VoiceSegment
}

// VoiceSegment is a contiguous run of body text spoken by one voice.
type VoiceSegment struct {
	Voice string
	Text  string
}

// AliasTable maps preamble alias names to voice names. Lookups are a
// single substitution: aliases never chain.
type AliasTable map[string]string

// Resolve returns the voice behind name, or name itself if no alias is
// defined. Unknown names pass through so that literal backend voices
// work without registration; typos surface at synthesis time.
func (t AliasTable) Resolve(name string) string {
	if v, ok := t[name]; ok {
		return v
	}
	return name
}

// TitlePath returns the heading titles from the root ancestor down to
// the section at index i, inclusive.
func (d *Document) TitlePath(i int) []string {
	var rev []string
	for j := i; j >= 0; j = d.Sections[j].Parent {
		rev = append(rev, d.Sections[j].Title)
	}
	path := make([]string, len(rev))
	for k, t := range rev {
		path[len(rev)-1-k] = t
	}
	return path
}

// HasAudio reports whether the section at index i carries spoken
// content of its own. Container sections (heading with only
// subsections) produce no file but still name their descendants.
func (d *Document) HasAudio(i int) bool {
	for _, seg := range d.Sections[i].Segments {
		if seg.Text != "" {
			return true
		}
	}
	return false
}
