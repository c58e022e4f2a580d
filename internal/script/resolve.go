package script

// Resolve assigns a concrete voice to every segment in the document.
//
// The current voice starts at defaultVoice and is threaded through a
// pre-order walk of the arena (which is already in document order): a
// tagged segment resolves its tag through the alias table (one hop,
// literal pass-through on miss) and moves the cursor; an untagged
// segment inherits the cursor. The cursor survives section boundaries,
// so a section with no tag of its own speaks with the last voice heard.
//
// Resolution is total: there is no failure mode. Whether a resolved
// name denotes a real backend voice is only known at synthesis time.
func Resolve(doc *Document, defaultVoice string) {
	current := defaultVoice
	for i := range doc.Sections {
		segs := doc.Sections[i].Segments
		for j := range segs {
			if segs[j].Voice == "" {
				segs[j].Voice = current
				continue
			}
			current = doc.Aliases.Resolve(segs[j].Voice)
			segs[j].Voice = current
		}
	}
}
