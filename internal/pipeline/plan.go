// Package pipeline turns resolved narration documents into audio files
// on disk: planning outputs, synthesizing segments with retry, and
// tracking jobs for serve mode.
package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docvoice/internal/script"
)

// PlanOptions configures output planning.
type PlanOptions struct {
	OutputDir string
	Format    string // mp3, wav, ogg, webm

	// Overrides maps section titles to replacement filenames, used
	// verbatim relative to OutputDir. The format extension is appended
	// only when the override carries none.
	Overrides map[string]string
}

// Output is one planned audio file.
type Output struct {
	Section  int // arena index into the document
	Title    string
	Path     string
	Segments []script.VoiceSegment

	// Skip marks outputs whose file already exists on disk.
	Skip bool
}

// Plan is the ordered set of files a run will produce.
type Plan struct {
	Outputs []Output
}

// BuildPlan maps every audio-bearing section of doc to an output path.
// A section's name comes from its heading hierarchy unless overridden;
// when two sections map to the same path the later one wins and the
// earlier is dropped with a warning. Outputs whose file already exists
// (non-empty) are marked Skip, which makes repeated runs idempotent.
func BuildPlan(doc *script.Document, opts PlanOptions, logger *slog.Logger) Plan {
	if logger == nil {
		logger = slog.Default()
	}

	var plan Plan
	byPath := map[string]int{} // path -> index into plan.Outputs

	for i := range doc.Sections {
		if !doc.HasAudio(i) {
			continue
		}
		sec := &doc.Sections[i]

		name, overridden := opts.Overrides[sec.Title]
		if !overridden {
			name = doc.OutputName(i, opts.Format)
		} else if filepath.Ext(name) == "" {
			name += "." + opts.Format
		}
		path := filepath.Join(opts.OutputDir, name)

		out := Output{
			Section:  i,
			Title:    sec.Title,
			Path:     path,
			Segments: sec.Segments,
			Skip:     fileExists(path),
		}

		if prev, ok := byPath[path]; ok {
			logger.Warn("output name collision, later section wins",
				"path", path,
				"dropped", plan.Outputs[prev].Title,
				"kept", sec.Title)
			plan.Outputs[prev] = out
			continue
		}
		byPath[path] = len(plan.Outputs)
		plan.Outputs = append(plan.Outputs, out)
	}

	return plan
}

// Zero-byte files count as absent: writes go through temp+rename, so an
// empty file at an output path is leftover junk, not finished audio.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
