package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docvoice/internal/script"
	"github.com/dgallion1/docvoice/internal/source"
)

var (
	includeEmptyNotes bool
	noSlideTitles     bool
	overwriteScript   bool
)

var pptCmd = &cobra.Command{
	Use:   "ppt <deck.pptx>",
	Short: "Narrate the speaker notes of a PowerPoint deck",
	Long: `Extract per-slide speaker notes from a .pptx deck, persist them as a
markdown script next to the audio, and synthesize one file per slide.

The script is written once and reused on later runs so manual edits
survive; pass --overwrite-script to regenerate it from the deck.

Example:
  docvoice ppt quarterly.pptx --voice Rachel`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := buildSynth()
		if err != nil {
			return err
		}
		proc := buildProcessor(synth)

		deckPath := args[0]
		stem := script.FileStem([]string{strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))})
		if stem == "" {
			stem = "deck"
		}
		outDir := flagOut
		if outDir == "" {
			outDir = filepath.Join(filepath.Dir(deckPath), stem)
		}
		cfg.Output.Directory = outDir
		scriptPath := filepath.Join(outDir, stem+".md")

		markdown, err := loadOrExtractScript(deckPath, scriptPath)
		if err != nil {
			return err
		}

		plan, _ := buildDocPlan(markdown)
		report := proc.Run(cmd.Context(), plan)
		printReport(report)
		if report.Failed > 0 {
			return fmt.Errorf("%d slide(s) failed", report.Failed)
		}
		return nil
	},
}

// loadOrExtractScript returns the persisted markdown script for a deck,
// extracting and saving it on first run or when overwriting.
func loadOrExtractScript(deckPath, scriptPath string) ([]byte, error) {
	if !overwriteScript {
		if data, err := os.ReadFile(scriptPath); err == nil {
			log.Info("reusing existing script", "path", scriptPath)
			return data, nil
		}
	}

	f, err := os.Open(deckPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conv := &source.PPTX{
		IncludeEmptyNotes:  includeEmptyNotes,
		IncludeSlideTitles: !noSlideTitles,
		DefaultVoice:       cfg.DefaultVoice,
	}
	markdown, err := conv.Convert(f, deckPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", deckPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(scriptPath, markdown, 0o644); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	log.Info("script extracted", "path", scriptPath)
	return markdown, nil
}

func init() {
	pptCmd.Flags().BoolVar(&includeEmptyNotes, "include-empty-notes", false, "emit sections for slides without notes")
	pptCmd.Flags().BoolVar(&noSlideTitles, "no-slide-titles", false, "omit slide titles from section headings")
	pptCmd.Flags().BoolVar(&overwriteScript, "overwrite-script", false, "regenerate the markdown script from the deck")
	rootCmd.AddCommand(pptCmd)
}
