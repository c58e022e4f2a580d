// Package commands implements the docvoice CLI commands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/tts"
	"github.com/dgallion1/docvoice/internal/tts/azure"
	"github.com/dgallion1/docvoice/internal/tts/edge"
	"github.com/dgallion1/docvoice/internal/tts/elevenlabs"
)

var (
	cfgPath   string
	flagSvc   string
	flagVoice string
	flagOut   string
	flagFmt   string
	flagQual  string
	verbose   bool

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docvoice",
	Short: "Turn annotated markdown into per-section speech audio",
	Long: `docvoice narrates documents: it parses a markdown dialect with
[alias:Name=Voice] and [voice:Name] directives, assigns a voice to every
piece of body text, and synthesizes one audio file per section using
ElevenLabs, Azure Speech, or Edge TTS.

Section files are named from the heading hierarchy and never rebuilt
when they already exist, so interrupted runs resume where they stopped.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(log)

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if flagSvc != "" {
			cfg.Service = flagSvc
		}
		if flagVoice != "" {
			cfg.DefaultVoice = flagVoice
		}
		if flagOut != "" {
			cfg.Output.Directory = flagOut
		}
		if flagFmt != "" {
			cfg.Output.Format = flagFmt
		}
		if flagQual != "" {
			cfg.Output.Quality = flagQual
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "docvoice.yaml", "configuration file")
	pf.StringVar(&flagSvc, "service", "", "tts backend: elevenlabs, azure, edge")
	pf.StringVar(&flagVoice, "voice", "", "default narration voice")
	pf.StringVarP(&flagOut, "output-dir", "o", "", "audio output directory")
	pf.StringVar(&flagFmt, "format", "", "audio format: mp3, wav, ogg, webm")
	pf.StringVar(&flagQual, "quality", "", "bitrate tier: high, medium, low")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// buildSynth constructs the configured backend client.
func buildSynth() (tts.Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	quality := tts.Quality(cfg.Output.Quality)
	switch cfg.Service {
	case "elevenlabs":
		return elevenlabs.New(elevenlabs.Config{
			APIKey:  cfg.Eleven.APIKey,
			ModelID: cfg.Eleven.ModelID,
			Quality: quality,
		}), nil
	case "azure":
		return azure.New(azure.Config{
			APIKey:  cfg.Azure.APIKey,
			Region:  cfg.Azure.Region,
			Quality: quality,
		}), nil
	default:
		return edge.New(), nil
	}
}

// buildProcessor wires the backend into a plan executor.
func buildProcessor(synth tts.Synthesizer) *pipeline.Processor {
	return &pipeline.Processor{
		Synth:       synth,
		Format:      cfg.Output.Format,
		Concurrency: cfg.Pipeline.SectionConcurrency,
		MaxRetries:  cfg.Pipeline.MaxRetries,
		Logger:      log,
	}
}
