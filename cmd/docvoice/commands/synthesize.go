package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/script"
	"github.com/dgallion1/docvoice/internal/source"
)

var (
	dryRun bool
	force  bool
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <document>...",
	Short: "Narrate markdown scripts or documents",
	Long: `Synthesize one audio file per section of each document.

Markdown scripts pass straight to the dialect parser; txt, html, docx,
pdf and pptx documents are converted to the dialect first. Sections
whose audio already exists are skipped.

Example:
  docvoice synthesize lecture.md --voice Rachel -o ./audio`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := buildSynth()
		if err != nil {
			return err
		}
		proc := buildProcessor(synth)

		var total pipeline.Report
		for _, path := range args {
			report, err := narrateFile(cmd.Context(), proc, path)
			if err != nil {
				return err
			}
			total.Processed += report.Processed
			total.Skipped += report.Skipped
			total.Failed += report.Failed
			total.Failures = append(total.Failures, report.Failures...)
		}
		printReport(total)
		if total.Failed > 0 {
			return fmt.Errorf("%d section(s) failed", total.Failed)
		}
		return nil
	},
}

func narrateFile(ctx context.Context, proc *pipeline.Processor, path string) (pipeline.Report, error) {
	conv, err := source.ForFile(path)
	if err != nil {
		return pipeline.Report{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Report{}, err
	}
	markdown, err := conv.Convert(f, path)
	f.Close()
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("%s: %w", path, err)
	}

	plan, _ := buildDocPlan(markdown)
	if force {
		for i := range plan.Outputs {
			plan.Outputs[i].Skip = false
		}
	}
	if dryRun {
		for _, out := range plan.Outputs {
			state := "create"
			if out.Skip {
				state = "exists"
			}
			fmt.Printf("%-7s %s (%d segment(s))\n", state, out.Path, len(out.Segments))
		}
		return pipeline.Report{}, nil
	}
	return proc.Run(ctx, plan), nil
}

// buildDocPlan parses and resolves dialect markdown and plans its
// outputs with the active configuration.
func buildDocPlan(markdown []byte) (pipeline.Plan, *script.Document) {
	doc := script.Parse(bytes.TrimSpace(markdown))
	script.Resolve(doc, cfg.DefaultVoice)
	plan := pipeline.BuildPlan(doc, pipeline.PlanOptions{
		OutputDir: cfg.Output.Directory,
		Format:    cfg.Output.Format,
		Overrides: cfg.Filenames,
	}, log)
	return plan, doc
}

func printReport(r pipeline.Report) {
	fmt.Printf("synthesized %d, skipped %d, failed %d\n", r.Processed, r.Skipped, r.Failed)
	for _, f := range r.Failures {
		fmt.Printf("  FAILED %s: %s\n", f.Title, f.Err)
	}
}

func init() {
	synthesizeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print planned files without synthesizing")
	synthesizeCmd.Flags().BoolVar(&force, "force", false, "resynthesize sections whose audio exists")
	rootCmd.AddCommand(synthesizeCmd)
}
