package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var voicesOutput string

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices of the configured backend",
	Long: `Fetch the voice catalogue of the configured synthesis backend.

Prints a table by default; use --output to save the catalogue as JSON.

Example:
  docvoice voices --service azure --output voices.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := buildSynth()
		if err != nil {
			return err
		}
		voices, err := synth.Voices(cmd.Context())
		if err != nil {
			return err
		}

		if voicesOutput != "" {
			data, err := json.MarshalIndent(voices, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(voicesOutput, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d voices to %s\n", len(voices), voicesOutput)
			return nil
		}

		fmt.Printf("%-24s %-32s %-12s %-10s %s\n", "NAME", "ID", "CATEGORY", "LOCALE", "GENDER")
		for _, v := range voices {
			fmt.Printf("%-24s %-32s %-12s %-10s %s\n", v.Name, v.ID, v.Category, v.Locale, v.Gender)
		}
		return nil
	},
}

func init() {
	voicesCmd.Flags().StringVar(&voicesOutput, "output", "", "save catalogue as JSON to this file")
	rootCmd.AddCommand(voicesCmd)
}
