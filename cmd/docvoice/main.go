// Package main provides the docvoice CLI.
//
// Usage:
//
//	docvoice [flags] <command> [args]
//
// Commands:
//
//	synthesize - Narrate a markdown script (or any supported document)
//	ppt        - Narrate the speaker notes of a PowerPoint deck
//	voices     - List the voices of the configured backend
//	serve      - Run docvoice as an HTTP service
package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docvoice/cmd/docvoice/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
