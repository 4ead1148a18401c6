// Package main is the entry point for the blockedit command.
package main

import (
	"os"

	"github.com/dshills/blockedit/cmd/blockedit/commands"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the commands with color formatting.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
