// Package main is the entry point for the automationctl CLI.
package main

import (
	"os"

	"github.com/execution-hub/repo-automation/cmd/automationctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
