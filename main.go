// Package main is the entry point for the issue assistant.
package main

import (
	"fmt"
	"os"

	"github.com/danbita/jira-cloud-api/cmd"
	"github.com/danbita/jira-cloud-api/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
