// Package cmd provides the command-line interface for the issue
// assistant.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jira-cloud-api",
	Short: "Natural-language issue creation for Jira Cloud",
	Long: `jira-cloud-api turns free-text requests into Jira tickets.

It resolves a request like "Create a bug in FV Engineering called 'Login
button not working'" into a fully-populated issue (title, project, type,
priority, description), asking follow-up questions only when the request
leaves a required field unresolved. Run it as an HTTP service with
"serve", or interactively with "chat".`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}
