package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danbita/jira-cloud-api/internal/config"
	"github.com/danbita/jira-cloud-api/internal/conversation"
	"github.com/danbita/jira-cloud-api/internal/extract"
	"github.com/danbita/jira-cloud-api/internal/jira"
	"github.com/danbita/jira-cloud-api/internal/llm"
	"github.com/danbita/jira-cloud-api/internal/logging"
)

// chatCmd runs an interactive session in the terminal. Unlike the HTTP
// endpoint, it keeps one conversation state across turns, so the
// per-field follow-up flow and the confirmation step are usable here.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	Long: `Start an interactive session. Type requests like:

  Create a bug in FV Engineering called "Login button not working"
  search for issues about login

Type "exit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.ValidateJiraConfig(cfg); err != nil {
			return err
		}

		var provider extract.CompletionProvider
		if client, err := llm.NewClient(cfg.OpenAI); err != nil {
			logging.Warn("AI extraction disabled", "reason", err)
		} else {
			provider = client
		}

		jiraClient, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return err
		}

		controller := conversation.NewController(provider)
		state := conversation.NewState()
		ctx := context.Background()

		fmt.Println("Issue assistant ready. Type a request, or \"exit\" to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.EqualFold(line, "exit") {
				break
			}

			action := controller.HandleMessage(ctx, state, line)
			switch a := action.(type) {
			case conversation.Continue:
				fmt.Println(a.Prompt)

			case conversation.CreateIssue:
				result := jiraClient.CreateIssue(ctx, a.Descriptor)
				if result.Success {
					fmt.Printf("Created %s: %s\n%s\n", result.Key, result.Summary, result.URL)
				} else {
					fmt.Printf("Couldn't create the issue: %s\n", result.Error)
				}
				state.Reset()

			case conversation.Search:
				results, err := jiraClient.Search(ctx, a.Query)
				if err != nil {
					fmt.Printf("Search failed: %v\n", err)
					continue
				}
				if len(results) == 0 {
					fmt.Printf("No issues found for %q.\n", a.Query)
					continue
				}
				for _, r := range results {
					fmt.Printf("  %s  %s\n", r.Key, r.Summary)
				}

			case conversation.Cancel:
				fmt.Println(a.Message)

			case conversation.RegularChat:
				fmt.Println("I can create and search issues. Describe the issue you want to file.")

			case conversation.ErrorAction:
				fmt.Println(a.Message)
			}
		}
		return scanner.Err()
	},
}
