package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danbita/jira-cloud-api/internal/config"
	"github.com/danbita/jira-cloud-api/internal/conversation"
	"github.com/danbita/jira-cloud-api/internal/extract"
	"github.com/danbita/jira-cloud-api/internal/jira"
	"github.com/danbita/jira-cloud-api/internal/llm"
	"github.com/danbita/jira-cloud-api/internal/logging"
	"github.com/danbita/jira-cloud-api/internal/server"
)

// serveCmd runs the HTTP chat endpoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	Long: `Start the HTTP server exposing POST /api/chat and GET /health.

Each request carries one user message and is handled statelessly: the
server runs a single conversation turn, creates or searches issues as
decided, and responds. Requires JIRA_URL, JIRA_USERNAME and JIRA_TOKEN.
Without OPENAI_API_KEY the AI extraction path is disabled and the
deterministic fallback flow is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.ValidateJiraConfig(cfg); err != nil {
			return err
		}

		var provider extract.CompletionProvider
		if err := config.ValidateOpenAIConfig(cfg); err != nil {
			logging.Warn("AI extraction disabled", "reason", err)
		} else {
			client, err := llm.NewClient(cfg.OpenAI)
			if err != nil {
				logging.Warn("AI extraction disabled", "reason", err)
			} else {
				provider = client
			}
		}

		jiraClient, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return err
		}

		controller := conversation.NewController(provider)
		srv := server.New(controller, jiraClient, cfg.Server.AllowedOrigins)
		return srv.Run(cfg.Server.Port)
	},
}
