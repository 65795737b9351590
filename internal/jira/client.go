// Package jira wraps the downstream issue tracker behind the two
// capabilities the conversation core needs: create a ticket from a
// validated descriptor, and search existing tickets.
package jira

import (
	"context"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danbita/jira-cloud-api/internal/config"
	"github.com/danbita/jira-cloud-api/internal/logging"
	"github.com/danbita/jira-cloud-api/pkg/models"
)

// Client handles interactions with the JIRA API.
type Client struct {
	client  *jira.Client
	baseURL string
}

// NewClient creates a new JIRA client from configuration.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Token == "" {
		return nil, fmt.Errorf("jira client requires JIRA_URL, JIRA_USERNAME and JIRA_TOKEN")
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Info("jira client initialized",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token))

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
	}, nil
}

// CreateIssue creates a ticket from a validated issue descriptor. A
// structured failure from the tracker and a transport error are collapsed
// into the same Creation-Failed outcome; the call is never retried.
func (c *Client) CreateIssue(ctx context.Context, d models.IssueDescriptor) models.CreationResult {
	projectKey, err := c.resolveProjectKey(ctx, d.Project)
	if err != nil {
		logging.Error("failed to resolve project", "project", d.Project, "error", err)
		return models.CreationResult{Success: false, Error: err.Error()}
	}

	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: projectKey},
			Summary:     d.Title,
			Description: d.Description,
			Type:        jira.IssueType{Name: d.IssueType},
			Priority:    &jira.Priority{Name: d.Priority},
		},
	}

	created, resp, err := c.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		logging.Error("issue creation failed", "project", projectKey, "status", status, "error", err)
		return models.CreationResult{
			Success: false,
			Error:   fmt.Sprintf("failed to create issue: %v (status: %d)", err, status),
		}
	}

	logging.Info("issue created", "key", created.Key, "project", projectKey)

	return models.CreationResult{
		Success:   true,
		Key:       created.Key,
		URL:       fmt.Sprintf("%s/browse/%s", c.baseURL, created.Key),
		Project:   d.Project,
		Summary:   d.Title,
		IssueType: d.IssueType,
		Priority:  d.Priority,
		Status:    "To Do",
	}
}

// Search runs a free-text search and returns key/summary pairs, possibly
// empty. The query is embedded in JQL with quotes stripped so user input
// can't break out of the clause.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	sanitized := strings.NewReplacer(`"`, "", `\`, "").Replace(query)
	jql := fmt.Sprintf(`text ~ "%s" ORDER BY created DESC`, sanitized)

	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: 10})
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, fmt.Errorf("failed to search issues: %v (status: %d)", err, status)
	}

	results := make([]models.SearchResult, 0, len(issues))
	for _, issue := range issues {
		summary := ""
		if issue.Fields != nil {
			summary = issue.Fields.Summary
		}
		results = append(results, models.SearchResult{Key: issue.Key, Summary: summary})
	}
	return results, nil
}

// resolveProjectKey looks the canonical project name up in the tracker's
// project list. The list is never cached across requests.
func (c *Client) resolveProjectKey(ctx context.Context, name string) (string, error) {
	projects, _, err := c.client.Project.GetListWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list projects: %w", err)
	}

	for _, p := range *projects {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.Key, name) {
			return p.Key, nil
		}
	}
	return "", fmt.Errorf("no project named %q", name)
}
