package conversation

import (
	"fmt"
	"strings"

	"github.com/danbita/jira-cloud-api/internal/extract"
	"github.com/danbita/jira-cloud-api/internal/logging"
)

// fieldOrder is the fixed priority in which the traditional flow collects
// unanswered fields, one question per turn.
var fieldOrder = []string{"project", "type", "title", "description", "priority"}

var fieldSteps = map[string]Step{
	"project":     StepAskingProject,
	"type":        StepAskingType,
	"title":       StepAskingTitle,
	"description": StepAskingDescription,
	"priority":    StepAskingPriority,
}

var fieldPrompts = map[string]string{
	"project":     "Which project should this issue go in? (FV Demo (Issues), FV Demo (Product), FV Engineering, FV Product)",
	"type":        "What type of issue is this? (Bug, Task, Story, Epic)",
	"title":       "What should the issue title be?",
	"description": "Please describe the issue. (Reply \"skip\" for no description.)",
	"priority":    "What priority should this issue have? (Lowest, Low, Medium, High, Highest)",
}

// startTraditionalFlow is the deterministic fallback used when the AI
// path is unavailable: seed the draft from the lexical patterns, then ask
// for the remaining fields one at a time.
func (c *Controller) startTraditionalFlow(st *State, text string) Action {
	logging.Info("falling back to traditional per-field flow")
	st.CurrentStep = StepDetectingIntent
	seedFromLexical(st, text)
	return c.askNextField(st)
}

// seedFromLexical fills the draft with whatever the deterministic
// patterns can pull out of the original utterance, so already-known
// fields are never asked for.
func seedFromLexical(st *State, text string) {
	explicit := extract.ExtractExplicit(text)

	if explicit.Project != nil {
		if canonical, ok := extract.ResolveProject(*explicit.Project); ok {
			st.IssueData.Project = &canonical
		}
	}
	if explicit.Type != nil {
		st.IssueData.IssueType = explicit.Type
	}
	if explicit.Priority != nil {
		st.IssueData.Priority = explicit.Priority
	}
	if explicit.Title != nil {
		st.IssueData.Title = explicit.Title
	}
	if desc := extract.ExtractDescription(text); desc != nil {
		st.IssueData.Description = desc
	}
}

// askNextField advances to the first unanswered field in the fixed order,
// or to the confirmation summary once everything is known.
func (c *Controller) askNextField(st *State) Action {
	for _, field := range fieldOrder {
		if fieldKnown(st, field) {
			continue
		}
		st.CurrentStep = fieldSteps[field]
		prompt := fieldPrompts[field]
		if st.HasAskedFor[field] {
			prompt = "I still need this. " + prompt
		}
		st.HasAskedFor[field] = true
		return Continue{Prompt: prompt}
	}

	st.CurrentStep = StepConfirmingDetails
	return Continue{Prompt: summaryPrompt(st)}
}

// handleFieldAnswer validates the utterance against the currently-asked
// field's expected shape, stores it, and advances.
func (c *Controller) handleFieldAnswer(st *State, text string) Action {
	answer := strings.TrimSpace(text)

	switch st.CurrentStep {
	case StepAskingProject:
		canonical, ok := extract.ResolveProject(answer)
		if !ok {
			st.PendingValidation["project"] = true
			return Continue{Prompt: "I don't recognize that project. " + fieldPrompts["project"]}
		}
		delete(st.PendingValidation, "project")
		st.IssueData.Project = &canonical

	case StepAskingType:
		canonical, ok := extract.NormalizeType(answer)
		if !ok {
			st.PendingValidation["type"] = true
			return Continue{Prompt: "That's not a type I know. " + fieldPrompts["type"]}
		}
		delete(st.PendingValidation, "type")
		st.IssueData.IssueType = &canonical

	case StepAskingTitle:
		if answer == "" {
			return Continue{Prompt: fieldPrompts["title"]}
		}
		st.IssueData.Title = &answer

	case StepAskingDescription:
		if desc := extract.ExtractDescription(answer); desc != nil {
			st.IssueData.Description = desc
		} else {
			st.IssueData.Description = &answer
		}

	case StepAskingPriority:
		canonical, ok := extract.NormalizePriority(answer)
		if !ok {
			st.PendingValidation["priority"] = true
			return Continue{Prompt: "That's not a priority I know. " + fieldPrompts["priority"]}
		}
		delete(st.PendingValidation, "priority")
		st.IssueData.Priority = &canonical

	default:
		// Unexpected step while creating; resume the question loop.
		logging.Warn("field answer received in unexpected step", "step", st.CurrentStep.String())
	}

	return c.askNextField(st)
}

// fieldKnown reports whether the draft already carries the field. An
// explicit empty description counts as known.
func fieldKnown(st *State, field string) bool {
	switch field {
	case "project":
		return st.IssueData.Project != nil
	case "type":
		return st.IssueData.IssueType != nil
	case "title":
		return st.IssueData.Title != nil
	case "description":
		return st.IssueData.Description != nil
	case "priority":
		return st.IssueData.Priority != nil
	}
	return false
}

// summaryPrompt renders the confirmation summary shown before creation.
func summaryPrompt(st *State) string {
	d := BuildDescriptor(st.IssueData)
	description := d.Description
	if description == "" {
		description = "(none)"
	}
	return fmt.Sprintf(
		"Here's what I'll create:\n"+
			"  Project: %s\n"+
			"  Type: %s\n"+
			"  Title: %s\n"+
			"  Priority: %s\n"+
			"  Description: %s\n"+
			"Shall I create it? (yes/no)",
		d.Project, d.IssueType, d.Title, d.Priority, description)
}
