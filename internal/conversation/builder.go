package conversation

import (
	"fmt"

	"github.com/danbita/jira-cloud-api/pkg/models"
)

// BuildDescriptor maps a completed draft onto the canonical issue
// descriptor. Description passes through verbatim: an explicit empty
// string stays empty rather than becoming "not provided".
func BuildDescriptor(draft IssueDraft) models.IssueDescriptor {
	return models.IssueDescriptor{
		Title:       deref(draft.Title),
		Project:     deref(draft.Project),
		IssueType:   deref(draft.IssueType),
		Priority:    deref(draft.Priority),
		Description: deref(draft.Description),
	}
}

// BuildInstruction renders a human-readable creation instruction for the
// downstream capability, which may consume either this or the structured
// descriptor.
func BuildInstruction(d models.IssueDescriptor) string {
	instruction := fmt.Sprintf("Create a %s titled %q in project %q with %s priority.",
		d.IssueType, d.Title, d.Project, d.Priority)
	if d.Description != "" {
		instruction += fmt.Sprintf(" Description: %s", d.Description)
	}
	return instruction
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
