package conversation

import "github.com/danbita/jira-cloud-api/pkg/models"

// Action is the controller's per-turn decision. It is a closed sum: each
// concrete type carries only the payload that makes sense for its tag, so
// illegal combinations are unrepresentable.
type Action interface {
	isAction()
}

// Continue asks the user a follow-up question and keeps the conversation
// open.
type Continue struct {
	Prompt string
}

// CreateIssue instructs the caller to create the fully-resolved issue.
type CreateIssue struct {
	Descriptor models.IssueDescriptor
}

// Search instructs the caller to run an issue search with the given
// query.
type Search struct {
	Query string
}

// Cancel reports that the user abandoned the creation flow.
type Cancel struct {
	Message string
}

// RegularChat marks conversational/help input that is not an issue
// request at all.
type RegularChat struct{}

// ErrorAction carries a user-facing error message. The conversation state
// has already been reset when this is returned.
type ErrorAction struct {
	Message string
}

func (Continue) isAction()    {}
func (CreateIssue) isAction() {}
func (Search) isAction()      {}
func (Cancel) isAction()      {}
func (RegularChat) isAction() {}
func (ErrorAction) isAction() {}
