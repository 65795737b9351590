// Package conversation implements the turn-based flow controller that
// decides, per user utterance, whether to ask a follow-up question, create
// an issue, search, cancel, or report an error.
package conversation

import "github.com/danbita/jira-cloud-api/pkg/models"

// Step identifies where a conversation stands in the creation flow.
type Step int

const (
	// StepDetectingIntent is the initial state of every conversation.
	StepDetectingIntent Step = iota

	// StepAIExtracting marks a turn running the AI parameter extractor.
	StepAIExtracting

	// StepConfirmingDetails awaits an explicit yes/no on the summary.
	StepConfirmingDetails

	StepAskingProject
	StepAskingType
	StepAskingTitle
	StepAskingDescription
	StepAskingPriority

	// StepReadyToCreate is terminal and triggers creation.
	StepReadyToCreate
)

// String returns the step name for logging.
func (s Step) String() string {
	switch s {
	case StepDetectingIntent:
		return "detecting_intent"
	case StepAIExtracting:
		return "ai_extracting"
	case StepConfirmingDetails:
		return "confirming_details"
	case StepAskingProject:
		return "asking_project"
	case StepAskingType:
		return "asking_type"
	case StepAskingTitle:
		return "asking_title"
	case StepAskingDescription:
		return "asking_description"
	case StepAskingPriority:
		return "asking_priority"
	case StepReadyToCreate:
		return "ready_to_create"
	}
	return "unknown"
}

// IssueDraft is the partially-populated issue under construction. Nil
// means the field has not been collected yet; a pointer to "" is an
// explicit empty value (only meaningful for Description).
type IssueDraft struct {
	Title       *string
	Project     *string
	IssueType   *string
	Priority    *string
	Description *string
}

// State is the per-request conversation state. It is exclusively owned
// and mutated by the Controller for the duration of one request; nothing
// persists it across requests.
type State struct {
	IsCreatingIssue bool
	CurrentStep     Step
	IssueData       IssueDraft
	HasAskedFor     map[string]bool
	Extracted       *models.ExtractedParameters

	// PendingValidation tracks fields whose last answer failed
	// validation and is being re-collected.
	PendingValidation map[string]bool
}

// NewState returns a fresh conversation state in its initial shape.
func NewState() *State {
	return &State{
		CurrentStep:       StepDetectingIntent,
		HasAskedFor:       make(map[string]bool),
		PendingValidation: make(map[string]bool),
	}
}

// Reset clears all creation-in-progress data back to the initial shape.
// It is the only place a conversation's draft is discarded.
func (s *State) Reset() {
	s.IsCreatingIssue = false
	s.CurrentStep = StepDetectingIntent
	s.IssueData = IssueDraft{}
	s.HasAskedFor = make(map[string]bool)
	s.Extracted = nil
	s.PendingValidation = make(map[string]bool)
}
