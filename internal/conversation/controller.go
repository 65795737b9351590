package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/danbita/jira-cloud-api/internal/extract"
	"github.com/danbita/jira-cloud-api/internal/logging"
	"github.com/danbita/jira-cloud-api/pkg/models"
)

// requiredFieldThreshold gates the AI-assisted happy path: title and
// description must each be extracted with at least this confidence before
// an issue is created without follow-up questions. It happens to share
// the value 0.6 with the extract package's defaulting threshold, but the
// two are independent policies and must not be collapsed.
const requiredFieldThreshold = 0.6

var (
	cancellationPattern = regexp.MustCompile(`(?i)\b(cancel|stop|nevermind|never mind|forget it|quit|abort)\b`)
	affirmativePattern  = regexp.MustCompile(`(?i)\b(yes|confirm|create)\b`)
	negativePattern     = regexp.MustCompile(`(?i)\b(no|cancel)\b`)

	searchTokenPattern = regexp.MustCompile(`(?i)\b(search|find|for|issues?|tickets?)\b`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// Controller composes the intent probes, the parameter extractor and the
// traditional per-field flow into a turn-based state machine. It never
// returns an error: every internal failure degrades to the traditional
// flow or to an explicit ErrorAction.
type Controller struct {
	extractor   *extract.Extractor
	hasProvider bool
}

// NewController creates a Controller. A nil provider disables the AI
// path; the controller then runs the deterministic per-field flow.
func NewController(provider extract.CompletionProvider) *Controller {
	return &Controller{
		extractor:   extract.NewExtractor(provider),
		hasProvider: provider != nil,
	}
}

// HandleMessage processes one user utterance against the conversation
// state and returns the next action.
func (c *Controller) HandleMessage(ctx context.Context, st *State, text string) Action {
	if st.IsCreatingIssue {
		return c.continueCreation(st, text)
	}

	if extract.DetectsSearchIntent(text) {
		query := searchQuery(text)
		logging.Info("detected search intent", "query", query)
		return Search{Query: query}
	}
	if extract.DetectsChatIntent(text) {
		logging.Debug("detected conversational intent")
		return RegularChat{}
	}

	return c.beginCreation(ctx, st, text)
}

// beginCreation runs the AI-assisted creation path: extract all five
// fields in one shot, gate on the required-field check, and go straight
// to creation. No confirmation step is required on this path.
func (c *Controller) beginCreation(ctx context.Context, st *State, text string) Action {
	st.IsCreatingIssue = true
	st.CurrentStep = StepAIExtracting

	params, ok := c.runExtraction(ctx, text)
	if !ok {
		return c.startTraditionalFlow(st, text)
	}
	st.Extracted = &params

	if missing := missingRequired(params); len(missing) > 0 {
		st.Reset()
		return ErrorAction{
			Message: fmt.Sprintf(
				"I couldn't determine the %s for this issue. Please rephrase with more detail.",
				strings.Join(missing, " and ")),
		}
	}

	copyExtracted(st, params)
	st.CurrentStep = StepReadyToCreate

	descriptor := BuildDescriptor(st.IssueData)
	logging.Info("issue resolved from single utterance",
		"project", descriptor.Project,
		"type", descriptor.IssueType,
		"priority", descriptor.Priority)
	return CreateIssue{Descriptor: descriptor}
}

// runExtraction invokes the parameter extractor, reporting ok=false when
// no provider is configured or the extractor fails unexpectedly. The
// recover keeps the controller's never-throws contract: an extraction
// panic degrades to the traditional flow instead of escaping.
func (c *Controller) runExtraction(ctx context.Context, text string) (params models.ExtractedParameters, ok bool) {
	if !c.hasProvider {
		return models.ExtractedParameters{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error("parameter extraction panicked", "panic", r)
			ok = false
		}
	}()
	return c.extractor.ExtractParameters(ctx, text), true
}

// missingRequired returns which of title and description fail the
// required-field check: absent value, or confidence strictly below the
// threshold (the boundary itself passes).
func missingRequired(params models.ExtractedParameters) []string {
	var missing []string
	if params.Title.Value == nil || params.Title.Confidence < requiredFieldThreshold {
		missing = append(missing, "title")
	}
	if params.Description.Value == nil || params.Description.Confidence < requiredFieldThreshold {
		missing = append(missing, "description")
	}
	return missing
}

// copyExtracted copies every populated field from the extraction into the
// draft. Defaulted fields are populated, so they are copied too.
func copyExtracted(st *State, params models.ExtractedParameters) {
	if params.Title.Value != nil {
		st.IssueData.Title = params.Title.Value
	}
	if params.Project.Value != nil {
		st.IssueData.Project = params.Project.Value
	}
	if params.Type.Value != nil {
		st.IssueData.IssueType = params.Type.Value
	}
	if params.Priority.Value != nil {
		st.IssueData.Priority = params.Priority.Value
	}
	if params.Description.Value != nil {
		st.IssueData.Description = params.Description.Value
	}
}

// continueCreation handles every turn after the first while a creation is
// in progress: cancellation first, then the confirmation gate, then the
// traditional flow's per-step answer processing.
func (c *Controller) continueCreation(st *State, text string) Action {
	if cancellationPattern.MatchString(text) {
		st.Reset()
		return Cancel{Message: "Okay, I've cancelled the issue creation."}
	}

	if st.CurrentStep == StepConfirmingDetails {
		return c.handleConfirmation(st, text)
	}

	return c.handleFieldAnswer(st, text)
}

// handleConfirmation gates creation on an explicit yes/no. Anything else
// re-prompts.
func (c *Controller) handleConfirmation(st *State, text string) Action {
	if affirmativePattern.MatchString(text) {
		st.CurrentStep = StepReadyToCreate
		descriptor := BuildDescriptor(st.IssueData)
		return CreateIssue{Descriptor: descriptor}
	}
	if negativePattern.MatchString(text) {
		st.Reset()
		return Cancel{Message: "Okay, I won't create the issue."}
	}
	return Continue{Prompt: "Please reply yes to create the issue or no to cancel."}
}

// searchQuery strips the search/find/for/issue(s)/ticket(s) tokens from
// the utterance, leaving the free-text query.
func searchQuery(text string) string {
	query := searchTokenPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
}
