// Package models defines data structures shared across the application.
package models

// FieldSource records where an extracted field's value came from.
type FieldSource string

const (
	// SourceAIExtracted marks a value produced by the AI parameter extractor.
	SourceAIExtracted FieldSource = "ai_extracted"

	// SourceUserConfirmed marks a value the user explicitly confirmed.
	SourceUserConfirmed FieldSource = "user_confirmed"

	// SourceFollowUp marks a value collected through a follow-up question.
	SourceFollowUp FieldSource = "follow_up_question"

	// SourceDefault marks a value substituted by the defaulting rules.
	SourceDefault FieldSource = "default"
)

// ExtractedField is a single issue field pulled out of natural-language
// input, together with how certain the extraction is and where the value
// came from.
//
// Invariant: Value == nil implies Confidence == 0.
type ExtractedField struct {
	// Value is the extracted text, or nil when nothing was extracted.
	Value *string `json:"value"`

	// Confidence is the extraction certainty in [0,1].
	Confidence float64 `json:"confidence"`

	// Source records the provenance of the value. It is assigned by the
	// extraction pipeline, never by the completion capability.
	Source FieldSource `json:"source,omitempty"`
}

// ExtractedParameters holds the five fields the extraction pipeline
// resolves for every issue-creation request. After validation and
// defaulting, Type, Project and Priority always carry a value; Title and
// Description may remain nil.
type ExtractedParameters struct {
	Title       ExtractedField `json:"title"`
	Type        ExtractedField `json:"type"`
	Project     ExtractedField `json:"project"`
	Priority    ExtractedField `json:"priority"`
	Description ExtractedField `json:"description"`
}

// IssueDescriptor is the canonical, tracker-ready form of an issue to be
// created. It is built only from an ExtractedParameters instance that has
// passed the required-field check.
type IssueDescriptor struct {
	// Title is the issue summary line.
	Title string `json:"title"`

	// Project is the canonical project name (e.g. "FV Engineering").
	Project string `json:"project"`

	// IssueType is one of Bug, Task, Story or Epic.
	IssueType string `json:"issueType"`

	// Priority is one of Lowest, Low, Medium, High or Highest.
	Priority string `json:"priority"`

	// Description is the issue body. An empty string is a deliberate
	// "no description" and is preserved, not treated as missing.
	Description string `json:"description"`
}

// CreationResult describes the outcome of a ticket-creation call. A
// structured failure from the tracker and a transport error are both
// reported through this shape with Success=false.
type CreationResult struct {
	Success   bool   `json:"success"`
	Key       string `json:"key,omitempty"`
	URL       string `json:"url,omitempty"`
	Project   string `json:"project,omitempty"`
	Summary   string `json:"summary,omitempty"`
	IssueType string `json:"issueType,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SearchResult is one issue returned by the tracker search capability.
type SearchResult struct {
	// Key is the issue identifier (e.g. "FVE-123").
	Key string `json:"key"`

	// Summary is the issue's title line.
	Summary string `json:"summary"`
}

// StringPtr returns a pointer to s. Helper for building ExtractedField
// values and test fixtures.
func StringPtr(s string) *string {
	return &s
}
