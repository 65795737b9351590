package extract

import (
	"strings"

	"github.com/danbita/jira-cloud-api/pkg/models"
)

// Canonical vocabularies and defaults for the three closed-vocabulary
// fields. These are process-wide constant data; nothing mutates them and
// nothing caches derived project lists across requests.
const (
	DefaultType     = "Bug"
	DefaultProject  = "FV Demo (Issues)"
	DefaultPriority = "Medium"
)

// defaultingThreshold is the confidence below which a categorical field
// (type, project, priority) is replaced by its default. It shares the
// value 0.6 with the required-field threshold in the conversation
// package, but the two are independent policies and stay separate.
const defaultingThreshold = 0.6

var validTypes = map[string]bool{
	"Bug": true, "Task": true, "Story": true, "Epic": true,
}

var validPriorities = map[string]bool{
	"Lowest": true, "Low": true, "Medium": true, "High": true, "Highest": true,
}

// projectAliases maps lowercase synonyms to canonical project names. The
// ambiguous bare tokens "product" and "fv" are deliberately absent: they
// fall through to the default project rather than guessing.
var projectAliases = map[string]string{
	"fv demo (issues)":  "FV Demo (Issues)",
	"fv demo issues":    "FV Demo (Issues)",
	"demo issues":       "FV Demo (Issues)",
	"demo":              "FV Demo (Issues)",
	"issues":            "FV Demo (Issues)",
	"fvdi":              "FV Demo (Issues)",
	"fv demo (product)": "FV Demo (Product)",
	"fv demo product":   "FV Demo (Product)",
	"demo product":      "FV Demo (Product)",
	"fvdp":              "FV Demo (Product)",
	"fv engineering":    "FV Engineering",
	"engineering":       "FV Engineering",
	"eng":               "FV Engineering",
	"fve":               "FV Engineering",
	"fv product":        "FV Product",
	"fvp":               "FV Product",
}

// canonicalProjects is the second-pass verbatim list.
var canonicalProjects = []string{
	"FV Demo (Issues)",
	"FV Demo (Product)",
	"FV Engineering",
	"FV Product",
}

// NormalizeTypeField validates an extracted type against the closed
// vocabulary. Any non-member, including a nil value, becomes the default
// Bug with full confidence and default provenance.
func NormalizeTypeField(f models.ExtractedField) models.ExtractedField {
	if f.Value != nil && validTypes[*f.Value] {
		return f
	}
	return defaultField(DefaultType)
}

// NormalizePriorityField validates an extracted priority against the
// closed vocabulary, defaulting to Medium for any non-member.
func NormalizePriorityField(f models.ExtractedField) models.ExtractedField {
	if f.Value != nil && validPriorities[*f.Value] {
		return f
	}
	return defaultField(DefaultPriority)
}

// ResolveProject maps a raw project mention onto one of the four canonical
// project names. Resolution is case-insensitive against the alias table,
// then against the canonical names verbatim. Anything unmatched resolves
// to the default project: an unresolvable name must never reach the
// creation step.
func ResolveProject(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := projectAliases[key]; ok {
		return canonical, true
	}
	for _, name := range canonicalProjects {
		if strings.EqualFold(name, strings.TrimSpace(raw)) {
			return name, true
		}
	}
	return DefaultProject, false
}

// NormalizeProjectField resolves an extracted project mention, defaulting
// when the mention is absent or unresolvable.
func NormalizeProjectField(f models.ExtractedField) models.ExtractedField {
	if f.Value == nil {
		return defaultField(DefaultProject)
	}
	canonical, ok := ResolveProject(*f.Value)
	if !ok {
		return defaultField(DefaultProject)
	}
	f.Value = &canonical
	return f
}

// ValidateParameters runs all three categorical fields through their
// normalizers. Title and description pass through untouched.
func ValidateParameters(params models.ExtractedParameters) models.ExtractedParameters {
	params.Type = NormalizeTypeField(params.Type)
	params.Priority = NormalizePriorityField(params.Priority)
	params.Project = NormalizeProjectField(params.Project)
	return params
}

// ApplyDefaults substitutes the default value for any categorical field
// whose value is absent or whose confidence sits below the defaulting
// threshold. It is unconditional for type, project and priority, and
// idempotent: a field that is already a default stays a default.
func ApplyDefaults(params models.ExtractedParameters) models.ExtractedParameters {
	if needsDefault(params.Type) {
		params.Type = defaultField(DefaultType)
	}
	if needsDefault(params.Project) {
		params.Project = defaultField(DefaultProject)
	}
	if needsDefault(params.Priority) {
		params.Priority = defaultField(DefaultPriority)
	}
	return params
}

func needsDefault(f models.ExtractedField) bool {
	return f.Value == nil || f.Confidence < defaultingThreshold
}

func defaultField(value string) models.ExtractedField {
	return models.ExtractedField{
		Value:      &value,
		Confidence: 1.0,
		Source:     models.SourceDefault,
	}
}
