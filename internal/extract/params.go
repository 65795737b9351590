package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/danbita/jira-cloud-api/internal/logging"
	"github.com/danbita/jira-cloud-api/pkg/models"
)

// CompletionProvider is the external completion capability the extractor
// delegates to. Implementations may fail; the extractor never lets that
// failure escape.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns free text into a fully-populated ExtractedParameters,
// using the completion capability when available and the lexical patterns
// as a fallback.
type Extractor struct {
	provider CompletionProvider
}

// NewExtractor creates an Extractor backed by the given completion
// provider.
func NewExtractor(provider CompletionProvider) *Extractor {
	return &Extractor{provider: provider}
}

// supplementConfidence is assigned to fields recovered by the lexical
// patterns when the AI path missed them. The deterministic patterns are
// precise for labeled input, so they are treated as equal-trust to a
// genuine extraction.
const supplementConfidence = 0.9

const extractionSystemPrompt = `You extract issue fields from user requests.
Respond with a single JSON object and nothing else, in exactly this shape:

{
  "title": {"value": string or null, "confidence": number},
  "type": {"value": string or null, "confidence": number},
  "project": {"value": string or null, "confidence": number},
  "priority": {"value": string or null, "confidence": number},
  "description": {"value": string or null, "confidence": number}
}

Rules:
- "type" must be exactly one of: Bug, Task, Story, Epic.
- "priority" must be exactly one of: Lowest, Low, Medium, High, Highest.
- "project" is the project name mentioned by the user, verbatim.
- Confidence is a number between 0 and 1. Use null (confidence 0) for
  anything the request does not state. Never invent values.`

// wireField and wireParameters are the JSON shape expected from the
// completion capability. Provenance is assigned here, never by the model.
type wireField struct {
	Value      *string `json:"value"`
	Confidence float64 `json:"confidence"`
}

type wireParameters struct {
	Title       wireField `json:"title"`
	Type        wireField `json:"type"`
	Project     wireField `json:"project"`
	Priority    wireField `json:"priority"`
	Description wireField `json:"description"`
}

var (
	issueDescLabelPattern = regexp.MustCompile(`(?i)\bissue\s+description\s*:`)
	titleLabelPattern     = regexp.MustCompile(`(?i)\btitle\s*:`)
	descLabelPattern      = regexp.MustCompile(`(?i)\bdescription\s*:`)
	codeFencePattern      = regexp.MustCompile("(?m)^```(?:json)?\\s*$")
)

// projectRewriteRule marks a recognizable project mention so the model
// treats it as a project rather than prose.
type projectRewriteRule struct {
	pattern *regexp.Regexp
	replace string
}

// projectRewriteRules is an ordered list; only the first matching rule is
// applied so rewrites never compound.
var projectRewriteRules = []projectRewriteRule{
	{regexp.MustCompile(`(?i)\b(in|for|to)\s+(FV\s+Demo\s*\(Issues\))`), `$1 project [$2]`},
	{regexp.MustCompile(`(?i)\b(in|for|to)\s+(FV\s+Demo\s*\(Product\))`), `$1 project [$2]`},
	{regexp.MustCompile(`(?i)\b(in|for|to)\s+(FV\s+Engineering)`), `$1 project [$2]`},
	{regexp.MustCompile(`(?i)\b(in|for|to)\s+(FV\s+Product)`), `$1 project [$2]`},
	{regexp.MustCompile(`(?i)\b(in|for|to)\s+(?:the\s+)?(engineering|eng|fve|fvdi|fvdp|fvp)\b`), `$1 project [$2]`},
}

// ExtractParameters resolves the five issue fields from raw text. It
// always succeeds: any provider or parse failure degrades to the lexical
// fallback, and the fallback degrades to the canonical all-default
// extraction.
func (e *Extractor) ExtractParameters(ctx context.Context, text string) models.ExtractedParameters {
	if e.provider == nil {
		logging.Debug("no completion provider configured, using lexical fallback")
		return e.lexicalFallback(text)
	}

	prepared := preprocess(text)

	raw, err := e.provider.Complete(ctx, extractionSystemPrompt, prepared)
	if err != nil {
		logging.Warn("completion provider failed, using lexical fallback", "error", err)
		return e.lexicalFallback(text)
	}

	params := toParameters(parseCompletion(raw))
	params = patchFromLexical(text, params)
	params = ValidateParameters(params)
	params = ApplyDefaults(params)
	return params
}

// preprocess normalizes labeled segments and wraps recognizable project
// mentions so the completion capability sees unambiguous markers.
func preprocess(text string) string {
	out := issueDescLabelPattern.ReplaceAllString(text, "Description:")
	out = titleLabelPattern.ReplaceAllString(out, "Title:")
	out = descLabelPattern.ReplaceAllString(out, "Description:")

	for _, rule := range projectRewriteRules {
		if rule.pattern.MatchString(out) {
			out = rule.pattern.ReplaceAllString(out, rule.replace)
			break
		}
	}
	return out
}

// parseCompletion defensively parses the raw completion text: code fences
// are stripped, the first balanced JSON object substring is extracted, and
// any parse failure yields an all-null, zero-confidence result rather
// than an error.
func parseCompletion(raw string) wireParameters {
	var parsed wireParameters

	cleaned := codeFencePattern.ReplaceAllString(raw, "")
	candidate := firstJSONObject(cleaned)
	if candidate == "" {
		logging.Warn("completion contained no JSON object", "length", len(raw))
		return wireParameters{}
	}

	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		logging.Warn("failed to parse completion JSON", "error", err)
		return wireParameters{}
	}
	return parsed
}

// firstJSONObject returns the first balanced {...} substring of s, or ""
// when none exists.
func firstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// toParameters converts the wire shape into ExtractedParameters, assigning
// provenance and enforcing the value/confidence invariant.
func toParameters(w wireParameters) models.ExtractedParameters {
	return models.ExtractedParameters{
		Title:       toField(w.Title),
		Type:        toField(w.Type),
		Project:     toField(w.Project),
		Priority:    toField(w.Priority),
		Description: toField(w.Description),
	}
}

func toField(w wireField) models.ExtractedField {
	if w.Value == nil {
		return models.ExtractedField{Confidence: 0}
	}
	confidence := w.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return models.ExtractedField{
		Value:      w.Value,
		Confidence: confidence,
		Source:     models.SourceAIExtracted,
	}
}

// patchFromLexical splices in title and description values the AI path
// missed when the original text plainly carries a Title: or Description:
// label. Supplemented fields are treated as equal-trust to a genuine
// extraction.
func patchFromLexical(text string, params models.ExtractedParameters) models.ExtractedParameters {
	if params.Title.Value == nil && titleLabelPattern.MatchString(text) {
		if title := ExtractTitle(text); title != nil {
			params.Title = models.ExtractedField{
				Value:      title,
				Confidence: supplementConfidence,
				Source:     models.SourceAIExtracted,
			}
			logging.Debug("patched title from lexical patterns")
		}
	}
	if params.Description.Value == nil && descLabelPattern.MatchString(text) {
		if desc := ExtractDescription(text); desc != nil {
			params.Description = models.ExtractedField{
				Value:      desc,
				Confidence: supplementConfidence,
				Source:     models.SourceAIExtracted,
			}
			logging.Debug("patched description from lexical patterns")
		}
	}
	return params
}

// lexicalFallback builds an extraction from the deterministic patterns
// alone. When even those recover nothing usable, the canonical all-default
// extraction is returned; the downstream required-field check is what
// surfaces the miss to the user.
func (e *Extractor) lexicalFallback(text string) models.ExtractedParameters {
	explicit := ExtractExplicit(text)
	description := ExtractDescription(text)

	if explicit.Title == nil && description == nil {
		return ApplyDefaults(models.ExtractedParameters{})
	}

	params := models.ExtractedParameters{
		Title:       supplementField(explicit.Title),
		Type:        supplementField(explicit.Type),
		Project:     supplementField(explicit.Project),
		Priority:    supplementField(explicit.Priority),
		Description: supplementField(description),
	}
	params = ValidateParameters(params)
	return ApplyDefaults(params)
}

func supplementField(value *string) models.ExtractedField {
	if value == nil {
		return models.ExtractedField{Confidence: 0}
	}
	return models.ExtractedField{
		Value:      value,
		Confidence: supplementConfidence,
		Source:     models.SourceAIExtracted,
	}
}
