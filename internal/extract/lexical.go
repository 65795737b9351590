// Package extract implements the parameter resolution pipeline: a
// deterministic lexical extractor, an AI-backed parameter extractor with
// lexical fallback, and the validation/defaulting rules that turn raw
// natural-language input into a schema-valid issue descriptor.
package extract

import (
	"regexp"
	"strings"

	"github.com/danbita/jira-cloud-api/internal/logging"
)

// ExplicitFields holds whatever the deterministic pattern matcher could
// pull out of the raw text. Nil means the pattern family found nothing.
type ExplicitFields struct {
	Project  *string
	Type     *string
	Priority *string
	Title    *string
}

var (
	// Project patterns: "project X" and "X project". Keys are capped at
	// 10 characters so prose never swallows half a sentence.
	projectAfterPattern  = regexp.MustCompile(`(?i)\bproject\s+"?([A-Za-z][A-Za-z0-9_-]{0,9})"?`)
	projectBeforePattern = regexp.MustCompile(`(?i)\b([A-Za-z][A-Za-z0-9_-]{0,9})\s+project\b`)

	// Only the four real issue types match. The generic words "issue" and
	// "ticket" are deliberately not mapped to a type.
	typePattern = regexp.MustCompile(`(?i)\b(bug|task|story|epic)\b`)

	priorityWordPattern = regexp.MustCompile(`(?i)\b([a-z]+)\s+priority\b`)
	urgencyPattern      = regexp.MustCompile(`(?i)\b(urgent|critical|asap|blocker)\b`)

	doubleQuotePattern = regexp.MustCompile(`"([^"]+)"`)
	singleQuotePattern = regexp.MustCompile(`'([^']+)'`)
	calledPattern      = regexp.MustCompile(`(?i)\b(?:called|named|titled)\s+(?:"([^"]+)"|'([^']+)'|([^,.;\n]+))`)

	labeledTitlePattern = regexp.MustCompile(`(?im)\btitle\s*:\s*(?:"([^"]+)"|'([^']+)'|([^\n]+?))(?:\s+(?:issue\s+)?description\s*:|$)`)
	labeledDescPattern  = regexp.MustCompile(`(?i)\b(?:issue\s+)?description\s*:\s*(?:"([^"]+)"|'([^']+)'|([^\n]+))`)

	creationKeywordPattern = regexp.MustCompile(`(?i)\b(create|add|make|new|open|file|report|submit|log)\b`)
	issueNounPattern       = regexp.MustCompile(`(?i)\b(issues?|tickets?|bugs?|tasks?|stor(?:y|ies)|epics?)\b`)
	helpKeywordPattern     = regexp.MustCompile(`(?i)\b(help|hello|hi|hey|thanks|thank you|how do|what can)\b`)
	searchKeywordPattern   = regexp.MustCompile(`(?i)\b(search|find)\b`)
)

// projectStopwords are words that precede "project" in ordinary prose and
// must never be taken for a project key.
var projectStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"my": true, "our": true, "your": true, "new": true, "which": true,
	"what": true, "same": true, "right": true, "with": true, "for": true,
	"in": true, "on": true, "to": true, "is": true, "has": true,
	"should": true, "of": true, "and": true,
}

// problemIndicators and featureIndicators make bare bug reports and
// feature requests count as issue-shaped input even without an explicit
// "create a ticket" phrasing.
var problemIndicators = []string{
	"not working", "doesn't work", "does not work", "isnt working",
	"isn't working", "is broken", "broken", "fails", "failing",
	"error when", "crashes", "crashing", "throws an error",
}

var featureIndicators = []string{
	"feature request", "we need", "we should", "it would be great",
	"should be able to", "add support", "please add",
}

// ExtractExplicit applies the deterministic pattern families in fixed
// priority order (project, type, priority, title). Each family stops at
// its first match: first-match-wins, not best-match.
func ExtractExplicit(text string) ExplicitFields {
	var out ExplicitFields

	if m := projectAfterPattern.FindStringSubmatch(text); m != nil {
		if !projectStopwords[strings.ToLower(m[1])] {
			out.Project = &m[1]
		}
	}
	if out.Project == nil {
		if m := projectBeforePattern.FindStringSubmatch(text); m != nil {
			if !projectStopwords[strings.ToLower(m[1])] {
				out.Project = &m[1]
			}
		}
	}

	if m := typePattern.FindStringSubmatch(text); m != nil {
		if canonical, ok := NormalizeType(m[1]); ok {
			out.Type = &canonical
		}
	}

	if m := priorityWordPattern.FindStringSubmatch(text); m != nil {
		if canonical, ok := NormalizePriority(m[1]); ok {
			out.Priority = &canonical
		}
	}
	if out.Priority == nil {
		if m := urgencyPattern.FindStringSubmatch(text); m != nil {
			if canonical, ok := NormalizePriority(m[1]); ok {
				out.Priority = &canonical
			}
		}
	}

	out.Title = ExtractTitle(text)

	logging.Debug("lexical extraction complete",
		"project", out.Project != nil,
		"type", out.Type != nil,
		"priority", out.Priority != nil,
		"title", out.Title != nil)

	return out
}

// ExtractTitle pulls an explicit title out of the text: a "Title:" label,
// the first quoted substring, or a called/named/titled phrase, in that
// order.
func ExtractTitle(text string) *string {
	if m := labeledTitlePattern.FindStringSubmatch(text); m != nil {
		if v := firstSubmatch(m); v != "" {
			return &v
		}
	}
	if m := doubleQuotePattern.FindStringSubmatch(text); m != nil {
		return &m[1]
	}
	if m := singleQuotePattern.FindStringSubmatch(text); m != nil {
		return &m[1]
	}
	if m := calledPattern.FindStringSubmatch(text); m != nil {
		if v := firstSubmatch(m); v != "" {
			return &v
		}
	}
	return nil
}

// ExtractDescription pulls an explicit description out of the text. The
// literal answers "skip", "none" and "no description" are an explicit
// empty description, which is distinct from no match at all (nil).
func ExtractDescription(text string) *string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "skip", "none", "no description":
		empty := ""
		return &empty
	}
	if m := labeledDescPattern.FindStringSubmatch(text); m != nil {
		if v := firstSubmatch(m); v != "" {
			return &v
		}
	}
	return nil
}

// NormalizeType maps a raw word onto the canonical issue-type vocabulary.
// Only the four real types are accepted; anything else reports ok=false.
func NormalizeType(word string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "bug":
		return "Bug", true
	case "task":
		return "Task", true
	case "story":
		return "Story", true
	case "epic":
		return "Epic", true
	}
	return "", false
}

// NormalizePriority maps a raw word (including urgency synonyms) onto the
// canonical priority vocabulary. Unknown words report ok=false.
func NormalizePriority(word string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "highest", "blocker":
		return "Highest", true
	case "high", "urgent", "critical", "important", "major", "asap":
		return "High", true
	case "medium", "normal", "moderate":
		return "Medium", true
	case "low", "minor":
		return "Low", true
	case "lowest", "trivial":
		return "Lowest", true
	}
	return "", false
}

// DetectsChatIntent reports whether the text is a help/greeting request:
// either it contains a help keyword, or it is a question that mentions no
// issue noun at all.
func DetectsChatIntent(text string) bool {
	if helpKeywordPattern.MatchString(text) {
		return true
	}
	return strings.Contains(text, "?") && !issueNounPattern.MatchString(text)
}

// DetectsSearchIntent reports whether the text asks to search or find
// existing issues. Creation intent wins over search intent.
func DetectsSearchIntent(text string) bool {
	return searchKeywordPattern.MatchString(text) &&
		issueNounPattern.MatchString(text) &&
		!DetectsIssueCreationIntent(text)
}

// DetectsIssueCreationIntent reports whether the text asks for an issue to
// be created: an explicit creation keyword next to an issue noun, or a
// looser issue-shaped pattern (labeled Title:/Description: block, problem
// indicator, or feature-request phrase).
func DetectsIssueCreationIntent(text string) bool {
	if creationKeywordPattern.MatchString(text) && issueNounPattern.MatchString(text) {
		return true
	}
	if labeledTitlePattern.MatchString(text) || labeledDescPattern.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, phrase := range problemIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, phrase := range featureIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// firstSubmatch returns the first non-empty capture group, trimmed.
func firstSubmatch(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}
