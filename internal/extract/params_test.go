package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a canned completion capability for tests.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtractParametersParsesFencedJSON(t *testing.T) {
	provider := &stubProvider{response: "```json\n" + `{
		"title": {"value": "Login button not working", "confidence": 0.95},
		"type": {"value": "Bug", "confidence": 0.9},
		"project": {"value": "FV Engineering", "confidence": 0.9},
		"priority": {"value": null, "confidence": 0},
		"description": {"value": "Users cannot authenticate", "confidence": 0.9}
	}` + "\n```"}

	params := NewExtractor(provider).ExtractParameters(context.Background(),
		"Create a bug in FV Engineering called 'Login button not working'")

	require.NotNil(t, params.Title.Value)
	assert.Equal(t, "Login button not working", *params.Title.Value)
	assert.Equal(t, "Bug", *params.Type.Value)
	assert.Equal(t, "FV Engineering", *params.Project.Value)
	assert.Equal(t, "Users cannot authenticate", *params.Description.Value)

	// Missing priority is defaulted, not left empty.
	require.NotNil(t, params.Priority.Value)
	assert.Equal(t, "Medium", *params.Priority.Value)
	assert.Equal(t, 1.0, params.Priority.Confidence)
}

func TestExtractParametersSurroundingProse(t *testing.T) {
	provider := &stubProvider{response: `Here is the extraction you asked for:
{"title": {"value": "X", "confidence": 0.8},
 "type": {"value": null, "confidence": 0},
 "project": {"value": null, "confidence": 0},
 "priority": {"value": null, "confidence": 0},
 "description": {"value": null, "confidence": 0}}
Hope that helps!`}

	params := NewExtractor(provider).ExtractParameters(context.Background(), "make a thing")

	require.NotNil(t, params.Title.Value)
	assert.Equal(t, "X", *params.Title.Value)
}

func TestExtractParametersUnparseableCompletion(t *testing.T) {
	provider := &stubProvider{response: "I'm sorry, I can't help with that."}

	params := NewExtractor(provider).ExtractParameters(context.Background(), "do something")

	assert.Nil(t, params.Title.Value)
	assert.Nil(t, params.Description.Value)
	// Categorical fields still come back populated with defaults.
	assert.Equal(t, "Bug", *params.Type.Value)
	assert.Equal(t, "FV Demo (Issues)", *params.Project.Value)
	assert.Equal(t, "Medium", *params.Priority.Value)
}

func TestExtractParametersPatchesLabeledFields(t *testing.T) {
	// The model returns null title/description even though the text
	// plainly labels both; the lexical patterns splice them in.
	provider := &stubProvider{response: `{
		"title": {"value": null, "confidence": 0},
		"type": {"value": "Bug", "confidence": 0.9},
		"project": {"value": null, "confidence": 0},
		"priority": {"value": null, "confidence": 0},
		"description": {"value": null, "confidence": 0}}`}

	params := NewExtractor(provider).ExtractParameters(context.Background(),
		"Title: 'Campaign not being created' Issue Description: 'validation on last step isnt working'")

	require.NotNil(t, params.Title.Value)
	assert.Equal(t, "Campaign not being created", *params.Title.Value)
	assert.Equal(t, supplementConfidence, params.Title.Confidence)

	require.NotNil(t, params.Description.Value)
	assert.Equal(t, "validation on last step isnt working", *params.Description.Value)
	assert.Equal(t, supplementConfidence, params.Description.Confidence)
}

func TestExtractParametersProviderFailureFallsBackToLexical(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}

	params := NewExtractor(provider).ExtractParameters(context.Background(),
		"Title: 'Campaign not being created' Issue Description: 'validation on last step isnt working'")

	require.NotNil(t, params.Title.Value)
	assert.Equal(t, "Campaign not being created", *params.Title.Value)
	require.NotNil(t, params.Description.Value)
	assert.Equal(t, "validation on last step isnt working", *params.Description.Value)
	assert.GreaterOrEqual(t, params.Title.Confidence, 0.6)
	assert.GreaterOrEqual(t, params.Description.Confidence, 0.6)

	// Defaults still applied on the fallback path.
	assert.Equal(t, "Medium", *params.Priority.Value)
}

func TestExtractParametersTotalFailureYieldsAllDefaults(t *testing.T) {
	provider := &stubProvider{err: errors.New("timeout")}

	params := NewExtractor(provider).ExtractParameters(context.Background(), "hm")

	assert.Nil(t, params.Title.Value)
	assert.Nil(t, params.Description.Value)
	assert.Equal(t, "Bug", *params.Type.Value)
	assert.Equal(t, "FV Demo (Issues)", *params.Project.Value)
	assert.Equal(t, "Medium", *params.Priority.Value)
}

func TestExtractParametersNilProviderUsesLexicalFallback(t *testing.T) {
	params := NewExtractor(nil).ExtractParameters(context.Background(),
		"Create a bug called 'API Error'")

	require.NotNil(t, params.Title.Value)
	assert.Equal(t, "API Error", *params.Title.Value)
	assert.Equal(t, "Bug", *params.Type.Value)
}

func TestPreprocessProjectRewriteFirstMatchWins(t *testing.T) {
	provider := &stubProvider{response: `{}`}
	NewExtractor(provider).ExtractParameters(context.Background(),
		"Create a bug in FV Engineering for eng about login")

	require.Len(t, provider.prompts, 1)
	// Only the first matching rewrite rule fires.
	assert.Contains(t, provider.prompts[0], "[FV Engineering]")
	assert.NotContains(t, provider.prompts[0], "[eng]")
}

func TestFirstJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, firstJSONObject(`noise {"a": {"b": 1}} trailing`))
	assert.Equal(t, `{"s": "brace } inside"}`, firstJSONObject(`{"s": "brace } inside"}`))
	assert.Equal(t, "", firstJSONObject("no object here"))
	assert.Equal(t, "", firstJSONObject("{unbalanced"))
}
