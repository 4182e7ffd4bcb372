package template

import (
	"testing"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunContext(t *testing.T) *models.RunContext {
	t.Helper()

	rc := models.NewRunContext("exec-1", "wf-1",
		map[string]any{"region": "us-east-1", "threshold": 0.8},
		map[string]any{"name": "alice", "jobs": []any{"a", "b"}},
	)

	err := rc.SetOutput("analyze", map[string]any{
		"score":    0.92,
		"verdict":  "pass",
		"metadata": map[string]any{"model": "m1"},
	})
	require.NoError(t, err)

	return rc
}

func TestRender(t *testing.T) {
	rc := testRunContext(t)

	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{
			name:     "no tokens",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "whole string token keeps type",
			input:    "{{analyze.score}}",
			expected: 0.92,
		},
		{
			name:     "embedded token stringifies",
			input:    "score is {{analyze.score}}",
			expected: "score is 0.92",
		},
		{
			name:     "trigger payload path",
			input:    "{{trigger.name}}",
			expected: "alice",
		},
		{
			name:     "nested path",
			input:    "{{analyze.metadata.model}}",
			expected: "m1",
		},
		{
			name:     "variable token",
			input:    "{{$region}}",
			expected: "us-east-1",
		},
		{
			name:     "unresolvable token renders empty",
			input:    "value: {{missing.path}}",
			expected: "value: ",
		},
		{
			name:     "multiple tokens",
			input:    "{{trigger.name}}/{{analyze.verdict}}",
			expected: "alice/pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Render(tt.input, rc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRender_UnterminatedToken(t *testing.T) {
	rc := testRunContext(t)

	_, err := Render("broken {{analyze.score", rc)
	require.Error(t, err)
}

func TestRender_WholeStringMapToken(t *testing.T) {
	rc := testRunContext(t)

	result, err := Render("{{analyze.metadata}}", rc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model": "m1"}, result)
}

func TestRenderConfig(t *testing.T) {
	rc := testRunContext(t)

	config := map[string]any{
		"url":   "https://api.example.com/{{trigger.name}}",
		"limit": 10,
		"nested": map[string]any{
			"verdict": "{{analyze.verdict}}",
		},
		"list": []any{"{{$region}}", "static"},
	}

	rendered, err := RenderConfig(config, rc)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/alice", rendered["url"])
	assert.Equal(t, 10, rendered["limit"])
	assert.Equal(t, map[string]any{"verdict": "pass"}, rendered["nested"])
	assert.Equal(t, []any{"us-east-1", "static"}, rendered["list"])

	// Input config is untouched.
	assert.Equal(t, "https://api.example.com/{{trigger.name}}", config["url"])
}

func TestRenderConfig_PropagatesScanError(t *testing.T) {
	rc := testRunContext(t)

	_, err := RenderConfig(map[string]any{"bad": "{{oops"}, rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `config field "bad"`)
}

func TestEvaluateCondition(t *testing.T) {
	rc := testRunContext(t)

	tests := []struct {
		name     string
		expr     string
		expected bool
	}{
		{"numeric greater than", "{{analyze.score}} > 0.5", true},
		{"numeric less than", "{{analyze.score}} < 0.5", false},
		{"numeric gte", "{{analyze.score}} >= 0.92", true},
		{"string equality", "{{analyze.verdict}} == pass", true},
		{"quoted string equality", `{{analyze.verdict}} == "pass"`, true},
		{"inequality", "{{analyze.verdict}} != fail", true},
		{"contains", `"us-east-1" contains "east"`, true},
		{"variable against literal", "$threshold < 0.9", true},
		{"bare path operand truthiness", "analyze.verdict", true},
		{"missing path is falsy", "missing.path", false},
		{"boolean literal", "true", true},
		{"non-empty list is truthy", "trigger.jobs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateCondition(tt.expr, rc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateCondition_Errors(t *testing.T) {
	rc := testRunContext(t)

	tests := []struct {
		name string
		expr string
	}{
		{"empty expression", ""},
		{"ordering on non-numeric", "{{analyze.verdict}} > 1"},
		{"contains on non-string", "{{analyze.score}} contains pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateCondition(tt.expr, rc)
			require.Error(t, err)
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"zero float", float64(0), false},
		{"nonzero int", 3, true},
		{"empty string", "", false},
		{"string false", "false", false},
		{"plain string", "hello", true},
		{"empty list", []any{}, false},
		{"nonempty map", map[string]any{"k": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.value))
		})
	}
}
