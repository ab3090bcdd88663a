package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/christopherklint97/hourly/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew_MissingKeyIsNotConfigured(t *testing.T) {
	for _, provider := range []string{"gemini", "openai", ""} {
		_, err := New(context.Background(), config.AIConfig{Provider: provider}, nil)
		assert.ErrorIs(t, err, ErrNotConfigured, provider)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	p, err := New(context.Background(), config.AIConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o", p.Name())

	p, err = New(context.Background(), config.AIConfig{Provider: "claude-cli", Model: "gemini-2.0-flash"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-cli:sonnet", p.Name())

	_, err = New(context.Background(), config.AIConfig{Provider: "llama"}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestNew_DefaultConfigModelPerProvider(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "DATABASE_URL", "SUPABASE_URL", "SUPABASE_ANON_KEY", "PORT", "HOURLY_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	load := func(provider string) config.AIConfig {
		t.Setenv("HOURLY_AI_PROVIDER", provider)
		cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.NoError(t, err)
		return cfg.AI
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	p, err := New(context.Background(), load("openai"), nil)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", p.Name())

	t.Setenv("GEMINI_API_KEY", "g-test")
	p, err = New(context.Background(), load("gemini"), nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini:gemini-2.0-flash", p.Name())

	p, err = New(context.Background(), load("claude-cli"), nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-cli:sonnet", p.Name())
}

func TestGeminiSafety(t *testing.T) {
	assert.Nil(t, geminiSafety(SafetyDefault))

	settings := geminiSafety(SafetyModerate)
	require.Len(t, settings, 4)
	for _, s := range settings {
		assert.Equal(t, genai.HarmBlockThresholdBlockMediumAndAbove, s.Threshold)
	}
	assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, geminiSafety(SafetyLow)[0].Threshold)
}

func TestUnwrapEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "structured output preferred",
			in:   `{"type":"result","result":"ignored","structured_output":{"a":1}}`,
			want: `{"a":1}`,
		},
		{
			name: "result string",
			in:   `{"type":"result","result":"{\"a\":2}"}`,
			want: `{"a":2}`,
		},
		{
			name: "result object",
			in:   `{"type":"result","result":{"a":3}}`,
			want: `{"a":3}`,
		},
		{
			name: "bare model output",
			in:   `{"project_id":"p1"}`,
			want: `{"project_id":"p1"}`,
		},
		{
			name: "not json",
			in:   "plain text",
			want: "plain text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapEnvelope([]byte(tt.in), discard))
		})
	}
}

func TestSchemaJSON(t *testing.T) {
	type sample struct {
		Name  string  `json:"name"`
		Hours float64 `json:"hours,omitempty"`
	}

	out, err := schemaJSON(sample{})
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "hours")
}
