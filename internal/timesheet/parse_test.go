package timesheet

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/hourly/internal/store"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
		check   func(t *testing.T, s *suggestion)
	}{
		{
			name: "bare object",
			raw:  `{"project_id":"proj-1","hours":3}`,
			check: func(t *testing.T, s *suggestion) {
				assert.Equal(t, text("proj-1"), s.ProjectID)
				assert.Equal(t, number{Value: 3, Valid: true}, s.Hours)
			},
		},
		{
			name: "fenced with prose",
			raw:  "Sure thing.\n```JSON\n{\"project_name\": \"Alpha\"}\n```\nAnything else?",
			check: func(t *testing.T, s *suggestion) {
				assert.Equal(t, text("Alpha"), s.ProjectName)
			},
		},
		{
			name: "loose scalar types",
			raw:  `{"project_id":42,"job_number":true,"hours":"2","possible_options":null}`,
			check: func(t *testing.T, s *suggestion) {
				assert.Equal(t, text("42"), s.ProjectID)
				assert.Equal(t, text("true"), s.JobNumber)
				assert.False(t, s.Hours.Valid)
				assert.Empty(t, s.PossibleOptions)
			},
		},
		{name: "plain text", raw: "This is not JSON", wantMsg: MsgInvalidFormat},
		{name: "array", raw: `[{"project_id":"proj-1"}]`, wantMsg: MsgInvalidFormat},
		{name: "truncated object", raw: `{"project_id":"proj-1"`, wantMsg: MsgInvalidFormat},
		{name: "fence without json tag", raw: "```\n{\"a\":1}\n```", wantMsg: MsgInvalidFormat},
		{name: "broken fenced json", raw: "```json\n{project_id: proj-1}\n```", wantMsg: MsgInvalidAfterStrip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseSuggestion(tt.raw)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindFormat))
				assert.Equal(t, tt.wantMsg, AsError(err).Message)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(PromptContext{
		Today: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		Input: `2h on "Alpha" review`,
		Projects: []store.Project{
			{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001", ClientName: "Client A"},
			{ID: "proj-2", Name: "Internal"},
		},
		RecentEntries: []store.RecentEntry{
			{ProjectName: "Project Alpha", Hours: 1.5, Description: "planning", Date: "2026-10-15"},
		},
	})

	assert.Contains(t, prompt, "Current date: 2026-10-16 (Friday)")
	assert.Contains(t, prompt, `User input: "2h on \"Alpha\" review"`)
	assert.NotContains(t, prompt, "Preselected project ID")
	assert.Contains(t, prompt, "- ID: proj-1, Name: Project Alpha, Job Number: JOB-001, Client: Client A")
	assert.Contains(t, prompt, "- ID: proj-2, Name: Internal, Job Number: N/A, Client: N/A")
	assert.Contains(t, prompt, "Hours: 1.5, Description: planning")
	for _, field := range []string{"project_id", "project_name", "job_number", "hours", "date", "billable", "description", "task_type", "clarification_needed", "clarification_question", "possible_options"} {
		assert.Contains(t, prompt, "- "+field+":", field)
	}
	assert.True(t, strings.HasSuffix(prompt, "Do not include any other text, explanation or markdown."))
}

func TestBuildPrompt_Empty(t *testing.T) {
	prompt := BuildPrompt(PromptContext{Today: fixedNow, Input: "x", PreselectedProjectID: "proj-9"})

	assert.Contains(t, prompt, "Available projects:\n- (none)")
	assert.Contains(t, prompt, "Recent timesheet entries (most recent first):\n- (none)")
	assert.Contains(t, prompt, "Preselected project ID: proj-9")
}
