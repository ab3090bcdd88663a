package timesheet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/hourly/internal/store"
)

var (
	projAlpha = store.Project{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001", ClientName: "Client A"}
	projBeta  = store.Project{ID: "proj-2", Name: "Beta Redesign"}
	projGamma = store.Project{ID: "proj-3", Name: "Gamma", JobNumber: "JOB-003"}
)

func mustSuggestion(t *testing.T, raw string) *suggestion {
	t.Helper()
	s, err := parseSuggestion(raw)
	require.NoError(t, err)
	return s
}

func TestResolveProject(t *testing.T) {
	ix := newProjectIndex([]store.Project{projAlpha, projBeta, projGamma})

	tests := []struct {
		name        string
		raw         string
		preselected string
		want        projectRef
	}{
		{
			name: "known id fills blanks",
			raw:  `{"project_id":"proj-1"}`,
			want: projectRef{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001"},
		},
		{
			name: "model values win for the same project",
			raw:  `{"project_id":"proj-1","project_name":"Alpha","job_number":"J-1"}`,
			want: projectRef{ID: "proj-1", Name: "Alpha", JobNumber: "J-1"},
		},
		{
			name: "name match takes canonical job number",
			raw:  `{"project_name":"gamma","job_number":"WRONG"}`,
			want: projectRef{ID: "proj-3", Name: "gamma", JobNumber: "JOB-003"},
		},
		{
			name: "unmatched name keeps null id",
			raw:  `{"project_name":"Delta"}`,
			want: projectRef{Name: "Delta"},
		},
		{
			name: "unknown id is dropped",
			raw:  `{"project_id":"nope","project_name":"Nope"}`,
			want: projectRef{Name: "Nope"},
		},
		{
			name:        "preselection fills empty output",
			raw:         `{}`,
			preselected: "proj-2",
			want:        projectRef{ID: "proj-2", Name: "Beta Redesign"},
		},
		{
			name:        "preselection beats unknown id",
			raw:         `{"project_id":"nope"}`,
			preselected: "proj-1",
			want:        projectRef{ID: "proj-1", Name: "Project Alpha", JobNumber: "JOB-001"},
		},
		{
			name:        "different known project overrides preselection",
			raw:         `{"project_id":"proj-3"}`,
			preselected: "proj-1",
			want:        projectRef{ID: "proj-3", Name: "Gamma", JobNumber: "JOB-003"},
		},
		{
			name:        "unmatched name with preselection",
			raw:         `{"project_name":"Delta"}`,
			preselected: "proj-2",
			want:        projectRef{ID: "proj-2", Name: "Delta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveProject(mustSuggestion(t, tt.raw), ix, tt.preselected)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveProject_Unresolved(t *testing.T) {
	ix := newProjectIndex([]store.Project{projAlpha})

	for _, pre := range []string{"", "unknown-id"} {
		_, err := resolveProject(mustSuggestion(t, `{"hours":2}`), ix, pre)
		assert.True(t, IsKind(err, KindUnresolvedProject), "preselected %q", pre)
	}
}

func TestMatchName_DuplicatesDoNotMatch(t *testing.T) {
	ix := newProjectIndex([]store.Project{
		{ID: "a", Name: "Website"},
		{ID: "b", Name: "website"},
	})
	_, ok := ix.matchName("WEBSITE")
	assert.False(t, ok)
}

func TestFinalize_Defaults(t *testing.T) {
	s := mustSuggestion(t, `{"hours":"three","billable":"no","description":"  ","task_type":""}`)
	d := finalize(s, projectRef{}, "three hours of stuff", fixedNow)

	assert.Nil(t, d.ProjectID)
	assert.Equal(t, UnknownProjectName, d.ProjectName)
	assert.Nil(t, d.JobNumber)
	assert.Nil(t, d.Hours)
	assert.Equal(t, "2026-10-15", d.Date)
	assert.True(t, d.Billable)
	assert.Equal(t, "three hours of stuff", d.Description)
	assert.Nil(t, d.TaskType)
	assert.False(t, d.ClarificationNeeded)
	assert.Empty(t, d.ClarificationQuestion)
	assert.NotNil(t, d.PossibleOptions)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"project_id":null`)
	assert.Contains(t, string(b), `"hours":null`)
	assert.Contains(t, string(b), `"possible_options":[]`)
}

func TestFinalize_BillableOnlyFalseWhenExplicit(t *testing.T) {
	cases := map[string]bool{
		`{"billable":false}`: false,
		`{"billable":true}`:  true,
		`{"billable":null}`:  true,
		`{"billable":0}`:     true,
		`{}`:                 true,
	}
	for raw, want := range cases {
		d := finalize(mustSuggestion(t, raw), projectRef{Name: "x"}, "in", fixedNow)
		assert.Equal(t, want, d.Billable, raw)
	}
}

func TestResolveDate(t *testing.T) {
	tests := map[string]string{
		"":                     "2026-10-15",
		"2026-09-30":           "2026-09-30",
		" 2026-01-02 ":         "2026-01-02",
		"2026-10-13T22:00:00Z": "2026-10-13",
		"2026-10-14T09:00:00":  "2026-10-14",
		"2026-10-14T23:59":     "2026-10-14",
		"yesterday":            "2026-10-14",
	}
	for raw, want := range tests {
		assert.Equal(t, want, resolveDate(raw, fixedNow), raw)
	}
}

func TestClarify_VerbatimOptions(t *testing.T) {
	ix := newProjectIndex([]store.Project{projAlpha, projBeta})
	s := mustSuggestion(t, `{"clarification_needed":true,"clarification_question":"Which one?","possible_options":[{"project_id":"x","project_name":"Not Listed","client_name":"C"}]}`)

	c := clarify(s, ix)
	assert.True(t, c.ClarificationNeeded)
	assert.Equal(t, "Which one?", c.Question)
	assert.Equal(t, []ProjectOption{{ProjectID: "x", ProjectName: "Not Listed", ClientName: "C"}}, c.Options)
}

func TestClarify_QuestionKeptAsGiven(t *testing.T) {
	ix := newProjectIndex([]store.Project{projAlpha})

	c := clarify(mustSuggestion(t, `{"clarification_needed":true,"clarification_question":"  Alpha or Beta?\n"}`), ix)
	assert.Equal(t, "  Alpha or Beta?\n", c.Question)

	c = clarify(mustSuggestion(t, `{"clarification_needed":true,"clarification_question":"   "}`), ix)
	assert.Equal(t, defaultQuestion, c.Question)
}

func TestClarify_LooseOptions(t *testing.T) {
	ix := newProjectIndex([]store.Project{projAlpha, projBeta})

	s := mustSuggestion(t, `{"clarification_needed":true,"clarification_question":"Which Alpha?","possible_options":["Project Alpha","Alpha Rebrand",7,null,{"project_id":"proj-1","project_name":"Project Alpha"}]}`)
	c := clarify(s, ix)
	assert.Equal(t, []ProjectOption{
		{ProjectName: "Project Alpha"},
		{ProjectName: "Alpha Rebrand"},
		{ProjectID: "proj-1", ProjectName: "Project Alpha"},
	}, c.Options)

	// anything that is not a list falls back to the known projects
	c = clarify(mustSuggestion(t, `{"clarification_needed":true,"possible_options":"Project Alpha"}`), ix)
	assert.Len(t, c.Options, 2)
}

func TestClarify_FallbackCapped(t *testing.T) {
	var projects []store.Project
	for i := range 15 {
		projects = append(projects, store.Project{ID: string(rune('a' + i)), Name: "P"})
	}
	c := clarify(mustSuggestion(t, `{"clarification_needed":1}`), newProjectIndex(projects))
	assert.Len(t, c.Options, maxOptions)
	assert.Equal(t, defaultQuestion, c.Question)
}

func TestResult_RoundTrip(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"clarification_needed":true,"clarification_question":"Q?","possible_options":[{"project_id":"p","project_name":"P"}]}`), &r))
	require.True(t, r.NeedsClarification())
	assert.Equal(t, "Q?", r.Clarification.Question)

	require.NoError(t, json.Unmarshal([]byte(`{"project_id":"p","project_name":"P","hours":2,"date":"2026-10-15","billable":false,"description":"d","clarification_needed":false}`), &r))
	require.False(t, r.NeedsClarification())
	assert.Equal(t, "p", *r.Draft.ProjectID)
	assert.Equal(t, 2.0, *r.Draft.Hours)
	assert.False(t, r.Draft.Billable)
}
