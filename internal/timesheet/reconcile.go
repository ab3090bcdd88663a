package timesheet

import (
	"strings"
	"time"

	"github.com/tj/go-naturaldate"

	"github.com/christopherklint97/hourly/internal/store"
)

const (
	defaultQuestion = "Which project should this time be logged against?"
	maxOptions      = 10
)

type projectIndex struct {
	list []store.Project
	byID map[string]store.Project
}

func newProjectIndex(projects []store.Project) projectIndex {
	ix := projectIndex{list: projects, byID: make(map[string]store.Project, len(projects))}
	for _, p := range projects {
		ix.byID[p.ID] = p
	}
	return ix
}

func (ix projectIndex) get(id string) (store.Project, bool) {
	if id == "" {
		return store.Project{}, false
	}
	p, ok := ix.byID[id]
	return p, ok
}

// matchName finds the one project whose name equals name ignoring case.
// Duplicate names do not match.
func (ix projectIndex) matchName(name string) (store.Project, bool) {
	var found store.Project
	n := 0
	for _, p := range ix.list {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			found = p
			n++
		}
	}
	return found, n == 1
}

// projectRef is the project identity as it is being resolved.
type projectRef struct {
	ID, Name, JobNumber string
}

func (r *projectRef) fillFrom(p store.Project) {
	if r.Name == "" {
		r.Name = p.Name
	}
	if r.JobNumber == "" {
		r.JobNumber = p.JobNumber
	}
}

// resolveProject cross-references the model's project against the known
// list and the caller's preselection.
func resolveProject(s *suggestion, ix projectIndex, preselectedID string) (projectRef, error) {
	ref := projectRef{
		ID:        strings.TrimSpace(string(s.ProjectID)),
		Name:      strings.TrimSpace(string(s.ProjectName)),
		JobNumber: strings.TrimSpace(string(s.JobNumber)),
	}
	pre, hasPre := ix.get(strings.TrimSpace(preselectedID))

	if ref.ID == "" && ref.Name == "" && !hasPre {
		return ref, NewUnresolvedProject()
	}

	// An id the model made up cannot override anything.
	if _, ok := ix.get(ref.ID); !ok {
		ref.ID = ""
	}

	if ref.ID == "" && ref.Name != "" {
		if p, ok := ix.matchName(ref.Name); ok {
			ref.ID = p.ID
			if p.JobNumber != "" {
				ref.JobNumber = p.JobNumber
			}
		}
	}

	if p, ok := ix.get(ref.ID); ok {
		ref.fillFrom(p)
	}

	// The preselection holds unless the model named a different known project.
	if hasPre && (ref.ID == "" || ref.ID == pre.ID) {
		ref.ID = pre.ID
		ref.fillFrom(pre)
	}

	return ref, nil
}

// finalize applies the draft defaults to a resolved suggestion.
func finalize(s *suggestion, ref projectRef, input string, now time.Time) *Draft {
	d := &Draft{
		ProjectID:       optString(ref.ID),
		ProjectName:     ref.Name,
		JobNumber:       optString(ref.JobNumber),
		Date:            resolveDate(string(s.Date), now),
		Billable:        !(s.Billable.Valid && !s.Billable.Value),
		Description:     strings.TrimSpace(string(s.Description)),
		TaskType:        optString(strings.TrimSpace(string(s.TaskType))),
		PossibleOptions: []ProjectOption{},
	}
	if d.ProjectName == "" {
		d.ProjectName = UnknownProjectName
	}
	if s.Hours.Valid {
		h := s.Hours.Value
		d.Hours = &h
	}
	if d.Description == "" {
		d.Description = input
	}
	return d
}

// clarify builds the clarification variant, keeping the model's question
// and options as given. Known projects stand in when it offered none.
func clarify(s *suggestion, ix projectIndex) *Clarification {
	c := &Clarification{
		ClarificationNeeded: true,
		Question:            string(s.ClarificationQuestion),
		Options:             make([]ProjectOption, 0, len(s.PossibleOptions)),
	}
	if strings.TrimSpace(c.Question) == "" {
		c.Question = defaultQuestion
	}
	for _, o := range s.PossibleOptions {
		c.Options = append(c.Options, ProjectOption{
			ProjectID:   string(o.ProjectID),
			ProjectName: string(o.ProjectName),
			JobNumber:   string(o.JobNumber),
			ClientName:  string(o.ClientName),
		})
	}
	if len(c.Options) == 0 {
		for i, p := range ix.list {
			if i == maxOptions {
				break
			}
			c.Options = append(c.Options, ProjectOption{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				JobNumber:   p.JobNumber,
				ClientName:  p.ClientName,
			})
		}
	}
	return c
}

// resolveDate returns raw as YYYY-MM-DD. Blank or unreadable dates become
// today; relative phrases the model failed to resolve are resolved here.
func resolveDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	today := now.Format("2006-01-02")
	if raw == "" {
		return today
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(now.Location()).Format("2006-01-02")
	}
	// Zone-less timestamps keep their calendar date.
	if len(raw) > 10 && raw[10] == 'T' {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if t, err := naturaldate.Parse(raw, now, naturaldate.WithDirection(naturaldate.Past)); err == nil {
		return t.Format("2006-01-02")
	}
	return today
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
