package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/timesheet"
)

type editField int

const (
	editProject editField = iota
	editHours
	editDate
	editBillable
	editDescription
	editFieldCount
)

// Fields follow the row order of draftRows.
var fieldNames = [editFieldCount]string{"Project", "Hours", "Date", "Billable", "Description"}

type editModel struct {
	draft     timesheet.Draft
	projects  []store.Project
	field     editField
	textInput textinput.Model
	editing   bool
	filtered  []store.Project
	invalid   string
}

func newEditModel(d timesheet.Draft, projects []store.Project) editModel {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 50

	return editModel{
		draft:     d,
		projects:  projects,
		textInput: ti,
	}
}

func (m editModel) Update(msg tea.Msg) (editModel, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	return m.updateNavigating(msg)
}

func (m editModel) updateNavigating(msg tea.Msg) (editModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k", "shift+tab":
			m.field = (m.field + editFieldCount - 1) % editFieldCount
		case "down", "j", "tab":
			m.field = (m.field + 1) % editFieldCount
		case "enter":
			m.invalid = ""
			switch m.field {
			case editBillable:
				m.draft.Billable = !m.draft.Billable
				return m, nil
			case editProject:
				m.textInput.SetValue("")
				m.textInput.Placeholder = "Search project..."
				m.filtered = m.projects
			case editHours:
				m.textInput.SetValue("")
				if m.draft.Hours != nil {
					m.textInput.SetValue(strconv.FormatFloat(*m.draft.Hours, 'f', -1, 64))
				}
				m.textInput.Placeholder = "Hours, e.g. 1.5"
			case editDate:
				m.textInput.SetValue(m.draft.Date)
				m.textInput.Placeholder = "YYYY-MM-DD"
			case editDescription:
				m.textInput.SetValue(m.draft.Description)
				m.textInput.Placeholder = "Description"
			}
			m.editing = true
			return m, m.textInput.Focus()
		}
	}
	return m, nil
}

func (m editModel) updateEditing(msg tea.Msg) (editModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.applyEdit()
			m.editing = false
			m.textInput.Blur()
			return m, nil
		case "esc":
			m.editing = false
			m.textInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)

	if m.field == editProject {
		m.filtered = filterProjects(m.projects, m.textInput.Value())
	}

	return m, cmd
}

func filterProjects(projects []store.Project, query string) []store.Project {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []store.Project
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.JobNumber), query) ||
			strings.Contains(strings.ToLower(p.ClientName), query) {
			out = append(out, p)
		}
	}
	return out
}

func (m *editModel) applyEdit() {
	v := strings.TrimSpace(m.textInput.Value())
	switch m.field {
	case editProject:
		if len(m.filtered) > 0 {
			p := m.filtered[0]
			m.draft.ProjectID = &p.ID
			m.draft.ProjectName = p.Name
			m.draft.JobNumber = nil
			if p.JobNumber != "" {
				m.draft.JobNumber = &p.JobNumber
			}
		}
	case editHours:
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || h <= 0 || h > 24 {
			m.invalid = "Hours must be a number between 0 and 24"
			return
		}
		m.draft.Hours = &h
	case editDate:
		if _, err := time.Parse("2006-01-02", v); err != nil {
			m.invalid = "Date must be YYYY-MM-DD"
			return
		}
		m.draft.Date = v
	case editDescription:
		if v != "" {
			m.draft.Description = v
		}
	}
}

func (m editModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Edit Entry"))
	sb.WriteString("\n")

	for i, row := range draftRows(m.draft) {
		if i >= int(editFieldCount) {
			break
		}
		prefix := "  "
		if editField(i) == m.field {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%-12s %s", prefix, row[0], row[1])
		if editField(i) == m.field {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Field: %s\n", selectedStyle.Render(fieldNames[m.field]))

	if m.editing {
		sb.WriteString(m.textInput.View())
		sb.WriteString("\n")

		if m.field == editProject && len(m.filtered) > 0 {
			for _, p := range m.filtered[:min(5, len(m.filtered))] {
				fmt.Fprintf(&sb, "  %s\n", dimStyle.Render(p.Name))
			}
		}
	}
	if m.invalid != "" {
		sb.WriteString(errorStyle.Render(m.invalid))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Enter: edit field • j/k: nav • Esc: done editing"))

	return boxStyle.Render(sb.String())
}
