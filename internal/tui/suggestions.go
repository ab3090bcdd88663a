package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/christopherklint97/hourly/internal/timesheet"
)

type draftModel struct {
	draft timesheet.Draft
}

func newDraftModel(d timesheet.Draft) draftModel {
	return draftModel{draft: d}
}

func (m draftModel) View(notice string) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Suggested Entry"))
	sb.WriteString("\n")

	for _, row := range draftRows(m.draft) {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", row[0])), row[1])
	}

	if notice != "" {
		sb.WriteString("\n")
		sb.WriteString(warningStyle.Render(notice))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("[a]ccept • [e]dit • [r]etry • [s]kip"))

	return boxStyle.Render(sb.String())
}

func draftRows(d timesheet.Draft) [][2]string {
	project := d.ProjectName
	if d.ProjectID == nil {
		project = warningStyle.Render(project + " (not matched)")
	}
	if d.JobNumber != nil {
		project += dimStyle.Render("  " + *d.JobNumber)
	}

	hours := dimStyle.Render("not set")
	if d.Hours != nil {
		hours = formatHours(*d.Hours)
	}

	billable := "yes"
	if !d.Billable {
		billable = "no"
	}

	rows := [][2]string{
		{"Project", project},
		{"Hours", hours},
		{"Date", d.Date},
		{"Billable", billable},
		{"Description", d.Description},
	}
	if d.TaskType != nil {
		rows = append(rows, [2]string{"Task type", *d.TaskType})
	}
	return rows
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

type clarifyModel struct {
	clarification *timesheet.Clarification
	cursor        int
}

func newClarifyModel(c *timesheet.Clarification) clarifyModel {
	return clarifyModel{clarification: c}
}

func (m *clarifyModel) moveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *clarifyModel) moveDown() {
	if m.cursor < len(m.clarification.Options)-1 {
		m.cursor++
	}
}

func (m clarifyModel) selected() (timesheet.ProjectOption, bool) {
	if m.clarification == nil || len(m.clarification.Options) == 0 {
		return timesheet.ProjectOption{}, false
	}
	return m.clarification.Options[m.cursor], true
}

func (m clarifyModel) View() string {
	var sb strings.Builder

	sb.WriteString(warningStyle.Render("Clarification needed: "))
	sb.WriteString(m.clarification.Question)
	sb.WriteString("\n\n")

	for i, o := range m.clarification.Options {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}

		display := o.ProjectName
		if o.ClientName != "" {
			display = o.ClientName + " / " + o.ProjectName
		}
		line := prefix + display
		if o.JobNumber != "" {
			line += "  " + dimStyle.Render(o.JobNumber)
		}
		if i == m.cursor {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	help := "Enter: use project • j/k: nav • [r]etry with more detail • [s]kip"
	if len(m.clarification.Options) == 0 {
		help = "[r]etry with more detail • [s]kip"
	}
	sb.WriteString(helpStyle.Render(help))

	return boxStyle.Render(sb.String())
}
