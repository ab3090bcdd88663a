package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/hourly/internal/store"
)

type inputModel struct {
	textarea textarea.Model
	header   string
	width    int
	height   int
}

func newInputModel(header string, prefill string) inputModel {
	ta := textarea.New()
	ta.Placeholder = "e.g. 3 hours on Project Alpha fixing the checkout flow"
	ta.Focus()
	ta.CharLimit = 1000
	ta.SetWidth(60)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	if prefill != "" {
		ta.SetValue(prefill)
	}

	return inputModel{
		textarea: ta,
		header:   header,
	}
}

func (m inputModel) Update(msg tea.Msg) (inputModel, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		if ws.Width > 4 {
			m.textarea.SetWidth(min(ws.Width-4, 100))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	title := titleStyle.Render("hourly · Log time")
	sub := subtitleStyle.Render(m.header)
	help := helpStyle.Render("Enter: interpret • Ctrl+C: cancel")

	return title + "\n" + sub + "\n" + m.textarea.View() + "\n" + help
}

func (m inputModel) Value() string {
	return m.textarea.Value()
}

// headerInfo describes the day being logged and any preselected project.
func headerInfo(today time.Time, projectID string, projects []store.Project) string {
	s := fmt.Sprintf("%s (%s) • %d projects", today.Format("2006-01-02"), today.Weekday(), len(projects))
	if projectID == "" {
		return s
	}
	name := projectID
	for _, p := range projects {
		if p.ID == projectID {
			name = p.Name
			break
		}
	}
	return s + " • project: " + name
}
