package timesheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/christopherklint97/hourly/internal/store"
)

// PromptContext is everything the model sees for one utterance.
type PromptContext struct {
	Today                time.Time
	Input                string
	PreselectedProjectID string
	Projects             []store.Project
	RecentEntries        []store.RecentEntry
}

// BuildPrompt renders the instruction block sent to the model. It is pure
// so prompt changes can be tested without a provider.
func BuildPrompt(pc PromptContext) string {
	today := pc.Today.Format("2006-01-02")

	var sb strings.Builder

	sb.WriteString("You are a timesheet assistant for a digital agency. Convert the user's description of their work into a single timesheet entry.\n\n")

	fmt.Fprintf(&sb, "Current date: %s (%s)\n", today, pc.Today.Weekday())
	fmt.Fprintf(&sb, "User input: %q\n", pc.Input)
	if pc.PreselectedProjectID != "" {
		fmt.Fprintf(&sb, "Preselected project ID: %s (the user picked this project; use it unless the input clearly describes a different listed project)\n", pc.PreselectedProjectID)
	}

	sb.WriteString("\nAvailable projects:\n")
	if len(pc.Projects) == 0 {
		sb.WriteString("- (none)\n")
	}
	for _, p := range pc.Projects {
		fmt.Fprintf(&sb, "- ID: %s, Name: %s, Job Number: %s, Client: %s\n",
			p.ID, p.Name, orNA(p.JobNumber), orNA(p.ClientName))
	}

	sb.WriteString("\nRecent timesheet entries (most recent first):\n")
	if len(pc.RecentEntries) == 0 {
		sb.WriteString("- (none)\n")
	}
	for _, e := range pc.RecentEntries {
		fmt.Fprintf(&sb, "- Date: %s, Project: %s, Hours: %s, Description: %s\n",
			e.Date, orNA(e.ProjectName), strconv.FormatFloat(e.Hours, 'f', -1, 64), e.Description)
	}

	fmt.Fprintf(&sb, `
Return these fields:
- project_id: the ID of the matching project from the list above.
- project_name: the name of that project.
- job_number: the job number of that project, if it has one.
- hours: the number of hours worked, as a number. Only estimate a plausible duration when the input gives none; never invent false precision.
- date: the date of the work as YYYY-MM-DD. Resolve relative references such as "today", "yesterday" or "last Friday" against the current date %s.
- billable: true unless the input says the work was non-billable or internal.
- description: a short professional summary of the work done. Do not copy the input verbatim.
- task_type: a coarse category such as Development, Meeting, Design, Admin or Testing, if one is evident.
- clarification_needed: true only if you cannot confidently pick a single project; otherwise false.
- clarification_question: when clarification_needed is true, a short question for the user.
- possible_options: when clarification_needed is true, the candidate projects as objects with project_id, project_name, job_number and client_name.

If the project is ambiguous, leave project_id and project_name empty and set clarification_needed, clarification_question and possible_options together.

Example of a complete entry:
{"project_id":"proj-1","project_name":"Project Alpha","job_number":"JOB-001","hours":3,"date":"%s","billable":true,"description":"Implemented the checkout flow for Project Alpha.","task_type":"Development","clarification_needed":false}

Example when clarification is needed:
{"clarification_needed":true,"clarification_question":"Which Alpha project did you work on?","possible_options":[{"project_id":"proj-1","project_name":"Project Alpha","job_number":"JOB-001","client_name":"Client A"},{"project_id":"proj-7","project_name":"Alpha Rebrand","client_name":"Client B"}]}

Respond with a single JSON object only. Do not include any other text, explanation or markdown.`, today, today)

	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
