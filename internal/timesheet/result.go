package timesheet

import "encoding/json"

const UnknownProjectName = "Unknown Project"

// ProjectOption is one candidate offered with a clarification.
type ProjectOption struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	JobNumber   string `json:"job_number,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
}

// Draft is a timesheet entry ready for the user to review and save. The
// clarification fields are always empty; they exist so clients can read
// both variants through one shape.
type Draft struct {
	ProjectID             *string         `json:"project_id"`
	ProjectName           string          `json:"project_name"`
	JobNumber             *string         `json:"job_number"`
	Hours                 *float64        `json:"hours"`
	Date                  string          `json:"date"`
	Billable              bool            `json:"billable"`
	Description           string          `json:"description"`
	TaskType              *string         `json:"task_type"`
	ClarificationNeeded   bool            `json:"clarification_needed"`
	ClarificationQuestion string          `json:"clarification_question"`
	PossibleOptions       []ProjectOption `json:"possible_options"`
}

// Clarification asks the user to pick a project before a draft can be made.
type Clarification struct {
	ClarificationNeeded bool            `json:"clarification_needed"`
	Question            string          `json:"clarification_question"`
	Options             []ProjectOption `json:"possible_options"`
}

// Result holds exactly one of Draft or Clarification.
type Result struct {
	Draft         *Draft
	Clarification *Clarification
}

func (r Result) NeedsClarification() bool {
	return r.Clarification != nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Clarification != nil {
		return json.Marshal(r.Clarification)
	}
	return json.Marshal(r.Draft)
}

// UnmarshalJSON picks the variant from clarification_needed.
func (r *Result) UnmarshalJSON(b []byte) error {
	var probe struct {
		ClarificationNeeded bool `json:"clarification_needed"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.ClarificationNeeded {
		var c Clarification
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		*r = Result{Clarification: &c}
		return nil
	}
	var d Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*r = Result{Draft: &d}
	return nil
}
