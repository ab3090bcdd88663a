package timesheet

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/invopop/jsonschema"
)

// suggestion is the model's answer before any validation. Every field is
// optional and decoded leniently: the model is an untrusted producer.
type suggestion struct {
	ProjectID             text       `json:"project_id"`
	ProjectName           text       `json:"project_name"`
	JobNumber             text       `json:"job_number"`
	Hours                 number     `json:"hours"`
	Date                  text       `json:"date"`
	Billable              boolean    `json:"billable"`
	Description           text       `json:"description"`
	TaskType              text       `json:"task_type"`
	ClarificationNeeded   truthy     `json:"clarification_needed"`
	ClarificationQuestion text       `json:"clarification_question"`
	PossibleOptions       optionList `json:"possible_options"`
}

type optionText struct {
	ProjectID   text `json:"project_id"`
	ProjectName text `json:"project_name"`
	JobNumber   text `json:"job_number,omitempty"`
	ClientName  text `json:"client_name,omitempty"`
}

// optionList reads an array of option objects. A bare string element is
// taken as a project name, other elements are dropped and a value that is
// not an array reads as empty.
type optionList []optionText

func (l *optionList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(optionList, 0, len(raw))
	for _, elem := range raw {
		var v any
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		switch x := v.(type) {
		case string:
			out = append(out, optionText{ProjectName: text(x)})
		case map[string]any:
			var o optionText
			if err := json.Unmarshal(elem, &o); err == nil {
				out = append(out, o)
			}
		}
	}
	*l = out
	return nil
}

// text reads strings, numbers and booleans as their string form; null and
// composite values read as empty.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*t = text(x)
	case float64:
		*t = text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = text(strconv.FormatBool(x))
	default:
		*t = ""
	}
	return nil
}

func (text) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}

// number is set only when the JSON value is a number.
type number struct {
	Value float64
	Valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = number{}
		return nil
	}
	*n = number{Value: f, Valid: true}
	return nil
}

func (number) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number"}
}

// boolean is set only when the JSON value is true or false.
type boolean struct {
	Value bool
	Valid bool
}

func (p *boolean) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	x, ok := v.(bool)
	*p = boolean{Value: x, Valid: ok}
	return nil
}

func (boolean) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean"}
}

// truthy follows loose truthiness: false, null, 0 and "" are false,
// everything else is true.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = false
	case bool:
		*t = truthy(x)
	case float64:
		*t = x != 0
	case string:
		*t = x != ""
	default:
		*t = true
	}
	return nil
}

func (truthy) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean"}
}
