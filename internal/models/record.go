package models

// Row is one article read from a labeled dataset file.
// Values holds every source column positionally, aligned with Columns.
type Row struct {
	Columns   []string
	Values    []string
	TrueLabel Label
}

// Headline returns the first column
func (r Row) Headline() string {
	return r.value(0)
}

// Article returns the second column
func (r Row) Article() string {
	return r.value(1)
}

// Get returns the value of the named column, or "" if the row does not have it
func (r Row) Get(column string) string {
	for i, c := range r.Columns {
		if c == column {
			return r.value(i)
		}
	}
	return ""
}

func (r Row) value(i int) string {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return ""
}

// Outcome is the result of one classification call: a verdict or an error message
type Outcome struct {
	Verdict *Verdict `json:"verdict,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Failed reports whether the call produced no verdict
func (o Outcome) Failed() bool {
	return o.Verdict == nil
}

// EvaluationRecord is a dataset row merged with its classification outcome
type EvaluationRecord struct {
	Row     Row
	Outcome Outcome
}
