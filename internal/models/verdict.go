package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Label is the ground-truth class of an article.
type Label int

const (
	Genuine Label = 0
	Fake    Label = 1
)

// LabelNames maps labels to the group names used in logs and reports
var LabelNames = map[Label]string{
	Genuine: "trues",
	Fake:    "fakes",
}

func (l Label) String() string {
	if name, ok := LabelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("label(%d)", int(l))
}

// Verdict is the structured classification returned by the model
type Verdict struct {
	Prediction    int    `json:"PREDICTION"`
	Justification string `json:"JUSTIFICATION"`
}

// IsFake reports whether the model flagged the article as fake news
func (v *Verdict) IsFake() bool {
	return v.Prediction == 1
}

// AnalyzeRequest is the body accepted by POST /v1/analyze/
type AnalyzeRequest struct {
	Headline string `json:"headline" binding:"required"`
	Article  string `json:"article" binding:"required"`
}

// ErrorResponse is the body returned by the facade when classification fails
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseVerdict decodes the arguments of the analyze_news function call.
// PREDICTION may arrive as a number, a numeric string or a boolean depending on
// the provider; anything outside {0, 1} is rejected.
func ParseVerdict(raw []byte) (*Verdict, error) {
	clean := StripCodeFence(string(raw))

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return VerdictFromMap(fields)
}

// VerdictFromMap builds a verdict from already decoded function arguments
func VerdictFromMap(fields map[string]interface{}) (*Verdict, error) {
	rawPrediction, ok := fields["PREDICTION"]
	if !ok {
		return nil, fmt.Errorf("%w: missing PREDICTION", ErrMalformedResponse)
	}

	prediction, err := parsePrediction(rawPrediction)
	if err != nil {
		return nil, err
	}

	rawJustification, ok := fields["JUSTIFICATION"]
	if !ok {
		return nil, fmt.Errorf("%w: missing JUSTIFICATION", ErrMalformedResponse)
	}

	justification, ok := rawJustification.(string)
	if !ok {
		return nil, fmt.Errorf("%w: JUSTIFICATION must be a string, got %T", ErrMalformedResponse, rawJustification)
	}

	return &Verdict{
		Prediction:    prediction,
		Justification: justification,
	}, nil
}

func parsePrediction(v interface{}) (int, error) {
	var f float64

	switch p := v.(type) {
	case json.Number:
		parsed, err := p.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: invalid PREDICTION %q", ErrMalformedResponse, p.String())
		}
		f = parsed
	case float64:
		f = p
	case int:
		f = float64(p)
	case bool:
		if p {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid PREDICTION %q", ErrMalformedResponse, p)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unexpected PREDICTION type %T", ErrMalformedResponse, v)
	}

	if f != 0 && f != 1 {
		return 0, fmt.Errorf("%w: PREDICTION must be 0 or 1, got %v", ErrMalformedResponse, f)
	}

	return int(f), nil
}

// StripCodeFence removes a markdown code block wrapped around a JSON payload
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}

	return strings.TrimSpace(text)
}
