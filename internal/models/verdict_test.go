package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		prediction int
		wantErr    bool
	}{
		{name: "integer prediction", raw: `{"PREDICTION": 1, "JUSTIFICATION": "sensational headline"}`, prediction: 1},
		{name: "zero prediction", raw: `{"PREDICTION": 0, "JUSTIFICATION": "neutral tone"}`, prediction: 0},
		{name: "string prediction", raw: `{"PREDICTION": "1", "JUSTIFICATION": "x"}`, prediction: 1},
		{name: "float prediction", raw: `{"PREDICTION": 0.0, "JUSTIFICATION": "x"}`, prediction: 0},
		{name: "boolean prediction", raw: `{"PREDICTION": true, "JUSTIFICATION": "x"}`, prediction: 1},
		{name: "fenced json", raw: "```json\n{\"PREDICTION\": 1, \"JUSTIFICATION\": \"x\"}\n```", prediction: 1},
		{name: "out of range", raw: `{"PREDICTION": 2, "JUSTIFICATION": "x"}`, wantErr: true},
		{name: "missing prediction", raw: `{"JUSTIFICATION": "x"}`, wantErr: true},
		{name: "missing justification", raw: `{"PREDICTION": 1}`, wantErr: true},
		{name: "non-string justification", raw: `{"PREDICTION": 1, "JUSTIFICATION": 5}`, wantErr: true},
		{name: "not json", raw: `the article is fake`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				assert.Nil(t, v)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.prediction, v.Prediction)
			assert.Equal(t, tt.prediction == 1, v.IsFake())
		})
	}
}

func TestRow(t *testing.T) {
	row := Row{
		Columns: []string{"title", "text", "subject"},
		Values:  []string{"Headline", "Body"},
	}

	assert.Equal(t, "Headline", row.Headline())
	assert.Equal(t, "Body", row.Article())
	assert.Equal(t, "Body", row.Get("text"))
	assert.Equal(t, "", row.Get("subject"))
	assert.Equal(t, "", row.Get("missing"))
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "trues", Genuine.String())
	assert.Equal(t, "fakes", Fake.String())
	assert.Equal(t, "label(7)", Label(7).String())
}
