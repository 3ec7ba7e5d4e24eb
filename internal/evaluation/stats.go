package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
)

// ConfusionStats counts verdicts against ground truth. Fakes are the positive
// class. Failed calls are counted in Errors and nowhere else.
type ConfusionStats struct {
	TP     int `json:"tp"`
	FP     int `json:"fp"`
	TN     int `json:"tn"`
	FN     int `json:"fn"`
	Errors int `json:"errors"`
}

// Add records one outcome
func (s *ConfusionStats) Add(label models.Label, outcome models.Outcome) {
	if outcome.Failed() {
		s.Errors++
		return
	}

	fake := outcome.Verdict.IsFake()
	switch {
	case label == models.Fake && fake:
		s.TP++
	case label == models.Fake:
		s.FN++
	case fake:
		s.FP++
	default:
		s.TN++
	}
}

// Compute builds the statistics for a set of records
func Compute(records []models.EvaluationRecord) ConfusionStats {
	var s ConfusionStats
	for _, rec := range records {
		s.Add(rec.Row.TrueLabel, rec.Outcome)
	}
	return s
}

// Classified is the number of calls that returned a verdict
func (s ConfusionStats) Classified() int {
	return s.TP + s.FP + s.TN + s.FN
}

func (s ConfusionStats) Accuracy() float64 {
	return ratio(s.TP+s.TN, s.Classified())
}

func (s ConfusionStats) Precision() float64 {
	return ratio(s.TP, s.TP+s.FP)
}

func (s ConfusionStats) Recall() float64 {
	return ratio(s.TP, s.TP+s.FN)
}

func (s ConfusionStats) F1() float64 {
	p, r := s.Precision(), s.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Report is the summary of one evaluation run
type Report struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration_ns"`
	Total      int            `json:"total"`
	Confusion  ConfusionStats `json:"confusion"`
	Accuracy   float64        `json:"accuracy"`
	Precision  float64        `json:"precision"`
	Recall     float64        `json:"recall"`
	F1         float64        `json:"f1_score"`
	OutputPath string         `json:"output_path"`
}

// NewReport fills the derived metrics from stats
func NewReport(runID string, startedAt time.Time, duration time.Duration, stats ConfusionStats) Report {
	return Report{
		RunID:     runID,
		StartedAt: startedAt,
		Duration:  duration,
		Total:     stats.Classified() + stats.Errors,
		Confusion: stats,
		Accuracy:  stats.Accuracy(),
		Precision: stats.Precision(),
		Recall:    stats.Recall(),
		F1:        stats.F1(),
	}
}

// Print writes the human readable report
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Accuracy: %.4f\n", r.Accuracy)
	fmt.Fprintf(w, "Precision: %.4f\n", r.Precision)
	fmt.Fprintf(w, "Recall: %.4f\n", r.Recall)
	fmt.Fprintf(w, "F1-Score: %.4f\n", r.F1)
	fmt.Fprintf(w, "TP: %d  FP: %d  TN: %d  FN: %d  Errors: %d  Total: %d\n",
		r.Confusion.TP, r.Confusion.FP, r.Confusion.TN, r.Confusion.FN, r.Confusion.Errors, r.Total)
	fmt.Fprintf(w, "Processing time: %.2f seconds\n", r.Duration.Seconds())
}

// WriteJSON saves the report as indented JSON
func (r Report) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
