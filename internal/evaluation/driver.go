package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single classification call
const DefaultTimeout = 30 * time.Second

// Classifier returns a verdict for one article
type Classifier interface {
	Classify(ctx context.Context, headline, article string) (*models.Verdict, error)
}

// Evaluator fans classification calls out per labeled group and merges the
// results back with their rows.
type Evaluator struct {
	classifier     Classifier
	timeout        time.Duration
	maxConcurrency int
	logger         *zap.Logger
}

// NewEvaluator creates an evaluator. maxConcurrency <= 0 launches every call
// of a group at once.
func NewEvaluator(classifier Classifier, timeout time.Duration, maxConcurrency int, logger *zap.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Evaluator{
		classifier:     classifier,
		timeout:        timeout,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Evaluate classifies the true group and then the fake group. Each call is
// attempted once; failures become error outcomes. Records come back in input
// order, trues first.
func (e *Evaluator) Evaluate(ctx context.Context, trues, fakes []models.Row) ([]models.EvaluationRecord, ConfusionStats) {
	records := make([]models.EvaluationRecord, 0, len(trues)+len(fakes))

	for _, group := range []struct {
		label models.Label
		rows  []models.Row
	}{
		{models.Genuine, trues},
		{models.Fake, fakes},
	} {
		start := time.Now()
		outcomes := e.classifyGroup(ctx, group.rows)

		failed := 0
		for i, row := range group.rows {
			row.TrueLabel = group.label
			records = append(records, models.EvaluationRecord{Row: row, Outcome: outcomes[i]})
			if outcomes[i].Failed() {
				failed++
			}
		}

		e.logger.Info("Group classified",
			zap.String("group", group.label.String()),
			zap.Int("rows", len(group.rows)),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)))
	}

	return records, Compute(records)
}

// classifyGroup returns one outcome per row, aligned by index
func (e *Evaluator) classifyGroup(ctx context.Context, rows []models.Row) []models.Outcome {
	outcomes := make([]models.Outcome, len(rows))

	var g errgroup.Group
	if e.maxConcurrency > 0 {
		g.SetLimit(e.maxConcurrency)
	}

	for i := range rows {
		i := i
		g.Go(func() error {
			outcomes[i] = e.classify(ctx, rows[i])
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

func (e *Evaluator) classify(ctx context.Context, row models.Row) models.Outcome {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	verdict, err := e.classifier.Classify(callCtx, row.Headline(), row.Article())
	if err == nil && verdict == nil {
		err = models.ErrMalformedResponse
	}
	if err != nil {
		message := err.Error()
		if errors.Is(err, models.ErrTimeout) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			message = models.ErrTimeout.Error()
		}

		e.logger.Warn("Classification failed",
			zap.String("headline", row.Headline()),
			zap.String("error", message))

		return models.Outcome{Error: message}
	}

	return models.Outcome{Verdict: verdict}
}
