package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/client"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/config"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/dataset"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/evaluation"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/logger"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run reads both datasets, classifies every row through the facade, writes the
// merged records and prints the report.
func run() error {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	log = log.With(zap.String("run_id", runID))

	trues, err := dataset.ReadRows(cfg.Evaluate.TruePath, models.Genuine)
	if err != nil {
		return err
	}
	fakes, err := dataset.ReadRows(cfg.Evaluate.FakePath, models.Fake)
	if err != nil {
		return err
	}

	log.Info("Datasets loaded",
		zap.String("true_path", cfg.Evaluate.TruePath),
		zap.Int("trues", len(trues)),
		zap.String("fake_path", cfg.Evaluate.FakePath),
		zap.Int("fakes", len(fakes)))

	facade := client.NewClient(cfg.Evaluate.ServiceURL, cfg.Evaluate.APIKey, log)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = facade.Ping(pingCtx)
	cancel()
	if err != nil {
		return err
	}

	startedAt := time.Now()
	evaluator := evaluation.NewEvaluator(facade, cfg.Evaluate.Timeout, cfg.Evaluate.MaxConcurrency, log)
	records, stats := evaluator.Evaluate(ctx, trues, fakes)
	elapsed := time.Since(startedAt)

	if err := dataset.WriteRecords(cfg.Evaluate.OutputPath, records); err != nil {
		return err
	}

	report := evaluation.NewReport(runID, startedAt, elapsed, stats)
	report.OutputPath = cfg.Evaluate.OutputPath

	if cfg.Evaluate.ReportPath != "" {
		if err := report.WriteJSON(cfg.Evaluate.ReportPath); err != nil {
			return err
		}
	}

	log.Info("Evaluation completed",
		zap.Int("tp", stats.TP),
		zap.Int("fp", stats.FP),
		zap.Int("tn", stats.TN),
		zap.Int("fn", stats.FN),
		zap.Int("errors", stats.Errors),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("precision", report.Precision),
		zap.Float64("recall", report.Recall),
		zap.Float64("f1_score", report.F1),
		zap.Duration("duration", elapsed),
		zap.String("output_path", cfg.Evaluate.OutputPath))

	report.Print(os.Stdout)

	return nil
}
