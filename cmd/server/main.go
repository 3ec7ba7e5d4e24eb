package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/config"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/handler"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/llm"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/logger"
	"github.com/gcastro-vish/llm-fake-news-detector/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	log.Info("Starting fake news detector...")

	// Without a providers section, fall back to OpenAI with the key from the environment
	providers := cfg.Providers
	if len(providers) == 0 {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return errors.New("no providers configured and OPENAI_API_KEY is not set")
		}
		providers = []llm.ProviderConfig{{Type: llm.ProviderOpenAI, APIKey: apiKey}}
	}

	llmClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
		Providers:   providers,
		MaxFailures: cfg.MaxFailuresBeforeSwitch,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}
	defer llmClient.Close()

	analyzer := service.NewAnalyzer(llmClient, log)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(analyzer, cfg.Server.AuthToken, log)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	modelInfo := llmClient.GetModelInfo()
	log.Info("Fake news detector is running",
		zap.String("port", cfg.Server.Port),
		zap.Any("provider", modelInfo["provider"]),
		zap.Any("model", modelInfo["model"]),
		zap.Int("providers", len(providers)),
		zap.Bool("auth", cfg.Server.AuthToken != ""))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
