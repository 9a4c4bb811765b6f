package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leakscan/internal/adapter"
	"leakscan/internal/config"
	"leakscan/internal/extraction"
	"leakscan/internal/handler"
	"leakscan/internal/inference"
	"leakscan/internal/inference/claude"
	"leakscan/internal/inference/gemini"
	"leakscan/internal/inference/openai"
	"leakscan/internal/leaks"
	"leakscan/internal/logger"
	"leakscan/internal/port"
	"leakscan/internal/router"
	"leakscan/internal/service"
	s3storage "leakscan/internal/storage/s3"
	"leakscan/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	inference.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.InferenceProvider, error) {
		return gemini.NewProvider(cfg), nil
	})
	inference.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.InferenceProvider, error) {
		return openai.NewProvider(cfg), nil
	})
	inference.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.InferenceProvider, error) {
		return claude.NewProvider(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	tp, err := tracing.NewProvider(cfg.Tracing, cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			zap.L().Warn("main: tracer shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registerProviders()

	// Initialize stage providers
	extractionProvider, err := inference.NewStageProvider(&cfg.Inference.Extraction)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction provider: %w", err)
	}
	patternsProvider, err := inference.NewStageProvider(&cfg.Inference.Patterns)
	if err != nil {
		return fmt.Errorf("failed to initialize pattern provider: %w", err)
	}
	reasoningProvider, err := inference.NewStageProvider(&cfg.Inference.Reasoning)
	if err != nil {
		return fmt.Errorf("failed to initialize reasoning provider: %w", err)
	}

	// Initialize pipeline components
	fileAdapter := adapter.New(cfg.Adapter)
	normalizer, err := extraction.NewNormalizer(extractionProvider, cfg.Extraction)
	if err != nil {
		return fmt.Errorf("failed to initialize normalizer: %w", err)
	}
	ocr := extraction.NewOCR(extractionProvider, cfg.Extraction)
	detector := leaks.NewDetector(patternsProvider, cfg.Analysis)
	reasoner := leaks.NewReasoner(reasoningProvider, cfg.Analysis)

	// Initialize storage
	maxFileBytes := cfg.Adapter.MaxFileSizeMB * 1024 * 1024
	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3, maxFileBytes)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		zap.L().Info("main: S3 bucket not configured, stored scans disabled")
	}

	// Initialize services
	documentSvc := service.NewDocumentService(normalizer, ocr, fileAdapter)
	analysisSvc := service.NewAnalysisService(fileAdapter, normalizer, detector, reasoner, storage, cfg.S3.Bucket, cfg.Pipeline)

	// Initialize handlers
	handlers := router.Handlers{
		Extract: handler.NewExtractHandler(documentSvc),
		OCR:     handler.NewOCRHandler(documentSvc),
		Analyze: handler.NewAnalyzeHandler(analysisSvc),
		Scan:    handler.NewScanHandler(analysisSvc, maxFileBytes),
		Health:  handler.NewHealthHandler(readinessChecks(cfg)),
	}

	// Setup router
	r := router.Setup(cfg, handlers)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("main: server starting",
			zap.String("addr", cfg.Server.Port),
			zap.Strings("models", []string{normalizer.Model(), detector.Model(), reasoner.Model()}))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("main: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	zap.L().Info("main: server stopped")
	return nil
}

// readinessChecks requires every stage's primary provider to carry an API key.
func readinessChecks(cfg *config.Config) map[string]handler.ReadinessCheck {
	stages := map[string]*config.StageConfig{
		"extraction": &cfg.Inference.Extraction,
		"patterns":   &cfg.Inference.Patterns,
		"reasoning":  &cfg.Inference.Reasoning,
	}
	checks := make(map[string]handler.ReadinessCheck, len(stages))
	for name, stage := range stages {
		checks[name] = func(context.Context) error {
			if stage.Primary.APIKey == "" {
				return fmt.Errorf("%s provider %q has no API key", name, stage.Primary.Provider)
			}
			return nil
		}
	}
	return checks
}
