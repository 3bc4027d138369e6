package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/sightline/internal/api"
	"github.com/your-org/sightline/internal/api/ws"
	"github.com/your-org/sightline/internal/auth"
	"github.com/your-org/sightline/internal/config"
	"github.com/your-org/sightline/internal/llm"
	"github.com/your-org/sightline/internal/observability"
	"github.com/your-org/sightline/internal/queue"
	"github.com/your-org/sightline/internal/storage"
	"github.com/your-org/sightline/internal/vision"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting sightline API service", "port", cfg.Server.Port)

	// Connect to the user store
	store, err := storage.Open(cfg.Database.URL)
	if err != nil {
		slog.Error("open user store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Optional snapshot archive
	var snapshots *storage.SnapshotStore
	if cfg.MinIO.Endpoint != "" {
		snapshots, err = storage.NewSnapshotStore(cfg.MinIO)
		if err != nil {
			slog.Error("connect to minio", "error", err)
			os.Exit(1)
		}
		if err := snapshots.EnsureBucket(context.Background()); err != nil {
			slog.Warn("ensure minio bucket", "error", err)
		}
	}

	// Optional detection event stream
	var producer *queue.Producer
	if cfg.NATS.URL != "" {
		producer, err = queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		if err := producer.EnsureStream(context.Background()); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}
	}

	// Detector backend, constructed once at startup and shared by all requests
	detector, err := newDetector(cfg.Vision)
	if err != nil {
		slog.Error("initialize detector", "error", err)
		os.Exit(1)
	}
	visionSvc := vision.NewService(detector, cfg.Vision.Backend)
	defer visionSvc.Close()

	// Q&A service; degrades to fallback answers when no API key is configured
	var generator llm.Generator
	if cfg.LLM.APIKey != "" {
		generator = llm.NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		slog.Info("language model client ready", "model", cfg.LLM.Model)
	} else {
		slog.Warn("GEMINI_API_KEY not set — Q&A will return fallback answers")
	}
	llmSvc := llm.NewService(generator)

	// Live detection feed
	hub := ws.NewHub()
	go hub.Run()

	router := api.NewRouter(api.RouterConfig{
		Store:               store,
		Issuer:              auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Vision:              visionSvc,
		LLM:                 llmSvc,
		BcryptCost:          cfg.Auth.BcryptCost,
		ConfidenceThreshold: cfg.Vision.ConfidenceThreshold,
		DetectTimeout:       cfg.Vision.Timeout,
		AskTimeout:          cfg.LLM.Timeout,
		Snapshots:           snapshots,
		Producer:            producer,
		Hub:                 hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

func newDetector(cfg config.VisionConfig) (vision.Detector, error) {
	switch cfg.Backend {
	case "remote":
		if cfg.InferenceURL == "" {
			return nil, fmt.Errorf("vision.inference_url required for remote backend")
		}
		slog.Info("using remote detector", "url", cfg.InferenceURL)
		return vision.NewRemoteDetector(cfg.InferenceURL), nil
	case "onnx":
		ort.SetSharedLibraryPath(getONNXLibPath())
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx runtime init: %w", err)
		}
		slog.Info("loading detection model", "path", cfg.ModelPath)
		det, err := vision.NewONNXDetector(cfg.ModelPath, cfg.InputSize, nil)
		if err != nil {
			return nil, fmt.Errorf("load detection model: %w", err)
		}
		return det, nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", cfg.Backend)
	}
}

// getONNXLibPath returns the ONNX Runtime shared library path.
func getONNXLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}
