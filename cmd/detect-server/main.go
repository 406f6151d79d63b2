// Command detect-server runs the single-image object-detection HTTP
// service: multipart image upload in, JSON bounding box tuples out.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/onnx"
	"github.com/nvr-ai/go-detect/server"
)

func main() {
	var (
		configPath string
		listenAddr string
		modelPath  string
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config)")
	flag.StringVar(&modelPath, "model", "", "Path to ONNX model file (overrides config)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if listenAddr != "" {
		cfg.ListenAddress = listenAddr
	}
	if modelPath != "" {
		cfg.Model.ModelPath = modelPath
	}
	if cfg.Model.ModelPath == "" {
		logger.Fatal("model path is required (flag -model, env MODEL_PATH, or config)")
	}

	table := models.COCOClassTable()
	if table.Len() != cfg.Model.ClassCount {
		logger.Fatal("class table does not match configured model class count",
			zap.Int("table", table.Len()),
			zap.Int("configured", cfg.Model.ClassCount))
	}

	session, err := onnx.NewSession(cfg.Model)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer session.Close()

	pipeline := server.NewPipeline(session, table, cfg.Decode, cfg.IoUThreshold, logger)
	handler := server.New(pipeline, logger, server.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: time.Duration(cfg.RequestTimeout),
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting",
		zap.String("addr", cfg.ListenAddress),
		zap.String("model", cfg.Model.ModelPath),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}

	stats := session.Stats()
	logger.Info("server stopped",
		zap.Int64("inferences", stats.InferenceCount),
		zap.Duration("avg_inference", stats.AverageTime),
	)
}
