package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scb10x/orgchart-ocr/internal/api"
	"github.com/scb10x/orgchart-ocr/internal/classify"
	"github.com/scb10x/orgchart-ocr/internal/config"
	"github.com/scb10x/orgchart-ocr/internal/ocr"
	"github.com/scb10x/orgchart-ocr/internal/orgchart"
	"github.com/scb10x/orgchart-ocr/internal/pipeline"
	"github.com/scb10x/orgchart-ocr/internal/raster"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize collaborator clients.
	ocrClient := ocr.NewClient(cfg.OCRBaseURL, cfg.OCRAPIKey, cfg.OCRModel, cfg.OCRTimeout)

	var textClassifier classify.TextClassifier
	switch cfg.ClassifierBackend {
	case "gemini":
		gc, err := classify.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.ClassifierModel)
		if err != nil {
			log.Error("classifier init failed", "error", err)
			os.Exit(1)
		}
		defer gc.Close()
		textClassifier = gc
	default:
		oc := classify.NewOllamaClassifier(cfg.OllamaGenerateURL, cfg.ClassifierModel, cfg.ClassifierTimeout)
		defer oc.Close()
		textClassifier = oc
	}

	renderer := &raster.Renderer{
		DPI:          cfg.RenderDPI,
		PdftoppmPath: cfg.PdftoppmPath,
	}

	proc := pipeline.NewProcessor(renderer, ocrClient, orgchart.DefaultClassifier(), textClassifier, cfg.ExcerptChars, log)

	// Initialize HTTP server.
	srv := api.NewServer(proc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // page OCR can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		ocrClient.Close()
		cancel()
	}()

	log.Info("starting orgchart-ocr", "port", cfg.Port, "ocr_model", cfg.OCRModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
