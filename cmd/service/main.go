package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jamesfarrell.me/youtube-study/internal/api"
	"jamesfarrell.me/youtube-study/internal/config"
	"jamesfarrell.me/youtube-study/internal/llm"
	"jamesfarrell.me/youtube-study/internal/process"
	"jamesfarrell.me/youtube-study/internal/study"
	"jamesfarrell.me/youtube-study/internal/transcription"
	"jamesfarrell.me/youtube-study/internal/youtube"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Bounds every outbound call; zero means no timeout.
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	ytOpts := []youtube.Option{youtube.WithHTTPClient(httpClient)}
	if cfg.YouTube.APIKey != "" {
		ytOpts = append(ytOpts, youtube.WithDataAPI(cfg.YouTube.APIKey))
	}
	yt := youtube.NewClient(ytOpts...)
	transcripts := transcription.NewService(yt, httpClient, cfg.YouTube.TranscriptLangs)

	completer := newCompleter(cfg, httpClient)
	orchestrator := process.NewOrchestrator(
		yt,
		transcripts,
		study.NewSummarizer(completer),
		study.NewQuizGenerator(completer),
	)
	orchestrator.StrictTranscript = cfg.StrictTranscript

	corsOrigin := cfg.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = cfg.ClientBaseURL
	}
	router := api.NewRouter(api.Options{
		Processor:     orchestrator,
		Resolver:      yt,
		ClientBaseURL: cfg.ClientBaseURL,
		CORSOrigin:    corsOrigin,
		ServiceAPIKey: cfg.ServiceAPIKey,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting HTTP server",
			"addr", srv.Addr,
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model,
			"api_key", config.MaskKey(cfg.LLM.APIKey),
			"youtube_data_api", cfg.YouTube.APIKey != "",
			"strict_transcript", cfg.StrictTranscript,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}

func newCompleter(cfg *config.Config, httpClient *http.Client) llm.Completer {
	if cfg.LLM.Provider == config.ProviderOpenAI {
		return llm.NewOpenAIClient(httpClient, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	}
	return llm.NewGeminiClient(httpClient, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
}
