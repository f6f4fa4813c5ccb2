package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"talentscope/internal/api/handler"
	"talentscope/internal/api/router"
	"talentscope/internal/auth"
	"talentscope/internal/chatbot"
	"talentscope/internal/config"
	"talentscope/internal/logger"
	"talentscope/internal/processor"
	"talentscope/internal/storage"
	"talentscope/internal/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFlush()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("trace exporter shutdown failed")
		}
	}()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer store.Close()
	logger.Info().Msg("storage initialized")

	pipeline, err := processor.NewPipeline(ctx, cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize resume pipeline")
	}

	consumer, err := processor.NewConsumer(cfg, store, pipeline)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize ingest consumer")
	}
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start ingest consumers")
		}
	}()

	authService := auth.NewService(cfg, store)
	chatService := chatbot.NewService(cfg, store)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Jobs:       handler.NewJobHandler(store),
		Candidates: handler.NewCandidateHandler(cfg, store),
		Interviews: handler.NewInterviewHandler(store),
		Outreach:   handler.NewOutreachHandler(store),
		Stats:      handler.NewStatsHandler(store),
		Chat:       handler.NewChatHandler(chatService),
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, authService, handlers)

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("http server starting")
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	consumer.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("shutdown complete")
}
