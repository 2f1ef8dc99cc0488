package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/app"
	"github.com/octobees/leadscout/internal/auth"
	"github.com/octobees/leadscout/internal/config"
	"github.com/octobees/leadscout/internal/handler"
	middlewarepkg "github.com/octobees/leadscout/internal/middleware"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/router"
	"github.com/octobees/leadscout/internal/service"
	"github.com/octobees/leadscout/internal/service/intent"
	"github.com/octobees/leadscout/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer pool.Close()

	pipe, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}
	defer pipe.Close()

	var fragments source.FragmentSource
	worker, err := source.NewWorkerSource(context.Background(), nil, cfg.WorkerBaseURL)
	switch {
	case err == nil:
		fragments = worker
	case errors.Is(err, source.ErrWorkerNotConfigured):
		logger.Warn("WORKER_BASE_URL not set, scans only process uploaded files")
		fragments = source.NewStatic(nil)
	default:
		logger.Fatal("failed to build worker source", zap.Error(err))
	}

	runsRepo := repository.NewPGXRunsRepository(pool)
	leadsRepo := repository.NewPGXLeadsRepository(pool)
	settings := config.NewSettingsStore(cfg.SettingsPath)

	runnerOpts := []service.RunnerOption{
		service.WithPersistence(runsRepo, leadsRepo),
		service.WithOutputDir(cfg.OutputDir),
		service.WithRunnerLogger(logger.Named("runner")),
		service.WithAutoPause(cfg.AutoPause),
	}
	if board := app.NewBoard(cfg, logger); board != nil {
		runnerOpts = append(runnerOpts, service.WithCRM(board))
	}
	runner := service.NewRunner(fragments, pipe.Assembler, runnerOpts...)

	var parser intent.Parser = intent.NewRuleParser()
	if cfg.AnthropicAPIKey != "" {
		completer := intent.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		parser = intent.NewLLMParser(completer, nil, logger.Named("intent"))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	var accounts []service.Account
	if cfg.OperatorEmail != "" && cfg.OperatorPasswordHash != "" {
		accounts = append(accounts, service.Account{Email: cfg.OperatorEmail, PasswordHash: cfg.OperatorPasswordHash, Role: auth.RoleAdmin})
	}
	if cfg.ViewerEmail != "" && cfg.ViewerPasswordHash != "" {
		accounts = append(accounts, service.Account{Email: cfg.ViewerEmail, PasswordHash: cfg.ViewerPasswordHash, Role: auth.RoleViewer})
	}
	if len(accounts) == 0 {
		logger.Warn("no operator account configured, login is disabled")
	}
	authService := service.NewAuthService(jwtManager, accounts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.Named("http")))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("12M"))

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Config:      handler.NewConfigHandler(settings, logger.Named("config")),
		Scan:        handler.NewScanHandler(runner, settings),
		Intent:      handler.NewIntentHandler(parser, settings),
		Leads:       handler.NewLeadsHandler(service.NewLeadsService(runsRepo, leadsRepo)),
		Results:     handler.NewResultsHandler(cfg.OutputDir),
		AdminUpload: handler.NewAdminUploadHandler(runner, settings),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	if runner.Stop() {
		runner.Wait()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
