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

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/contact-finder/internal/auth"
	"github.com/octobees/contact-finder/internal/config"
	"github.com/octobees/contact-finder/internal/database"
	"github.com/octobees/contact-finder/internal/extraction"
	"github.com/octobees/contact-finder/internal/handler"
	"github.com/octobees/contact-finder/internal/logging"
	middlewarepkg "github.com/octobees/contact-finder/internal/middleware"
	"github.com/octobees/contact-finder/internal/repository"
	"github.com/octobees/contact-finder/internal/router"
	"github.com/octobees/contact-finder/internal/scheduler"
	"github.com/octobees/contact-finder/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.AppMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := database.NewHandle(cfg.Database.URL, cfg.Database.RetryDelay, logger.Named("database"), nil)
	defer store.Close()

	contactsRepo := repository.NewPGXContactsRepository(store)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	browser := extraction.NewChromeBrowser(extraction.ChromeConfig{
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Browser.UserAgent,
		ExecPath:  cfg.Browser.ExecPath,
	}, logger.Named("browser"))
	extractor := extraction.NewExtractor(browser, logger.Named("extraction"),
		extraction.WithTimeouts(cfg.Browser.PageLoadTimeout, cfg.Browser.FallbackLoadTimeout),
		extraction.WithSettleDelay(cfg.Browser.SettleDelay),
		extraction.WithPhoneRegion(cfg.Browser.PhoneRegion),
	)
	prober := service.NewHTTPProber(&http.Client{}, cfg.Ingest.LivenessTimeout, logger.Named("liveness"))

	ingestService := service.NewIngestService(contactsRepo, extractor, prober, logger.Named("ingest"))
	searchService := service.NewSearchService(contactsRepo, service.SearchOptions{
		CandidateLimit: cfg.Search.CandidateLimit,
		Threshold:      cfg.Search.FuzzyThreshold,
	}, logger.Named("search"))
	authService := service.NewAuthService(cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash, jwtManager)

	sched, err := scheduler.New(ingestService, scheduler.Config{
		Spec:        cfg.Ingest.Schedule,
		SourcesPath: cfg.Ingest.SourcesPath,
		RunOnStart:  cfg.Ingest.RunOnStart,
	}, logger.Named("scheduler"))
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Health:   handler.NewHealthHandler(store),
		Auth:     handler.NewAuthHandler(authService),
		Contacts: handler.NewContactsHandler(searchService),
		Ingest:   handler.NewIngestHandler(ctx, ingestService, cfg.Ingest.SourcesPath, logger.Named("ingest")),
	})

	g, gCtx := errgroup.WithContext(ctx)

	// The API serves immediately; the schema and the schedule follow the first
	// successful connection.
	g.Go(func() error {
		if err := store.Run(gCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := contactsRepo.EnsureSchema(gCtx); err != nil {
			return err
		}
		return sched.Start(gCtx)
	})

	g.Go(func() error {
		logger.Info("http server listening", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
		sched.Stop()
		return nil
	})

	return g.Wait()
}
