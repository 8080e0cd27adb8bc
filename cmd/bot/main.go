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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"finbot/internal/charts"
	"finbot/internal/config"
	"finbot/internal/conversation"
	"finbot/internal/database"
	"finbot/internal/handlers"
	"finbot/internal/jobs"
	"finbot/internal/logger"
	"finbot/internal/rates"
	"finbot/internal/services"
	"finbot/internal/telegram"
	"finbot/internal/validator"
)

const (
	ratesCacheTTL   = 10 * time.Minute
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("closing database failed", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	rateService := rates.NewDefaultService(cfg.RatesPrimaryURL, cfg.RatesFallbackURL, cfg.RequestTimeout, ratesCacheTTL)
	sessions := conversation.NewMemoryStore(cfg.SessionTTL)

	engine := conversation.NewEngine(conversation.Dependencies{
		Users:        services.NewUserService(db, auditService, cfg.DefaultCurrency),
		Categories:   services.NewCategoryService(db, auditService),
		Transactions: services.NewTransactionService(db),
		Budgets:      services.NewBudgetService(db, auditService),
		Analytics:    services.NewAnalyticsService(db, cfg.SchedulerLocation),
		Rates:        rateService,
		Charts:       charts.NewPNGRenderer(),
		Sessions:     sessions,
	})

	bot, err := telegram.NewBot(cfg.BotToken, engine)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}

	scheduler := jobs.NewScheduler(cfg.SchedulerLocation, jobTimeout)
	if err := scheduler.Register(jobs.DailySummarySpec(cfg.DailySummaryHour), jobs.NewDailySummary(db, cfg.SchedulerLocation, bot)); err != nil {
		return err
	}
	if err := scheduler.Register(jobs.BudgetCheckSpec, jobs.NewBudgetMonitor(db, cfg.SchedulerLocation, cfg.BudgetAlertMode, bot)); err != nil {
		return err
	}
	if cfg.SessionTTL > 0 {
		if err := scheduler.Register(jobs.SessionSweepSpec, jobs.NewSessionSweeper(sessions)); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr: cfg.APIAddr(),
		Handler: handlers.NewRouter(handlers.RouterConfig{
			DB:     db,
			Rates:  rateService,
			APIKey: cfg.APIKey,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		log.Infof("Local API listening on %s", cfg.APIAddr())
		log.Infof("Swagger documentation available at http://%s/swagger/index.html", cfg.APIAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Infow("finbot started", "env", cfg.Env, "timezone", cfg.SchedulerLocation.String(), "alert_mode", string(cfg.BudgetAlertMode))
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("finbot stopped")
	return nil
}
