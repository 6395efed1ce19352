package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jayPrakash10/expense-backend/internal/config"
	"github.com/jayPrakash10/expense-backend/internal/currency"
	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/handler"
	"github.com/jayPrakash10/expense-backend/internal/infra/cache"
	"github.com/jayPrakash10/expense-backend/internal/infra/mail"
	"github.com/jayPrakash10/expense-backend/internal/infra/memory"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/infra/resilience"
	"github.com/jayPrakash10/expense-backend/internal/infra/supabase"
	"github.com/jayPrakash10/expense-backend/internal/port"
	"github.com/jayPrakash10/expense-backend/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("otp_ttl", cfg.OTPTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "expense-backend")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	settingsCache := cache.New[*domain.UserSettings](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Stores ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var (
		userStore     port.UserStore
		settingsStore port.SettingsStore
		expenseStore  port.ExpenseStore
		categoryStore port.CategoryStore
		incomeStore   port.IncomeStore
		otpStore      port.OTPStore
	)

	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		sb := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			metrics,
			logger,
		)
		userStore = sb
		settingsStore = sb
		expenseStore = sb
		categoryStore = sb
		incomeStore = sb
		otpStore = sb
	} else {
		logger.Warn("Supabase not configured, using in-memory store; data will not survive restarts")
		mem := memory.NewStore()
		userStore = mem
		settingsStore = mem
		expenseStore = mem
		categoryStore = mem
		incomeStore = mem
		otpStore = mem
	}

	// --- Mail ---
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger)

	// --- Services ---
	converter := currency.NewConverter(currency.DefaultRates())

	authSvc := service.NewAuthService(
		userStore, settingsStore, otpStore, mailer,
		cfg.JWTSecret, cfg.JWTAccessTTL, cfg.OTPTTL,
		metrics, logger,
	)

	svcs := handler.Services{
		Auth:     authSvc,
		Expenses: service.NewExpenseService(expenseStore, categoryStore, settingsStore, settingsCache, converter, metrics, logger),
		Category: service.NewCategoryService(categoryStore, settingsStore, logger),
		Income:   service.NewIncomeService(incomeStore, settingsStore, logger),
		Settings: service.NewSettingsService(userStore, settingsStore, settingsCache, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
