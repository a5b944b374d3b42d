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

	"bellissimo/config"
	"bellissimo/internal/database"
	"bellissimo/internal/router"
	"bellissimo/internal/service"
	"bellissimo/pkg/cache"
	"bellissimo/pkg/logging"
	"bellissimo/pkg/payment"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.Server.Env)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		fatal("database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		fatal("migrate", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		fatal("seed", err)
	}

	var fieldCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "bellissimo:")
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, using in-process cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			fieldCache = rc
			defer rc.Close()
		}
	}

	var collector payment.Provider
	if cfg.LiberecMpesa.Email != "" {
		collector = payment.NewLiberecMpesaProvider(cfg.LiberecMpesa.BaseURL, cfg.LiberecMpesa.Email,
			cfg.LiberecMpesa.Password, cfg.LiberecMpesa.WebhookBaseURL)
		slog.Info("mpesa stk push enabled")
	} else if cfg.Server.Env != "production" {
		collector = &payment.StubProvider{}
		slog.Info("mpesa stk push stubbed: set MPESA_EMAIL to enable")
	}

	svc := router.NewServices(cfg, db, fieldCache, collector, service.NewNotifier(cfg.Mail))

	var scheduler *service.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = service.NewScheduler(cfg.Scheduler, cfg.Payment.PaymentExpiry, cfg.Payment.Currency,
			svc.Payments, svc.Ledger, svc.Notifier)
		if err != nil {
			fatal("scheduler", err)
		}
		scheduler.Start()
	}

	engine := router.Setup(cfg, svc)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	svc.Payments.Wait()
	slog.Info("server stopped")
}
