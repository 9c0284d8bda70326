package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/logging"
	"github.com/sundarvel/pawnbook/internal/repository"
	"github.com/sundarvel/pawnbook/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With(slog.String("component", "scheduler"))

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	customerRepo := repository.NewCustomerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerService := service.NewLedgerService(customerRepo, paymentRepo, redisClient, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Error("invalid scheduler timezone", "error", err)
		os.Exit(1)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily sweep: rebuild the dashboard counts cache and log the customers
	// whose end date has passed with money still outstanding.
	_, err = c.AddFunc(cfg.Scheduler.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		counts, err := ledgerService.RefreshDashboard(ctx)
		if err != nil {
			logger.Error("dashboard refresh failed", "error", err)
			return
		}

		due, err := ledgerService.DueCustomers(ctx)
		if err != nil {
			logger.Error("due customer sweep failed", "error", err)
			return
		}
		for _, rec := range due {
			logger.Warn("due date passed with balance outstanding",
				slog.String("application_number", rec.ApplicationNumber),
				slog.String("pending", rec.PendingAmount.StringFixed(2)),
				slog.Time("end_date", rec.EndDate))
		}

		logger.Info("daily ledger sweep finished",
			slog.Int("total", counts.Total),
			slog.Int("due", counts.Due))
	})
	if err != nil {
		logger.Error("failed to schedule ledger sweep", "error", err)
		os.Exit(1)
	}

	c.Start()
	logger.Info("scheduler started", "cron", cfg.Scheduler.CronSpec, "timezone", cfg.Scheduler.Timezone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}
