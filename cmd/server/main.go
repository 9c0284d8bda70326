package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/handler"
	"github.com/sundarvel/pawnbook/internal/logging"
	appmw "github.com/sundarvel/pawnbook/internal/middleware"
	"github.com/sundarvel/pawnbook/internal/repository"
	"github.com/sundarvel/pawnbook/internal/service"
	"github.com/sundarvel/pawnbook/pkg/response"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	db, err := initDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	ledgerService := service.NewLedgerService(customerRepo, paymentRepo, redisClient, cfg, logger)
	exportService := service.NewExportService(ledgerService, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, logger)
	customerHandler := handler.NewCustomerHandler(ledgerService, cfg.Server.UploadDir, logger)
	reportHandler := handler.NewReportHandler(exportService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(cfg, logger, authHandler, customerHandler, reportHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	cfg *config.Config,
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	customerHandler *handler.CustomerHandler,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(logger))
	router.Use(appmw.Metrics)

	rateLimiter := appmw.NewRateLimiter(cfg.RateLimit, logger)
	router.Use(rateLimiter.Middleware)

	// Health and metrics
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Uploaded pledged-item images
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Server.UploadDir))))

	// Login is the only open API route
	router.HandleFunc("/api/v1/login", authHandler.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(appmw.Auth(cfg.Auth, logger))

	// Derived views before the parameterized routes
	api.HandleFunc("/customers/pending", customerHandler.Pending).Methods(http.MethodGet)
	api.HandleFunc("/customers/completed", customerHandler.Completed).Methods(http.MethodGet)
	api.HandleFunc("/customers/due", customerHandler.Due).Methods(http.MethodGet)

	api.HandleFunc("/customers", customerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", customerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/customers/{appNo}", customerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{appNo}", customerHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{appNo}", customerHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/customers/{appNo}/status", customerHandler.SetStatus).Methods(http.MethodPatch)
	api.HandleFunc("/customers/{appNo}/payments", customerHandler.RecordPayment).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", customerHandler.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/reports/customers.csv", reportHandler.CustomersCSV).Methods(http.MethodGet)

	return router
}
