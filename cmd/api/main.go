package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parklyapp/parkly-backend/api/routes"
	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/bookings"
	"github.com/parklyapp/parkly-backend/internal/customers"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/notifications"
	"github.com/parklyapp/parkly-backend/internal/payments"
	"github.com/parklyapp/parkly-backend/internal/sessions"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/internal/vehicles"
	"github.com/parklyapp/parkly-backend/internal/zones"
	"github.com/parklyapp/parkly-backend/pkg/auth/session"
	"github.com/parklyapp/parkly-backend/pkg/config"
	"github.com/parklyapp/parkly-backend/pkg/db"
	"github.com/parklyapp/parkly-backend/pkg/logger"
	"github.com/parklyapp/parkly-backend/pkg/metrics"
	"github.com/parklyapp/parkly-backend/pkg/migrate"
	"github.com/parklyapp/parkly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessionManager,
			routes.Pingers{DB: dbClient, Redis: redisClient}, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	gormDB := dbClient.DB()

	customerRepo := customers.NewRepository(gormDB)
	vehicleRepo := vehicles.NewRepository(gormDB)
	zoneRepo := zones.NewRepository(gormDB)
	tariffRepo := tariffs.NewRepository(gormDB)
	availRepo := availability.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	bookingRepo := bookings.NewRepository(gormDB)
	sessionRepo := sessions.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)

	notifier := buildNotifier(cfg, logg)
	lifecycle := metrics.NewLifecycleMetrics(prometheus.DefaultRegisterer)

	customerSvc, err := customers.NewService(customers.ServiceParams{
		Repo:           customerRepo,
		SessionManager: sessionManager,
		Tx:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	vehicleSvc, err := vehicles.NewService(vehicleRepo)
	if err != nil {
		return routes.Services{}, err
	}

	tariffSvc, err := tariffs.NewService(tariffRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	availSvc, err := availability.NewService(availRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	zoneSvc, err := zones.NewService(zoneRepo, tariffSvc, availSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerSvc, err := ledger.NewService(ledgerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	bookingSvc, err := bookings.NewService(bookingRepo, availRepo, tariffSvc, ledgerSvc, customerRepo, dbClient, notifier, lifecycle, logg)
	if err != nil {
		return routes.Services{}, err
	}

	sessionSvc, err := sessions.NewService(sessionRepo, bookingRepo, tariffSvc, ledgerSvc, customerRepo, dbClient, notifier, lifecycle, logg, cfg.Booking.EarlyStartGrace)
	if err != nil {
		return routes.Services{}, err
	}

	paymentSvc, err := payments.NewService(paymentRepo, payments.NewMockGateway(), ledgerSvc, tariffSvc, customerRepo, dbClient, notifier, lifecycle, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Customers: customerSvc,
		Vehicles:  vehicleSvc,
		Zones:     zoneSvc,
		Tariffs:   tariffSvc,
		Bookings:  bookingSvc,
		Sessions:  sessionSvc,
		Payments:  paymentSvc,
		Ledger:    ledgerSvc,
	}, nil
}

func buildNotifier(cfg *config.Config, logg *logger.Logger) notifications.Dispatcher {
	if cfg.Notifier.SendgridAPIKey != "" {
		dispatcher, err := notifications.NewEmailDispatcher(cfg.Notifier, logg)
		if err == nil {
			return dispatcher
		}
		logg.Error(context.Background(), "email dispatcher unavailable, falling back to log dispatcher", err)
	}
	return notifications.NewLogDispatcher(logg)
}
