package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parklyapp/parkly-backend/api/controllers"
	"github.com/parklyapp/parkly-backend/api/middleware"
	"github.com/parklyapp/parkly-backend/internal/bookings"
	"github.com/parklyapp/parkly-backend/internal/customers"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/payments"
	"github.com/parklyapp/parkly-backend/internal/sessions"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/internal/vehicles"
	"github.com/parklyapp/parkly-backend/internal/zones"
	sessionpkg "github.com/parklyapp/parkly-backend/pkg/auth/session"
	"github.com/parklyapp/parkly-backend/pkg/config"
	"github.com/parklyapp/parkly-backend/pkg/logger"
	"github.com/parklyapp/parkly-backend/pkg/redis"
)

type sessionManager interface {
	sessionpkg.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles the domain services the router exposes.
type Services struct {
	Customers customers.Service
	Vehicles  vehicles.Service
	Zones     zones.Service
	Tariffs   tariffs.Service
	Bookings  bookings.Service
	Sessions  sessions.Service
	Payments  payments.Service
	Ledger    ledger.Service
}

// Pingers carries the readiness checks for backing dependencies.
type Pingers struct {
	DB    controllers.Pinger
	Redis controllers.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	pingers Pingers,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": pingers.DB,
			"redis":    pingers.Redis,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/plate-check", controllers.PlateCheck(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Customers, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Customers, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	// Public catalog reads: drivers can browse zones, spots, and tariffs
	// before signing in.
	r.Route("/api/v1/zones", func(r chi.Router) {
		r.Get("/", controllers.ZoneList(svcs.Zones, logg))
		r.Get("/{zoneID}", controllers.ZoneGet(svcs.Zones, logg))
		r.Get("/{zoneID}/spots", controllers.ZoneSpots(svcs.Zones, logg))
		r.Get("/{zoneID}/available-spots", controllers.ZoneAvailableSpots(svcs.Zones, logg))
	})
	r.Get("/api/v1/tariffs", controllers.TariffList(svcs.Tariffs, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(svcs.Customers, logg))
			r.Patch("/", controllers.ProfileUpdate(svcs.Customers, logg))
			r.Post("/change-password", controllers.ProfileChangePassword(svcs.Customers, logg))
		})

		r.Route("/v1/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(svcs.Vehicles, logg))
			r.Post("/", controllers.VehicleCreate(svcs.Vehicles, logg))
			r.Get("/{vehicleID}", controllers.VehicleGet(svcs.Vehicles, logg))
			r.Patch("/{vehicleID}", controllers.VehicleUpdate(svcs.Vehicles, logg))
			r.Delete("/{vehicleID}", controllers.VehicleDelete(svcs.Vehicles, logg))
		})

		r.Route("/v1/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingList(svcs.Bookings, logg))
			r.Post("/", controllers.BookingCreate(svcs.Bookings, logg))
			r.Get("/{bookingID}", controllers.BookingGet(svcs.Bookings, logg))
			r.Post("/{bookingID}/confirm", controllers.BookingConfirm(svcs.Bookings, logg))
			r.Post("/{bookingID}/cancel", controllers.BookingCancel(svcs.Bookings, logg))
		})

		r.Route("/v1/sessions", func(r chi.Router) {
			r.Get("/", controllers.SessionList(svcs.Sessions, logg))
			r.Post("/start", controllers.SessionStart(svcs.Sessions, logg))
			r.Get("/{sessionID}", controllers.SessionGet(svcs.Sessions, logg))
			r.Get("/{sessionID}/cost", controllers.SessionCost(svcs.Sessions, logg))
			r.Post("/{sessionID}/end", controllers.SessionEnd(svcs.Sessions, logg))
		})

		r.Route("/v1/balance", func(r chi.Router) {
			r.Get("/", controllers.BalanceGet(svcs.Ledger, logg))
			r.Get("/transactions", controllers.BalanceTransactions(svcs.Ledger, logg))
			r.Post("/topup", controllers.BalanceTopup(svcs.Payments, logg))
		})

		r.Route("/v1/payments", func(r chi.Router) {
			r.Get("/", controllers.PaymentList(svcs.Payments, logg))
			r.Post("/", controllers.PaymentCreate(svcs.Payments, logg))
			r.Get("/{paymentID}", controllers.PaymentGet(svcs.Payments, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1/zones", func(r chi.Router) {
			r.Post("/", controllers.ZoneCreate(svcs.Zones, logg))
			r.Patch("/{zoneID}", controllers.ZoneUpdate(svcs.Zones, logg))
			r.Post("/{zoneID}/spots", controllers.ZoneSpotCreate(svcs.Zones, logg))
		})
		r.Patch("/v1/spots/{spotID}", controllers.SpotUpdate(svcs.Zones, logg))
		r.Route("/v1/tariffs", func(r chi.Router) {
			r.Get("/", controllers.TariffList(svcs.Tariffs, logg))
			r.Post("/", controllers.TariffCreate(svcs.Tariffs, logg))
		})
	})

	return r
}
