package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/bookings"
	"github.com/parklyapp/parkly-backend/internal/customers"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/payments"
	"github.com/parklyapp/parkly-backend/internal/sessions"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/internal/vehicles"
	"github.com/parklyapp/parkly-backend/internal/zones"
	pkgAuth "github.com/parklyapp/parkly-backend/pkg/auth"
	"github.com/parklyapp/parkly-backend/pkg/auth/session"
	"github.com/parklyapp/parkly-backend/pkg/config"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/logger"
	"github.com/parklyapp/parkly-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubCustomersService struct{}

func (stubCustomersService) Register(ctx context.Context, input customers.RegisterInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{}, nil
}

func (stubCustomersService) Login(ctx context.Context, input customers.LoginInput) (*customers.LoginResult, error) {
	return &customers.LoginResult{}, nil
}

func (stubCustomersService) Profile(ctx context.Context, customerID uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: customerID}, nil
}

func (stubCustomersService) UpdateProfile(ctx context.Context, input customers.UpdateProfileInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{}, nil
}

func (stubCustomersService) ChangePassword(ctx context.Context, input customers.ChangePasswordInput) error {
	return nil
}

type stubVehiclesService struct{}

func (stubVehiclesService) Create(ctx context.Context, input vehicles.CreateInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubVehiclesService) Get(ctx context.Context, input vehicles.ActorInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubVehiclesService) List(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error) {
	return nil, nil
}

func (stubVehiclesService) Update(ctx context.Context, input vehicles.UpdateInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubVehiclesService) Delete(ctx context.Context, input vehicles.ActorInput) error {
	return nil
}

type stubZonesService struct{}

func (stubZonesService) ListZones(ctx context.Context, activeOnly bool) ([]zones.ZoneDetail, error) {
	return nil, nil
}

func (stubZonesService) GetZone(ctx context.Context, zoneID uuid.UUID) (*zones.ZoneDetail, error) {
	return &zones.ZoneDetail{}, nil
}

func (stubZonesService) ListSpots(ctx context.Context, zoneID uuid.UUID, filter zones.SpotFilter) ([]models.ParkingSpot, error) {
	return nil, nil
}

func (stubZonesService) FreeSpotsForWindow(ctx context.Context, zoneID uuid.UUID, window availability.Window) ([]zones.SpotWithRates, error) {
	return nil, nil
}

func (stubZonesService) CreateZone(ctx context.Context, input zones.CreateZoneInput) (*models.ParkingZone, error) {
	return &models.ParkingZone{}, nil
}

func (stubZonesService) UpdateZone(ctx context.Context, input zones.UpdateZoneInput) (*models.ParkingZone, error) {
	return &models.ParkingZone{}, nil
}

func (stubZonesService) CreateSpot(ctx context.Context, input zones.CreateSpotInput) (*models.ParkingSpot, error) {
	return &models.ParkingSpot{}, nil
}

func (stubZonesService) UpdateSpot(ctx context.Context, input zones.UpdateSpotInput) (*models.ParkingSpot, error) {
	return &models.ParkingSpot{}, nil
}

type stubTariffsService struct{}

func (stubTariffsService) Resolve(ctx context.Context, spotID uuid.UUID) (*tariffs.Resolution, error) {
	return &tariffs.Resolution{}, nil
}

func (stubTariffsService) ResolveZone(ctx context.Context, zone *models.ParkingZone) (*models.TariffPlan, error) {
	return &models.TariffPlan{}, nil
}

func (stubTariffsService) ListPlans(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error) {
	return nil, nil
}

func (stubTariffsService) CreatePlan(ctx context.Context, input tariffs.CreateTariffInput) (*models.TariffPlan, error) {
	return &models.TariffPlan{}, nil
}

type stubBookingsService struct{}

func (stubBookingsService) Create(ctx context.Context, input bookings.CreateInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) Confirm(ctx context.Context, input bookings.ActorInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) Cancel(ctx context.Context, input bookings.ActorInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) Get(ctx context.Context, input bookings.ActorInput) (*models.Booking, error) {
	return &models.Booking{}, nil
}

func (stubBookingsService) List(ctx context.Context, input bookings.ListInput) (*bookings.ListPage, error) {
	return &bookings.ListPage{}, nil
}

type stubSessionsService struct{}

func (stubSessionsService) Start(ctx context.Context, input sessions.StartInput) (*models.ParkingSession, error) {
	return &models.ParkingSession{}, nil
}

func (stubSessionsService) End(ctx context.Context, input sessions.EndInput) (*models.ParkingSession, error) {
	return &models.ParkingSession{}, nil
}

func (stubSessionsService) CalculateCost(ctx context.Context, input sessions.ActorInput) (*sessions.CostProjection, error) {
	return &sessions.CostProjection{}, nil
}

func (stubSessionsService) Get(ctx context.Context, input sessions.ActorInput) (*models.ParkingSession, error) {
	return &models.ParkingSession{}, nil
}

func (stubSessionsService) List(ctx context.Context, input sessions.ListInput) (*sessions.ListPage, error) {
	return &sessions.ListPage{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Topup(ctx context.Context, input payments.TopupInput) (*payments.TopupResult, error) {
	return &payments.TopupResult{}, nil
}

func (stubPaymentsService) PaySession(ctx context.Context, input payments.PaySessionInput) (*models.Payment, error) {
	return &models.Payment{}, nil
}

func (stubPaymentsService) List(ctx context.Context, input payments.ListInput) ([]models.Payment, error) {
	return nil, nil
}

func (stubPaymentsService) Get(ctx context.Context, input payments.ActorInput) (*models.Payment, error) {
	return &models.Payment{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Apply(ctx context.Context, tx *gorm.DB, input ledger.ApplyInput) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (stubLedgerService) History(ctx context.Context, input ledger.HistoryInput) (*ledger.HistoryPage, error) {
	return &ledger.HistoryPage{}, nil
}

func (stubLedgerService) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			SessionTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		(*redis.Client)(nil),
		stubSessionManager{},
		Pingers{DB: stubPinger{}, Redis: stubPinger{}},
		Services{
			Customers: stubCustomersService{},
			Vehicles:  stubVehiclesService{},
			Zones:     stubZonesService{},
			Tariffs:   stubTariffsService{},
			Bookings:  stubBookingsService{},
			Sessions:  stubSessionsService{},
			Payments:  stubPaymentsService{},
			Ledger:    stubLedgerService{},
		},
	)
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminFlag(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestZoneCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public zones got %d", resp.Code)
	}
}

func TestAdminZoneCreateRejectsCustomer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"name":"Central","address":"1 Main St","total_spots":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/zones/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer zone create got %d", resp.Code)
	}
}

func TestPlateCheckRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/public/plate-check", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestPlateCheckAcceptsPlate(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"license_plate":" ab 123 cd "}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/plate-check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid payload got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "AB123CD") {
		t.Fatalf("expected normalized plate in response, got %s", resp.Body.String())
	}
}

func buildToken(t *testing.T, cfg *config.Config, isAdmin bool) string {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		CustomerID: uuid.New(),
		IsAdmin:    isAdmin,
		JTI:        accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
