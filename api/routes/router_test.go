package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mart-ng/mart-backend/internal/auth"
	"github.com/mart-ng/mart-backend/internal/identity"
	"github.com/mart-ng/mart-backend/internal/orders"
	"github.com/mart-ng/mart-backend/internal/products"
	"github.com/mart-ng/mart-backend/internal/sitesettings"
	"github.com/mart-ng/mart-backend/internal/stores"
	"github.com/mart-ng/mart-backend/internal/users"
	pkgauth "github.com/mart-ng/mart-backend/pkg/auth"
	"github.com/mart-ng/mart-backend/pkg/auth/session"
	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/logger"
	"github.com/mart-ng/mart-backend/pkg/metrics"
	"github.com/mart-ng/mart-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubIdentityService struct{}

func (stubIdentityService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.RegisterResponse, error) {
	panic("unimplemented")
}

func (stubIdentityService) VerifyEmail(ctx context.Context, token string) (*identity.VerifyEmailResult, error) {
	panic("unimplemented")
}

func (stubIdentityService) ResendVerification(ctx context.Context, email string) error {
	panic("unimplemented")
}

func (stubIdentityService) CheckActivation(ctx context.Context, email string) (*identity.ActivationStatus, error) {
	panic("unimplemented")
}

func (stubIdentityService) Settings() identity.VerificationSettings {
	return identity.VerificationSettings{}
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessToken string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, req users.UpdateProfileRequest) (*users.UserDTO, error) {
	panic("unimplemented")
}

type stubStoresService struct {
	storefrontSlug string
}

func (s *stubStoresService) Setup(ctx context.Context, ownerID uuid.UUID, req stores.SetupStoreRequest) (*stores.StoreDTO, error) {
	panic("unimplemented")
}

func (s *stubStoresService) GetDetail(ctx context.Context, ownerID uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (s *stubStoresService) UpdateDetail(ctx context.Context, ownerID uuid.UUID, req stores.UpdateStoreRequest) (*stores.StoreDTO, error) {
	panic("unimplemented")
}

func (s *stubStoresService) Storefront(ctx context.Context, slug string) (*stores.StorefrontDTO, error) {
	s.storefrontSlug = slug
	return &stores.StorefrontDTO{}, nil
}

func (s *stubStoresService) AddBankDetail(ctx context.Context, ownerID uuid.UUID, req stores.CreateBankDetailRequest) (*stores.BankDetailDTO, error) {
	panic("unimplemented")
}

func (s *stubStoresService) ListBankDetails(ctx context.Context, ownerID uuid.UUID) ([]stores.BankDetailDTO, error) {
	return nil, nil
}

func (s *stubStoresService) GetBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) (*stores.BankDetailDTO, error) {
	panic("unimplemented")
}

func (s *stubStoresService) UpdateBankDetail(ctx context.Context, ownerID, detailID uuid.UUID, req stores.UpdateBankDetailRequest) (*stores.BankDetailDTO, error) {
	panic("unimplemented")
}

func (s *stubStoresService) DeleteBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) error {
	panic("unimplemented")
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, ownerID uuid.UUID, req products.CreateProductRequest) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) List(ctx context.Context, ownerID uuid.UUID) ([]products.ProductDTO, error) {
	return nil, nil
}

func (stubProductsService) Get(ctx context.Context, ownerID, productID uuid.UUID) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(ctx context.Context, ownerID, productID uuid.UUID, req products.UpdateProductRequest) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductsService) UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*products.ProductDTO, error) {
	panic("unimplemented")
}

type stubOrdersService struct {
	tracked string
}

func (s *stubOrdersService) PlaceOrder(ctx context.Context, storeSlug string, req orders.PlaceOrderRequest) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrdersService) Track(ctx context.Context, trackingNumber string) (*orders.OrderDTO, error) {
	s.tracked = trackingNumber
	return &orders.OrderDTO{TrackingNumber: trackingNumber}, nil
}

func (s *stubOrdersService) AttachPaymentProof(ctx context.Context, trackingNumber string, overwrite bool, filename, contentType string, body io.Reader) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrdersService) List(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*orders.OrderPage, error) {
	return &orders.OrderPage{}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, ownerID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status string) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (s *stubOrdersService) Delete(ctx context.Context, ownerID, orderID uuid.UUID) error {
	panic("unimplemented")
}

type stubSiteSettingsService struct{}

func (stubSiteSettingsService) Get(ctx context.Context) (*sitesettings.SettingsDTO, error) {
	return &sitesettings.SettingsDTO{SiteName: "Mart"}, nil
}

func (stubSiteSettingsService) Upsert(ctx context.Context, req sitesettings.UpsertSettingsRequest) (*sitesettings.SettingsDTO, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "mart",
			ExpirationMinutes: 30,
			RefreshTokenDays:  14,
		},
	}
}

type testRouter struct {
	handler http.Handler
	stores  *stubStoresService
	orders  *stubOrdersService
}

func newTestRouter(cfg *config.Config) testRouter {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	registry := prometheus.NewRegistry()
	storesSvc := &stubStoresService{}
	ordersSvc := &stubOrdersService{}

	handler := NewRouter(Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           stubPinger{},
		Storage:      stubPinger{},
		Sessions:     stubSessionChecker{},
		Registry:     registry,
		HTTP:         metrics.NewHTTPMetrics(registry),
		Identity:     stubIdentityService{},
		Auth:         stubAuthService{},
		Users:        stubUsersService{},
		Stores:       storesSvc,
		Products:     stubProductsService{},
		Orders:       ordersSvc,
		SiteSettings: stubSiteSettingsService{},
	})
	return testRouter{handler: handler, stores: storesSvc, orders: ordersSvc}
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Mart-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics got %d", resp.Code)
	}
}

func TestPrivateRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/accounts/profile"},
		{http.MethodGet, "/stores/detail"},
		{http.MethodGet, "/stores/bank-details/"},
		{http.MethodGet, "/stores/products/"},
		{http.MethodGet, "/orders/list"},
		{http.MethodPut, "/site-settings/"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		resp := httptest.NewRecorder()
		router.handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", p.method, p.path, resp.Code)
		}
	}
}

func TestPrivateRouteAcceptsMintedToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/accounts/profile", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestStorefrontIsPublicAndSlugDoesNotShadowStaticRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/stores/ada-fabrics", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for storefront got %d", resp.Code)
	}
	if router.stores.storefrontSlug != "ada-fabrics" {
		t.Fatalf("expected storefront slug %q got %q", "ada-fabrics", router.stores.storefrontSlug)
	}

	// The static detail route sits under auth, so it must not fall
	// through to the public slug handler.
	router.stores.storefrontSlug = ""
	req = httptest.NewRequest(http.MethodGet, "/stores/detail", nil)
	resp = httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for detail without token got %d", resp.Code)
	}
	if router.stores.storefrontSlug != "" {
		t.Fatalf("detail request leaked into storefront handler")
	}
}

func TestOrderTrackingIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/orders/track/AB12CD34EF", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for tracking got %d", resp.Code)
	}
	if router.orders.tracked != "AB12CD34EF" {
		t.Fatalf("expected tracking number to reach the service, got %q", router.orders.tracked)
	}
}

func TestSiteSettingsReadIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/site-settings/", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for site settings got %d", resp.Code)
	}
}
