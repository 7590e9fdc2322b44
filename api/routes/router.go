package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mart-ng/mart-backend/api/controllers"
	"github.com/mart-ng/mart-backend/api/middleware"
	"github.com/mart-ng/mart-backend/internal/auth"
	"github.com/mart-ng/mart-backend/internal/identity"
	"github.com/mart-ng/mart-backend/internal/orders"
	"github.com/mart-ng/mart-backend/internal/products"
	"github.com/mart-ng/mart-backend/internal/sitesettings"
	"github.com/mart-ng/mart-backend/internal/stores"
	"github.com/mart-ng/mart-backend/internal/users"
	"github.com/mart-ng/mart-backend/pkg/auth/session"
	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/logger"
	"github.com/mart-ng/mart-backend/pkg/metrics"
	"github.com/mart-ng/mart-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Grouping the wiring in a
// struct keeps NewRouter callable from tests without a page-long signature.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Storage  controllers.Pinger
	Sessions session.Checker
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics

	Identity     identity.Service
	Auth         auth.Service
	Users        users.Service
	Stores       stores.Service
	Products     products.Service
	Orders       orders.Service
	SiteSettings sitesettings.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
		middleware.Metrics(d.HTTP),
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

	requireAuth := middleware.Auth(cfg.JWT, d.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, map[string]controllers.Pinger{
			"redis":   d.Redis,
			"storage": d.Storage,
		}))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/accounts", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
			Post("/register", controllers.Register(d.Identity, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/token", controllers.Login(d.Auth, cfg.JWT, logg))
		r.Post("/token/refresh", controllers.Refresh(d.Auth, cfg.JWT, logg))
		r.Post("/logout", controllers.Logout(d.Auth, logg))

		r.Get("/verify-email/{token}", controllers.VerifyEmail(d.Identity, logg))
		r.Post("/resend-verification-email", controllers.ResendVerification(d.Identity, logg))
		r.Post("/check-activation", controllers.CheckActivation(d.Identity, logg))
		r.Get("/verification-settings", controllers.VerificationSettings(d.Identity, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", controllers.Profile(d.Users, logg))
			r.Put("/profile", controllers.ProfileUpdate(d.Users, logg))
		})
	})

	r.Route("/stores", func(r chi.Router) {
		// Public storefront. Static segments below win over the slug
		// parameter, so "setup" and friends are never valid slugs.
		r.Get("/{slug}", controllers.Storefront(d.Stores, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/setup", controllers.StoreSetup(d.Stores, logg))
			r.Get("/detail", controllers.StoreDetail(d.Stores, logg))
			r.Put("/detail", controllers.StoreUpdate(d.Stores, logg))

			r.Route("/bank-details", func(r chi.Router) {
				r.Post("/", controllers.BankDetailCreate(d.Stores, logg))
				r.Get("/", controllers.BankDetailList(d.Stores, logg))
				r.Get("/{id}", controllers.BankDetailGet(d.Stores, logg))
				r.Put("/{id}", controllers.BankDetailUpdate(d.Stores, logg))
				r.Delete("/{id}", controllers.BankDetailDelete(d.Stores, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(d.Products, logg))
				r.Get("/", controllers.ProductList(d.Products, logg))
				r.Get("/{id}", controllers.ProductGet(d.Products, logg))
				r.Put("/{id}", controllers.ProductUpdate(d.Products, logg))
				r.Delete("/{id}", controllers.ProductDelete(d.Products, logg))
			})
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/create/{storeSlug}", controllers.OrderCreate(d.Orders, logg))
		r.Get("/track/{tracking}", controllers.OrderTrack(d.Orders, logg))
		r.Post("/upload-payment-proof/{tracking}", controllers.OrderUploadPaymentProof(d.Orders, logg))
		r.Put("/upload-payment-proof/{tracking}", controllers.OrderUploadPaymentProof(d.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/products/{id}/quantity", controllers.ProductUpdateQuantity(d.Products, logg))
			r.Get("/list", controllers.OrderList(d.Orders, logg))
			r.Get("/{id}", controllers.OrderGet(d.Orders, logg))
			r.Delete("/{id}", controllers.OrderDelete(d.Orders, logg))
			r.Put("/{id}/update-status", controllers.OrderUpdateStatus(d.Orders, logg))
		})
	})

	r.Route("/site-settings", func(r chi.Router) {
		r.Get("/", controllers.SiteSettingsGet(d.SiteSettings, logg))
		r.With(requireAuth).Put("/", controllers.SiteSettingsUpsert(d.SiteSettings, logg))
	})

	return r
}
