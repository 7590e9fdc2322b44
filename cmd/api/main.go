package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mart-ng/mart-backend/api/routes"
	"github.com/mart-ng/mart-backend/internal/auth"
	"github.com/mart-ng/mart-backend/internal/identity"
	"github.com/mart-ng/mart-backend/internal/notifications"
	"github.com/mart-ng/mart-backend/internal/orders"
	"github.com/mart-ng/mart-backend/internal/products"
	"github.com/mart-ng/mart-backend/internal/sitesettings"
	"github.com/mart-ng/mart-backend/internal/stores"
	"github.com/mart-ng/mart-backend/internal/users"
	"github.com/mart-ng/mart-backend/pkg/auth/session"
	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/logger"
	"github.com/mart-ng/mart-backend/pkg/mailer"
	"github.com/mart-ng/mart-backend/pkg/metrics"
	"github.com/mart-ng/mart-backend/pkg/migrate"
	"github.com/mart-ng/mart-backend/pkg/redis"
	"github.com/mart-ng/mart-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	mailClient, err := mailer.NewSendGridClient(cfg.Mail)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mailer", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		DB:          dbClient.DB(),
		Mailer:      mailClient,
		FrontendURL: cfg.App.FrontendURL,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identity.ServiceParams{
		DB:              dbClient,
		Notifier:        notificationsService,
		PasswordConfig:  cfg.Password,
		VerificationCfg: cfg.Verification,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		StoreRepo:      stores.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	storesService, err := stores.NewService(stores.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create stores service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		DB:       dbClient,
		Notifier: notificationsService,
		Storage:  gcsClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	siteSettingsService, err := sitesettings.NewService(sitesettings.ServiceParams{DB: dbClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create site settings service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Storage:      gcsClient,
		Sessions:     sessionManager,
		Registry:     registry,
		HTTP:         httpMetrics,
		Identity:     identityService,
		Auth:         authService,
		Users:        usersService,
		Stores:       storesService,
		Products:     productsService,
		Orders:       ordersService,
		SiteSettings: siteSettingsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
