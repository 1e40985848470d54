package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/arepabuelas/arepabuelas-backend/api/controllers"
	"github.com/arepabuelas/arepabuelas-backend/api/routes"
	"github.com/arepabuelas/arepabuelas-backend/internal/auth"
	"github.com/arepabuelas/arepabuelas-backend/internal/cart"
	"github.com/arepabuelas/arepabuelas-backend/internal/checkout"
	"github.com/arepabuelas/arepabuelas-backend/internal/coupons"
	"github.com/arepabuelas/arepabuelas-backend/internal/orders"
	"github.com/arepabuelas/arepabuelas-backend/internal/products"
	"github.com/arepabuelas/arepabuelas-backend/internal/users"
	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/metrics"
	"github.com/arepabuelas/arepabuelas-backend/pkg/migrate"
	"github.com/arepabuelas/arepabuelas-backend/pkg/redis"
	"github.com/arepabuelas/arepabuelas-backend/pkg/storage"
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

	storageClient, err := storage.New(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20

	authService, err := auth.NewService(auth.ServiceParams{
		Users:    usersRepo,
		Uploader: storageClient,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		MaxPhoto: maxUpload,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(ordersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(productsRepo, couponService, cart.RulesFromConfig(cfg.Cart), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, productsRepo, ordersRepo, couponService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productsRepo, storageClient, maxUpload, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:  cfg,
		Logger:  logg,
		Redis:   redisClient,
		Metrics: httpMetrics,
		Health: controllers.HealthDeps{
			DB:      dbClient,
			Redis:   redisClient,
			Storage: storageClient,
		},
		Auth:         authService,
		Cart:         cartService,
		Checkout:     checkoutService,
		Coupons:      couponService,
		Orders:       orderService,
		Products:     productService,
		Users:        userService,
		PromRegistry: registry,
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
