package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arepabuelas/arepabuelas-backend/api/controllers"
	"github.com/arepabuelas/arepabuelas-backend/api/middleware"
	authsvc "github.com/arepabuelas/arepabuelas-backend/internal/auth"
	cartsvc "github.com/arepabuelas/arepabuelas-backend/internal/cart"
	checkoutsvc "github.com/arepabuelas/arepabuelas-backend/internal/checkout"
	couponsvc "github.com/arepabuelas/arepabuelas-backend/internal/coupons"
	ordersvc "github.com/arepabuelas/arepabuelas-backend/internal/orders"
	productsvc "github.com/arepabuelas/arepabuelas-backend/internal/products"
	usersvc "github.com/arepabuelas/arepabuelas-backend/internal/users"
	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/metrics"
	pkgredis "github.com/arepabuelas/arepabuelas-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *pkgredis.Client
	Metrics *metrics.HTTPMetrics

	Health controllers.HealthDeps

	Auth     authsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Coupons  couponsvc.Service
	Orders   ordersvc.Service
	Products productsvc.Service
	Users    usersvc.Service

	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.Metrics),
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
		r.Get("/ready", controllers.HealthReady(cfg, deps.Health, logg))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, cfg.Checkout.IdempotencyTTL, logg),
		).Post("/register", controllers.Register(deps.Auth, maxUpload, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, cfg.Checkout.IdempotencyTTL, logg))

		r.Post("/cart/quote", controllers.QuoteCart(deps.Cart, logg))
		r.Get("/coupons/check", controllers.CheckCoupon(deps.Coupons, logg))
		r.Post("/payments", controllers.ProcessPayment(deps.Checkout, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.MyOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.MyOrder(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireElevated(logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.Users, logg))
			r.Post("/{userID}/approve", controllers.AdminApproveUser(deps.Users, logg))
			r.Post("/{userID}/deactivate", controllers.AdminDeactivateUser(deps.Users, logg))
			r.Put("/{userID}/role", controllers.AdminChangeRole(deps.Users, logg))
			r.Delete("/{userID}", controllers.AdminDeleteUser(deps.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Products, maxUpload, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(deps.Products, maxUpload, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.Products, logg))
		})

		r.Get("/orders", controllers.AdminListOrders(deps.Orders, logg))
	})

	return r
}
