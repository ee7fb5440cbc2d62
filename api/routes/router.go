package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prostorehq/storefront-backend/api/controllers"
	"github.com/prostorehq/storefront-backend/api/middleware"
	cartsvc "github.com/prostorehq/storefront-backend/internal/cart"
	productsvc "github.com/prostorehq/storefront-backend/internal/products"
	"github.com/prostorehq/storefront-backend/internal/users"
	"github.com/prostorehq/storefront-backend/pkg/config"
	"github.com/prostorehq/storefront-backend/pkg/db"
	"github.com/prostorehq/storefront-backend/pkg/enums"
	"github.com/prostorehq/storefront-backend/pkg/logger"
	"github.com/prostorehq/storefront-backend/pkg/metrics"
	"github.com/prostorehq/storefront-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	RedisPinger    redis.Pinger
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
	RateLimiter    middleware.RateLimiterStore
	CartService    cartsvc.Service
	ProductService productsvc.Service
	UsersService   users.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.Metrics(p.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DBPinger, p.RedisPinger))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.OptionalAuth(p.Config.JWT, p.Logger),
			middleware.CartSession(p.Config.Session, p.Logger),
		)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.ProductService, p.Logger))
			r.Get("/{slug}", controllers.GetProductBySlug(p.ProductService, p.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.CartService, p.Logger))

			// Mutations are throttled per IP; reads stay unmetered.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(
					middleware.NewRateLimitPolicy("cart_mutations", p.Config.RateLimit.CartWindow, p.Config.RateLimit.CartLimit),
					p.RateLimiter,
					p.Logger,
				))
				r.Post("/items", controllers.CartAddItem(p.CartService, p.Logger))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(p.CartService, p.Logger))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(p.Config.JWT, p.Logger))
			r.Get("/users/me", controllers.GetProfile(p.UsersService, p.Logger))
			r.Put("/users/me", controllers.UpdateProfile(p.UsersService, p.Logger))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(p.Config.JWT, p.Logger),
			middleware.RequireRole(string(enums.UserRoleAdmin), p.Logger),
		)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(p.ProductService, p.Logger))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(p.ProductService, p.Logger))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(p.ProductService, p.Logger))
		})
	})

	return r
}
