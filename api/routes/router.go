package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campustrade/campustrade-backend/api/controllers"
	"github.com/campustrade/campustrade-backend/api/middleware"
	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/internal/auth"
	"github.com/campustrade/campustrade-backend/internal/catalog"
	"github.com/campustrade/campustrade-backend/internal/categories"
	"github.com/campustrade/campustrade-backend/internal/favorites"
	"github.com/campustrade/campustrade-backend/internal/messages"
	"github.com/campustrade/campustrade-backend/internal/orders"
	"github.com/campustrade/campustrade-backend/internal/reviews"
	"github.com/campustrade/campustrade-backend/internal/uploads"
	"github.com/campustrade/campustrade-backend/internal/users"
	"github.com/campustrade/campustrade-backend/pkg/auth/session"
	"github.com/campustrade/campustrade-backend/pkg/config"
	"github.com/campustrade/campustrade-backend/pkg/db"
	"github.com/campustrade/campustrade-backend/pkg/logger"
	"github.com/campustrade/campustrade-backend/pkg/metrics"
	"github.com/campustrade/campustrade-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           redis.Pinger
	Sessions        session.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics
	PromRegistry    *prometheus.Registry
	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserService     *users.Service
	CatalogService  *catalog.Service
	CategoryRepo    *categories.Repository
	FavoriteService *favorites.Service
	OrderService    *orders.Service
	ReviewService   *reviews.Service
	MessageService  *messages.Service
	AuditRepo       *audit.Repository
	UploadStore     *uploads.Store
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.PromRegistry, promhttp.HandlerOpts{}))
	}

	if cfg.Uploads.Dir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.RegisterService, logg))
		r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	// Public catalog browsing. Detail resolves the favorited flag when the
	// request carries credentials.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg))
		r.Get("/api/v1/products", controllers.ProductList(d.CatalogService, logg))
		r.Get("/api/v1/products/{productId}", controllers.ProductDetail(d.CatalogService, logg))
	})

	r.Get("/api/v1/categories", controllers.CategoryList(d.CategoryRepo, logg))
	r.Get("/api/v1/users/{userId}/profile", controllers.UserPublicProfile(d.UserService, logg))
	r.Get("/api/v1/users/{userId}/reviews", controllers.UserReviews(d.ReviewService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Route("/api/v1/me", func(r chi.Router) {
			r.Get("/", controllers.UserMe(d.UserService, logg))
			r.Put("/", controllers.UserUpdateMe(d.UserService, logg))
			r.Get("/products", controllers.MyProducts(d.CatalogService, logg))
			r.Get("/favorites", controllers.FavoriteList(d.FavoriteService, logg))
		})

		r.Route("/api/v1/products", func(r chi.Router) {
			r.Post("/", controllers.ProductPublish(d.CatalogService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(d.CatalogService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(d.CatalogService, logg))
			r.Post("/{productId}/favorite", controllers.FavoriteToggle(d.FavoriteService, logg))
		})

		r.Post("/api/v1/uploads", controllers.UploadImage(d.UploadStore, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.OrderService, logg))
			r.Post("/", controllers.OrderCreate(d.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(d.OrderService, logg))
			r.Post("/{orderId}/complete", controllers.OrderComplete(d.OrderService, logg))
		})

		r.Post("/api/v1/reviews", controllers.ReviewSubmit(d.ReviewService, logg))

		r.Route("/api/v1/messages", func(r chi.Router) {
			r.Post("/", controllers.MessageSend(d.MessageService, logg))
			r.Get("/unread", controllers.MessageUnreadCount(d.MessageService, logg))
			r.Get("/{userId}", controllers.MessageConversation(d.MessageService, logg))
		})

		if !cfg.App.IsProd() {
			r.Get("/api/v1/audit", controllers.AuditRecent(d.AuditRepo, logg))
		}
	})

	return r
}
