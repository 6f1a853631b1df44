package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/campustrade/campustrade-backend/api/routes"
	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/internal/auth"
	"github.com/campustrade/campustrade-backend/internal/catalog"
	"github.com/campustrade/campustrade-backend/internal/categories"
	"github.com/campustrade/campustrade-backend/internal/credit"
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
	"github.com/campustrade/campustrade-backend/pkg/migrate"
	"github.com/campustrade/campustrade-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	favoriteRepo := favorites.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	reviewRepo := reviews.NewRepository(gormDB)
	messageRepo := messages.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)

	auditService := audit.NewService(auditRepo, logg)
	creditAdjuster := credit.NewAdjuster()

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
		Audit:          auditService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Audit:          auditService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService := users.NewService(userRepo)

	catalogService, err := catalog.NewService(catalogRepo, categoryRepo, userRepo, favoriteRepo, auditService, cfg.Catalog.PageSize)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	favoriteService, err := favorites.NewService(favoriteRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, catalogRepo, orders.NewProductStateStore(), creditAdjuster, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviewRepo, orderRepo, dbClient, creditAdjuster, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	messageService, err := messages.NewService(messageRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	uploadStore, err := uploads.NewStore(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Sessions:        sessionManager,
		HTTPMetrics:     httpMetrics,
		PromRegistry:    registry,
		AuthService:     authService,
		RegisterService: registerService,
		UserService:     userService,
		CatalogService:  catalogService,
		CategoryRepo:    categoryRepo,
		FavoriteService: favoriteService,
		OrderService:    orderService,
		ReviewService:   reviewService,
		MessageService:  messageService,
		AuditRepo:       auditRepo,
		UploadStore:     uploadStore,
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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	if err := server.Shutdown(shutdownCtx); err != nil {
		closeErr = multierr.Append(closeErr, err)
	}
	if err := redisClient.Close(); err != nil {
		closeErr = multierr.Append(closeErr, err)
	}
	if err := dbClient.Close(); err != nil {
		closeErr = multierr.Append(closeErr, err)
	}
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
