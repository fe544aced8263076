package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	api "storefront/internal/controllers/http"
	"storefront/internal/infra/database"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/kvstore"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/repository/gormrepo"
	"storefront/internal/repository/kv"
	"storefront/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	products repository.ProductRepository
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           cfg.RedisDB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func openStore(cfg *config.Config, redisClient *redis.Client) (kvstore.Store, error) {
	switch cfg.KVDriver {
	case "memory":
		slog.Warn("using in-memory store; data is lost on restart")
		return kvstore.NewMemory(), nil
	case "sqlite":
		return kvstore.NewSQLite(cfg.SQLitePath)
	case "redis":
		return kvstore.NewRedis(redisClient, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported KV_DRIVER %q", cfg.KVDriver)
	}
}

func openRepositories(cfg *config.Config, store kvstore.Store) (repositories, error) {
	if cfg.DBDriver == "" {
		return repositories{
			orders:   kv.NewOrderRepository(store),
			users:    kv.NewUserRepository(store),
			products: kv.NewProductRepository(store),
		}, nil
	}

	dialector, err := database.Dialector(cfg)
	if err != nil {
		return repositories{}, err
	}
	db, err := database.Open(dialector)
	if err != nil {
		return repositories{}, err
	}
	slog.Info("relational storage enabled", "driver", cfg.DBDriver)
	return repositories{
		orders:   gormrepo.NewOrderRepository(db),
		users:    gormrepo.NewUserRepository(db),
		products: gormrepo.NewProductRepository(db),
	}, nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.KVDriver == "redis" || cfg.ProductCache {
		redisClient = newRedisClient(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis: ping %s: %w", cfg.RedisAddr, err)
		}
	}

	store, err := openStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer store.Close()
	if redisClient != nil && cfg.KVDriver != "redis" {
		defer redisClient.Close()
	}

	repos, err := openRepositories(cfg, store)
	if err != nil {
		return err
	}

	hub := notify.NewHub(cfg.SnapshotSize)
	publishers := notify.Fanout{hub}
	if cfg.RabbitMQURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
		if err != nil {
			return fmt.Errorf("failed to init publisher: %w", err)
		}
		defer pub.Close()
		publishers = append(publishers, pub)
	}

	catalog := services.NewCatalogService(repos.products)
	if cfg.ProductCache {
		catalog.SetRedisClient(redisClient, cfg.ProductCacheTTL)
	}
	if cfg.SeedCatalog {
		n, err := catalog.Seed(ctx, services.DefaultCatalog())
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			slog.Info("catalog seeded", "products", n)
		}
	}

	orders := services.NewOrderService(repos.orders, publishers)
	orders.SetStrictTransitions(cfg.StrictOrderTransitions)
	carts := services.NewCartService(store, catalog)
	orders.SetCartClearer(carts)
	hub.SetCommander(orders)

	handler := api.NewHandler(api.Services{
		Orders:    orders,
		Carts:     carts,
		Checkout:  services.NewCheckoutService(carts, orders),
		Catalog:   catalog,
		Auth:      services.NewAuthService(repos.users, repos.orders, store, cfg.JWTSecret, cfg.TokenTTL),
		Favorites: services.NewFavoritesService(store),
		Content:   services.NewContentService(store),
		Payments:  services.NewPaymentService(store),
		Dashboard: services.NewDashboardService(repos.orders, repos.users),
		Images:    services.NewImageService(cfg.UploadDir, "/uploads"),
		Hub:       hub,
	}, cfg.AdminKey)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.Recovery(), api.RequestLogger(), api.PrometheusMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", api.AdminKeyHeader, api.DeviceIDHeader},
		ExposeHeaders:    []string{api.DeviceIDHeader, "Content-Disposition"},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadDir)
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting storefront", "port", cfg.Port, "kv", cfg.KVDriver, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
