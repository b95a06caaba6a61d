package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/OrmirUlaj/gaming-marketplace/internal/cache"
	"github.com/OrmirUlaj/gaming-marketplace/internal/config"
	"github.com/OrmirUlaj/gaming-marketplace/internal/db"
	"github.com/OrmirUlaj/gaming-marketplace/internal/es"
	"github.com/OrmirUlaj/gaming-marketplace/internal/httpserver"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/csrf"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/metrics"
	"github.com/OrmirUlaj/gaming-marketplace/internal/middleware/ratelimit"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo/mongocart"
	"github.com/OrmirUlaj/gaming-marketplace/internal/search"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, log)

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error("db_close_error", "error", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	store := &repo.GormRepo{DB: gdb}

	var publisher mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = mykafka.NewProducer(cfg.KafkaBrokers)
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}()

	var cartCache cache.CartCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("redis_close_error", "error", err)
			}
		}()
		cartCache = cache.NewRedisCache(rdb, cfg.CartCacheTTL)
	}

	var cartStore service.CartStore = store
	if cfg.CartBackend == config.CartBackendMongo {
		mdb, err := mongocart.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer disconnectMongo(log, mdb)
		carts := mongocart.New(mdb)
		if err := carts.CreateIndexes(ctx); err != nil {
			return err
		}
		cartStore = carts
	}

	catalog := &service.CatalogService{Repo: store, Publisher: publisher}
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			log.Warn("search_disabled", "error", err)
		} else {
			catalog.Search = search.NewIndex(client, cfg.ESIndex)
		}
	}
	if cfg.SeedCatalog {
		n, err := catalog.SeedCatalog(ctx)
		if err != nil {
			return err
		}
		log.Info("catalog_seeded", "inserted", n)
	}

	authSvc := &service.AuthService{
		Repo:          store,
		Publisher:     publisher,
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	carts := service.NewCartService(cartStore, cartCache, publisher)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := &httpserver.Deps{
		Logger:  log,
		Auth:    authSvc,
		Users:   &service.UserService{Repo: store, Carts: carts, Publisher: publisher},
		Catalog: catalog,
		Reviews: &service.ReviewService{Repo: store},
		Carts:   carts,
		Orders:  &service.OrderService{Repo: store, Publisher: publisher},
		DB:      store,
		Session: &authmw.Session{
			AccessSecret:  authSvc.AccessSecret,
			Refresher:     authSvc,
			SecureCookies: cfg.CSRFSecure,
		},
		Metrics:     metrics.New(reg),
		AuthLimiter: ratelimit.NewPerIP(cfg.AuthRatePerSec, cfg.AuthRateBurst),
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.CSRFEnabled {
		deps.CSRF = &csrf.Config{
			Secure:            cfg.CSRFSecure,
			EnforceSameOrigin: true,
			SkipPaths:         httpserver.CSRFSkipPaths,
		}
	}
	e := httpserver.New(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting_down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_error", "error", err)
	}
	log.Info("shutdown_complete")
	return nil
}

func disconnectMongo(log *slog.Logger, mdb *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mdb.Client().Disconnect(ctx); err != nil {
		log.Error("mongo_disconnect_error", "error", err)
	}
}
