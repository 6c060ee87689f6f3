package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/finanzcord/finanzcord/internal/auth"
	"github.com/finanzcord/finanzcord/internal/cache"
	"github.com/finanzcord/finanzcord/internal/config"
	"github.com/finanzcord/finanzcord/internal/db"
	"github.com/finanzcord/finanzcord/internal/domain/user"
	httpx "github.com/finanzcord/finanzcord/internal/http"
	"github.com/finanzcord/finanzcord/internal/http/middlewares"
	"github.com/finanzcord/finanzcord/internal/observability"
	"github.com/finanzcord/finanzcord/internal/redisclient"
	"github.com/finanzcord/finanzcord/internal/repo/memory"
	"github.com/finanzcord/finanzcord/internal/repo/postgres"
	"github.com/finanzcord/finanzcord/internal/security"
)

func main() {
	// Load the config set up
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTELEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{
		Config:   cfg,
		Prom:     prom,
		Registry: reg,
	}

	var closeStore func()
	var lookup middlewares.UserLookup

	switch cfg.Store {
	case "memory":
		store := memory.New()
		if err := seedMemoryAdmin(ctx, store, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
		deps.Users = store.Users
		deps.Categories = store.Categories
		deps.PaymentMethods = store.PaymentMethods
		deps.Expenses = store.Expenses
		deps.DB = store
		lookup = store.Users
		closeStore = func() {}
		log.Warn("using in-memory store, data is lost on restart")

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("db migrate failed", "err", err)
			os.Exit(1)
		}
		if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}

		users := postgres.NewUsersRepo(pool, prom)
		deps.Users = users
		deps.Categories = postgres.NewCategoriesRepo(pool, prom)
		deps.PaymentMethods = postgres.NewPaymentMethodsRepo(pool, prom)
		deps.Expenses = postgres.NewExpensesRepo(pool, prom)
		deps.DB = users
		lookup = users
		closeStore = pool.Close
	}

	// login throttling shares counters through Redis when configured
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.Connect(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("redis connect failed, using in-memory login limiter", "err", err)
			deps.Limiter = middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow())
		} else {
			defer func() { _ = rdb.Close() }()
			deps.Limiter = middlewares.NewRedisLimiter(rdb.Raw(), "finanzcord:login", cfg.LoginRateLimit, cfg.LoginRateWindow())
		}
	} else {
		deps.Limiter = middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow())
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	deps.Tokens = tokens
	deps.Auth = middlewares.NewAuthMiddleware(tokens, lookup, cache.New[string, user.User](30*time.Second))

	router := httpx.NewRouter(deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	closeStore()
}

// seedMemoryAdmin gives the in-memory store the same protected admin row as
// the database seed. The store starts empty, so the admin gets id 1.
func seedMemoryAdmin(ctx context.Context, store *memory.Store, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	_, err = store.Users.Create(ctx, cfg.AdminName, cfg.AdminEmail, hash)
	return err
}
