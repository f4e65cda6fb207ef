package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/course-marketplace/internal/clock"
	"github.com/jcmexdev/course-marketplace/internal/config"
	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog/sqlite"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/app"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/ports"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/gateway"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/httpx"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/receipts"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/replay"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/storage/postgres"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/storage/postgres/migrations"
	"github.com/jcmexdev/course-marketplace/internal/pkg/cache"
	"github.com/jcmexdev/course-marketplace/internal/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("marketplace-api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := migrations.Apply(ctx, pool); err != nil {
		return err
	}

	kv, closeCache, err := openCache(ctx, cfg.RedisAddr, cfg.ServiceName)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := os.MkdirAll(filepath.Dir(cfg.PaymentLogPath), 0o755); err != nil {
		return err
	}
	paymentLog, err := sqlite.Open(cfg.PaymentLogPath)
	if err != nil {
		return err
	}
	defer paymentLog.Close()

	var publisher ports.ReceiptPublisher = receipts.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := receipts.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReceiptTopic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = kp
	}

	clk := clock.NewSystem()
	catalogRepo := postgres.NewCatalogRepository(pool)

	catalog := app.NewCatalogService(catalogRepo, kv, cfg.CategoryTTL, clk)
	payments := app.NewPaymentService(app.PaymentDeps{
		Orders:   postgres.NewOrderRepository(pool),
		Catalog:  catalogRepo,
		Users:    postgres.NewUserRepository(pool),
		Gateway:  gateway.NewRazorpay(cfg.RazorpayKey, cfg.RazorpaySecret),
		Guard:    replay.NewGuard(kv, cfg.ClaimTTL),
		Receipts: publisher,
		Log:      paymentLog,
		Clock:    clk,
		Currency: cfg.Currency,
	})

	router := httpx.NewRouter(httpx.RouterConfig{
		ServiceName:    cfg.ServiceName,
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSOrigins,
		RequestTimeout: 30 * time.Second,
	}, httpx.NewCategoryHandler(catalog), httpx.NewPaymentHandler(payments))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("marketplace-api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCache uses Redis when addr is set and an in-process cache otherwise.
// The in-process cache only suits a single replica.
func openCache(ctx context.Context, addr, service string) (cache.Cache, func(), error) {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, using in-process cache")
		return cache.NewMemoryCache(service), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return cache.NewRedisCacheFromClient(client, service), func() { _ = client.Close() }, nil
}
