package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localcart-be/internal/address"
	"localcart-be/internal/auth"
	"localcart-be/internal/config"
	"localcart-be/internal/db"
	"localcart-be/internal/events"
	"localcart-be/internal/httpapi"
	"localcart-be/internal/logger"
	"localcart-be/internal/middleware"
	"localcart-be/internal/notification"
	"localcart-be/internal/order"
	"localcart-be/internal/product"
	"localcart-be/internal/shop"
	"localcart-be/internal/unit"
	"localcart-be/internal/user"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

// app is the wired service graph plus the background loops it needs.
type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	redis   *notification.RedisBroadcaster
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(cfg *config.Config, database *sql.DB) (*app, error) {
	a := &app{}
	log := logger.L()

	tokens := auth.NewManager(cfg.JWTSecret, 0)

	unitRepo := unit.NewRepository(database)
	unitSvc := unit.NewService(unitRepo)

	shopSvc := shop.NewService(shop.NewRepository(database), cfg.MinOrderValue)
	productSvc := product.NewService(product.NewRepository(database), shopSvc, unitSvc)
	addressSvc := address.NewService(address.NewRepository(database))
	userSvc := user.NewService(user.NewRepository(database), tokens, shopSvc)

	registry := notification.NewRegistry(notification.DefaultBuffer)
	var broadcaster notification.Broadcaster = registry
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, func() { _ = client.Close() })

		a.redis = notification.NewRedisBroadcaster(client, notification.DefaultRedisChannel, registry)
		broadcaster = a.redis
		log.Info("notifications fan out through redis")
	}

	notificationRepo := notification.NewRepository(database)
	notifier := notification.NewNotifier(notificationRepo, broadcaster)

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, events.DefaultExchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		publisher = p
		log.Info("order events published to rabbitmq", zap.String("exchange", events.DefaultExchange))
	}

	orderRepo := order.NewRepository(database, unit.NewResolver(unitRepo))
	orderSvc := order.NewService(orderRepo, addressSvc, shopSvc, notifier, publisher)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		a.Close()
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Users:         userSvc,
		Shops:         shopSvc,
		Units:         unitSvc,
		Products:      productSvc,
		Images:        product.NewDiskStore(cfg.UploadDir, cfg.BaseURL),
		Addresses:     addressSvc,
		Orders:        orderSvc,
		Notifications: notification.NewService(notificationRepo),
		Broadcaster:   broadcaster,
		Ping:          database.PingContext,
		KeepAlive:     cfg.SSEKeepAlive,
		SecureCookie:  cfg.AppEnv == "production",
	})

	a.limiter = middleware.NewRateLimiter(cfg.InternalServiceKey)
	a.handler = httpapi.NewRouter(handler, httpapi.RouterConfig{
		Tokens:     tokens,
		Limiter:    a.limiter,
		CORSOrigin: cfg.CORSOrigin,
		UploadDir:  cfg.UploadDir,
	})

	return a, nil
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	database := initDBFunc(cfg)
	defer database.Close()

	a, err := newApp(cfg, database)
	if err != nil {
		return err
	}
	defer a.Close()

	// Open SSE streams hold their request until this is canceled.
	streams, cancelStreams := context.WithCancel(ctx)
	defer cancelStreams()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streams },
	}
	srv.RegisterOnShutdown(cancelStreams)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		if err := startServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.limiter.Cleanup(gctx)
		return nil
	})

	if a.redis != nil {
		g.Go(func() error { return a.redis.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
