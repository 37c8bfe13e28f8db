package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oneinflu/nsaconsole-api/internal/derive"
	"github.com/oneinflu/nsaconsole-api/internal/handler"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	"github.com/oneinflu/nsaconsole-api/pkg/config"
	"github.com/oneinflu/nsaconsole-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	kv, err := openStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open record store", "backend", cfg.Store.Backend, "error", err)
	}

	validate := validator.New()
	pricing := derive.NewPricingEngine(derive.DefaultCoupons())

	batches := service.NewBatchService(kv, validate, logr)
	enrollments := service.NewEnrollmentService(kv, pricing, validate, logr)
	offers := service.NewOfferService(kv, validate, logr, nil)
	orders := service.NewOrderService(kv, pricing, validate, logr)
	students := service.NewStudentService(kv, validate, logr)
	categories := service.NewCategoryService(kv, validate, logr)
	permissions := service.NewPermissionService(kv, validate, logr)
	exports := service.NewExportService(kv, logr)
	metrics := service.NewMetricsService()

	reg := handler.Registry{
		Batches:     handler.NewBatchHandler(batches),
		Enrollments: handler.NewEnrollmentHandler(enrollments),
		Offers:      handler.NewOfferHandler(offers),
		Orders:      handler.NewOrderHandler(orders),
		Students:    handler.NewStudentHandler(students),
		Categories:  handler.NewCategoryHandler(categories),
		Permissions: handler.NewPermissionHandler(permissions),
		Exports:     handler.NewExportHandler(exports),
		Metrics:     metrics,
	}

	r := handler.SetupRouter(cfg, logr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var refresh *service.RefreshService
	if cfg.Refresh.Enabled {
		refresh = service.NewRefreshService(offers, cfg.Refresh.Interval, logr)
		refresh.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if refresh != nil {
		refresh.Stop()
	}
}

func openStore(cfg *config.Config) (store.KV, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return store.NewMemoryKV(), nil
	case config.StoreBackendRedis:
		return store.NewRedisKV(cfg.Redis)
	case config.StoreBackendFile, "":
		return store.OpenFileKV(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
