package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/instituto-admin-api/api/swagger"
	"github.com/noah-isme/instituto-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/instituto-admin-api/internal/middleware"
	"github.com/noah-isme/instituto-admin-api/internal/models"
	"github.com/noah-isme/instituto-admin-api/internal/repository"
	"github.com/noah-isme/instituto-admin-api/internal/service"
	"github.com/noah-isme/instituto-admin-api/internal/store"
	"github.com/noah-isme/instituto-admin-api/pkg/cache"
	"github.com/noah-isme/instituto-admin-api/pkg/config"
	"github.com/noah-isme/instituto-admin-api/pkg/database"
	"github.com/noah-isme/instituto-admin-api/pkg/export"
	"github.com/noah-isme/instituto-admin-api/pkg/logger"
	"github.com/noah-isme/instituto-admin-api/pkg/storage"
)

// @title Instituto Admin API
// @version 1.0.0
// @description Back office of the institute: login, alumnos and the domain store (courses, inscriptions, caja)
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Cache.Enabled || cfg.Store.Backend == config.StoreBackendRedis {
		rdb, err = cache.NewRedis(ctx, cfg.Redis)
		switch {
		case err != nil && cfg.Store.Backend == config.StoreBackendRedis:
			logr.Fatal("failed to connect redis", zap.Error(err))
		case err != nil:
			logr.Warn("redis unavailable, alumnos cache disabled", zap.Error(err))
			cfg.Cache.Enabled = false
		default:
			defer rdb.Close()
		}
	}

	backend, err := storeBackend(cfg.Store, rdb)
	if err != nil {
		logr.Fatal("failed to prepare store backend", zap.Error(err))
	}
	validate := validator.New()
	st, err := store.Open(ctx, backend, store.Options{Key: cfg.Store.Key, Validator: validate, Logger: logr.Named("store")})
	if err != nil {
		logr.Fatal("failed to open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()

	var cacheClient redis.Cmdable
	if rdb != nil {
		cacheClient = rdb
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(cacheClient, logr), metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(repository.NewUserRepository(db), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(repository.NewStudentRepository(db), cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(st, cfg.Billing, cfg.Store.DefaultStaff, metricsSvc, validate, logr)
	registerSvc := service.NewCashRegisterService(st, export.NewCSVExporter(), export.NewPDFExporter(), time.Local, logr)

	r := handler.NewEngine(handler.EngineOptions{
		Logger:         logr,
		Metrics:        metricsSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		QuietPaths:     []string{cfg.APIPrefix + "/health", "/metrics"},
	})

	storeGuard := []gin.HandlerFunc{internalmiddleware.OptionalJWT(authSvc)}
	if cfg.Store.AuthEnabled {
		storeGuard = []gin.HandlerFunc{
			internalmiddleware.JWT(authSvc),
			internalmiddleware.RequireRole(models.UserRole(cfg.Store.Role)),
		}
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), st, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Students:     handler.NewStudentHandler(studentSvc),
		Store:        handler.NewStoreHandler(st),
		Inscriptions: handler.NewInscriptionHandler(enrollmentSvc),
		Caja:         handler.NewCajaHandler(registerSvc),
		Metrics:      handler.NewMetricsHandler(metricsSvc),
	}, storeGuard...)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env), zap.String("store_backend", cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}

// storeBackend picks where the store snapshot is kept.
func storeBackend(cfg config.StoreConfig, rdb *redis.Client) (storage.Backend, error) {
	switch cfg.Backend {
	case config.StoreBackendFile, "":
		return storage.NewFileBackend(cfg.Dir)
	case config.StoreBackendRedis:
		if rdb == nil {
			return nil, errors.New("redis store backend requires a redis connection")
		}
		return storage.NewRedisBackend(rdb, ""), nil
	case config.StoreBackendMemory:
		return storage.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
}
