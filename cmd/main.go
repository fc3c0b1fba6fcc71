package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	grpchandler "github.com/dtroode/yourplaces-server/internal/api/grpc/handler"
	grpcrouter "github.com/dtroode/yourplaces-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/yourplaces-server/internal/api/grpc/server"
	httpctx "github.com/dtroode/yourplaces-server/internal/api/http/context"
	httprouter "github.com/dtroode/yourplaces-server/internal/api/http/router"
	httpserver "github.com/dtroode/yourplaces-server/internal/api/http/server"
	"github.com/dtroode/yourplaces-server/internal/config"
	"github.com/dtroode/yourplaces-server/internal/geocoding/cache"
	"github.com/dtroode/yourplaces-server/internal/geocoding/google"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
	"github.com/dtroode/yourplaces-server/internal/repository/postgres"
	"github.com/dtroode/yourplaces-server/internal/server"
	"github.com/dtroode/yourplaces-server/internal/service"
	storage "github.com/dtroode/yourplaces-server/internal/storage/minio"
	"github.com/dtroode/yourplaces-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	geocoder := newGeocoder(ctx, cfg, logger)

	userRepo := postgres.NewUserRepository(db)
	placeRepo := postgres.NewPlaceRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger.Component("token"))
	userService := service.NewUser(userRepo, tokenService, logger.Component("user"))
	placeService := service.NewPlace(placeRepo, userRepo, db, geocoder, storageClient, logger.Component("place"))

	engine := httprouter.New(
		httprouter.Services{Places: placeService, Users: userService, Tokens: tokenService},
		storageClient,
		httpctx.NewManager(),
		httprouter.Options{
			PublicDir:      cfg.PublicDir,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			AllowOrigins:   cfg.CORS.AllowOrigins,
		},
		logger.Component("http"),
	).Register()

	health := grpcrouter.New(map[string]grpchandler.Pinger{
		"postgres": db,
		"storage":  storageClient,
	}, logger.Component("grpc")).Register()

	servers := []model.Server{
		httpserver.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port)),
		grpcserver.NewGRPCServer(health, fmt.Sprintf(":%s", cfg.GRPC.Port)),
	}
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server", "name", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("server stopped with error", "name", s.Name(), "error", err)
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "name", s.Name(), "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newGeocoder returns the Google client, wrapped with the Redis cache when REDIS_ADDR is set.
func newGeocoder(ctx context.Context, cfg *config.Config, logger *logger.Logger) model.Geocoder {
	var geocoder model.Geocoder = google.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout)
	if cfg.Redis.Addr == "" {
		return geocoder
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, geocode cache will retry per request", "addr", cfg.Redis.Addr, "error", err)
	}

	return cache.NewGeocoder(geocoder, rdb, cfg.Redis.TTL, logger.Component("geocode-cache"))
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
