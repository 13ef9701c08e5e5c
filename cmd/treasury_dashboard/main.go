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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogzap "github.com/samber/slog-zap/v2"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"treasury_dashboard/internal/app/service"
	"treasury_dashboard/internal/infrastructure/configloader"
	"treasury_dashboard/internal/infrastructure/indexer"
	"treasury_dashboard/internal/infrastructure/nearclient"
	"treasury_dashboard/internal/infrastructure/restapi"
	"treasury_dashboard/internal/infrastructure/socialdb"
	"treasury_dashboard/internal/infrastructure/tokenmeta"
	"treasury_dashboard/internal/pkg/logger"
	"treasury_dashboard/internal/pkg/metrics"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	cfgPath := getEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.String("path", cfgPath), zap.Error(err))
	}

	// Bridge slog (used by services through port.Logger) onto the zap core.
	slogHandler := slogzap.Option{
		Level:  slogLevel(cfg.Logging.Level),
		Logger: zapLogger,
	}.NewZapHandler()
	slog.SetDefault(slog.New(slogHandler))

	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Configuration loaded", "path", cfgPath)

	metrics.MustRegisterMetrics()

	rpcTimeout := time.Duration(cfg.RPC.RequestTimeoutMillis) * time.Millisecond
	chainClient := nearclient.NewClient(cfg.RPC.URL, cfg.RPC.FallbackURLs, rpcTimeout, zapLogger)
	stakingRegistry := nearclient.NewStakingRegistryClient(chainClient, cfg.Treasury.StakingRegistryID, zapLogger)
	appLogger.Info("Chain RPC client initialized", "url", cfg.RPC.URL)

	indexerClient := indexer.NewClient(
		cfg.Indexer.BaseURL,
		time.Duration(cfg.Indexer.RequestTimeoutMillis)*time.Millisecond,
		cfg.Indexer.RequestsPerSecond,
		zapLogger,
	)
	tokenMetaClient := tokenmeta.NewClient(
		cfg.TokenMeta.BaseURL,
		time.Duration(cfg.TokenMeta.RequestTimeoutMillis)*time.Millisecond,
		cfg.TokenMeta.RequestsPerSecond,
		cfg.TokenMeta.MaxIDsPerRequest,
		zapLogger,
	)
	profileClient := socialdb.NewClient(
		cfg.Social.BaseURL,
		time.Duration(cfg.Social.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	appLogger.Info("External service clients initialized")

	metaCache := cache.New(time.Duration(cfg.TokenMeta.CacheTTLMinutes)*time.Minute, 10*time.Minute)
	pageCache := cache.New(time.Duration(cfg.Indexer.CacheTTLSeconds)*time.Second, time.Minute)
	profileCache := cache.New(time.Duration(cfg.Social.CacheTTLMinutes)*time.Minute, 10*time.Minute)

	intentsService := service.NewIntentsService(chainClient, tokenMetaClient, appLogger, cfg, metaCache)
	treasuryService := service.NewTreasuryService(chainClient, stakingRegistry, intentsService, appLogger, cfg)
	proposalService := service.NewProposalService(indexerClient, appLogger, cfg, pageCache)
	profileService := service.NewProfileService(profileClient, appLogger, profileCache)
	appLogger.Info("Services initialized")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())

	treasuryHandler := restapi.NewTreasuryHandler(treasuryService, profileService, appLogger)
	proposalHandler := restapi.NewProposalHandler(proposalService, appLogger)
	restapi.RegisterRoutes(router, treasuryHandler, proposalHandler)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
	swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		appLogger.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exiting")
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
