package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"treasury_dashboard/internal/app/service"
	"treasury_dashboard/internal/infrastructure/configloader"
	"treasury_dashboard/internal/infrastructure/nearclient"
	"treasury_dashboard/internal/infrastructure/tokenmeta"
	"treasury_dashboard/internal/pkg/logger"
	"treasury_dashboard/internal/pkg/utils"
)

// treasuryctl fetches a single treasury snapshot and prints it as JSON.
// Useful for poking at a treasury without running the full server.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	cfgPath := flag.String("config", "config/config.yml", "path to the YAML config file")
	treasuryID := flag.String("treasury", "", "treasury account id to inspect")
	timeout := flag.Duration("timeout", 60*time.Second, "overall fetch timeout")
	flag.Parse()

	if *treasuryID == "" {
		log.Fatal("missing required -treasury flag")
	}
	if !utils.IsValidAccountID(*treasuryID) {
		log.Fatalf("invalid treasury account id: %s", *treasuryID)
	}

	cfg, err := configloader.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Infof("configuration loaded from %s", *cfgPath)

	// Services log through slog; keep that quiet unless asked for.
	logger.InitSlog(cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()

	zapLogger := zap.NewNop()
	if cfg.Logging.Level == "debug" {
		zapLogger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to initialize zap logger: %v", err)
		}
	}

	rpcTimeout := time.Duration(cfg.RPC.RequestTimeoutMillis) * time.Millisecond
	chainClient := nearclient.NewClient(cfg.RPC.URL, cfg.RPC.FallbackURLs, rpcTimeout, zapLogger)
	stakingRegistry := nearclient.NewStakingRegistryClient(chainClient, cfg.Treasury.StakingRegistryID, zapLogger)
	tokenMetaClient := tokenmeta.NewClient(
		cfg.TokenMeta.BaseURL,
		time.Duration(cfg.TokenMeta.RequestTimeoutMillis)*time.Millisecond,
		cfg.TokenMeta.RequestsPerSecond,
		cfg.TokenMeta.MaxIDsPerRequest,
		zapLogger,
	)

	metaCache := cache.New(time.Duration(cfg.TokenMeta.CacheTTLMinutes)*time.Minute, 10*time.Minute)
	intentsService := service.NewIntentsService(chainClient, tokenMetaClient, appLogger, cfg, metaCache)
	treasuryService := service.NewTreasuryService(chainClient, stakingRegistry, intentsService, appLogger, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Infof("fetching snapshot for %s", *treasuryID)
	snapshot, err := treasuryService.Refresh(ctx, *treasuryID)
	if err != nil {
		log.Fatalf("failed to fetch snapshot: %v", err)
	}
	for _, fe := range snapshot.Errors {
		log.Warnf("section %s degraded: %s", fe.Section, fe.Message)
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode snapshot: %v", err)
	}
	fmt.Println(string(out))
}
