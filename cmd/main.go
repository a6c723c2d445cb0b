package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"github.com/mymilios/mymilios-backend/internal/coinflip"
	"github.com/mymilios/mymilios-backend/internal/daycare"
	"github.com/mymilios/mymilios-backend/internal/nft"
	"github.com/mymilios/mymilios-backend/internal/pkg/blockchain"
	"github.com/mymilios/mymilios-backend/internal/pkg/config"
	"github.com/mymilios/mymilios-backend/internal/pkg/middleware"
	"github.com/mymilios/mymilios-backend/internal/pkg/pubsub"
	"github.com/mymilios/mymilios-backend/internal/pkg/store"
	pkgws "github.com/mymilios/mymilios-backend/internal/pkg/ws"
	"github.com/mymilios/mymilios-backend/internal/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const rpcDialAttempts = 5

func main() {
	setupZerolog()
	cfg := setupConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := blockchain.Dial(ctx, cfg.RpcUrl, cfg.ChainId, rpcDialAttempts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RPC")
	}
	defer client.Close()

	watermarks := setupWatermarkStore(ctx, cfg)
	signer, subscriber := setupSigner(ctx, cfg, client)
	if subscriber != nil {
		defer subscriber.Close()
	}

	nftService := nft.NewService(
		blockchain.NewNftCollection(cfg.NftContract, client),
		signer,
		map[string]common.Address{
			nft.OperatorCoinFlip: cfg.CoinFlipContract,
			nft.OperatorDaycare:  cfg.DaycareContract,
		},
		nft.NewImageResolver(nil, cfg.ImageBaseUrl, cfg.ImagePlaceholder),
	)
	coinFlipService := coinflip.NewService(
		blockchain.NewCoinFlip(cfg.CoinFlipContract, client),
		nftService,
		signer,
		watermarks,
		pkgws.NewNotificationHub(),
		cfg.SessionIdleTTL,
	)

	var daycareService *daycare.Service
	if cfg.HasDaycare() {
		daycareService = daycare.NewService(blockchain.NewDaycare(cfg.DaycareContract, client), nftService, signer)
	}

	apiRouter := setupApiRouter(ctx, cfg, coinFlipService, nftService, daycareService, subscriber)

	go coinflip.NewPoller(coinFlipService, cfg.PollInterval).Run(ctx)

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Server shutdown incomplete")
	}
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg
}

func setupWatermarkStore(ctx context.Context, cfg *config.Config) store.WatermarkStore {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		redisStore, err := store.NewRedisWatermarkStore(ctx, cfg.RedisUrl, cfg.RedisDb)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize redis")
		}
		return redisStore
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory watermark store, history is refetched after restart")
		return store.NewMemoryWatermarkStore()
	default:
		gormStore := store.NewGormWatermarkStore(setupDb(cfg.DbUrl))
		if err := gormStore.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		return gormStore
	}
}

func setupDb(dbUrl string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dbUrl), &gorm.Config{})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	sqlDb, _ := db.DB()

	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	return db
}

// setupSigner returns the transaction signer. In command mode the pubsub client is also
// returned so failures published by the custodial signer can be consumed.
func setupSigner(ctx context.Context, cfg *config.Config, client *ethclient.Client) (blockchain.Signer, *pubsub.Client) {
	if cfg.SignerMode == config.SignerKeyed {
		signer, err := blockchain.NewKeyedSigner(client, cfg.SignerPrivateKey, cfg.ChainId)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load signer key")
		}
		log.Info().Str("address", signer.Address().Hex()).Msg("Using keyed signer")
		return signer, nil
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GoogleProjectId)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pubsub")
	}
	log.Info().Str("topic", blockchain.CommandTopic).Msg("Using command signer")
	return blockchain.NewCommandSigner(pubsubClient), pubsubClient
}

func setupApiRouter(
	ctx context.Context,
	cfg *config.Config,
	coinFlipService *coinflip.Service,
	nftService *nft.Service,
	daycareService *daycare.Service,
	subscriber *pubsub.Client,
) *gin.Engine {
	apiRouter := gin.New()
	middleware.RegisterGlobalMiddleware(apiRouter, cfg.CorsAllowedOrigins)

	routerGroup := apiRouter.Group("/mymilios-api")

	ws.RegisterRoutes(routerGroup, coinFlipService, cfg.CorsAllowedOrigins)
	nft.RegisterRoutes(routerGroup, nftService)
	var txFailures coinflip.Subscriber
	if subscriber != nil {
		txFailures = subscriber
	}
	coinflip.RegisterRoutesAndSubscriptions(ctx, routerGroup, coinFlipService, txFailures)
	if daycareService != nil {
		daycare.RegisterRoutes(routerGroup, daycareService)
	}

	return apiRouter
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
