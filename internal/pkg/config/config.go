package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	SignerKeyed   = "keyed"
	SignerCommand = "command"
)

type Config struct {
	Port               string
	DbUrl              string
	StoreDriver        string
	RedisUrl           string
	RedisDb            int
	RpcUrl             string
	ChainId            int64
	NftContract        common.Address
	CoinFlipContract   common.Address
	DaycareContract    common.Address
	SignerMode         string
	SignerPrivateKey   string
	GoogleProjectId    string
	PollInterval       time.Duration
	SessionIdleTTL     time.Duration
	ImageBaseUrl       string
	ImagePlaceholder   string
	CorsAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", ":8080")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RPC_URL", "https://api.mainnet.abs.xyz")
	v.SetDefault("CHAIN_ID", 2741)
	v.SetDefault("NFT_CONTRACT_ADDRESS", "0x08533A2b16e3db03eeBD5b23210122f97dfcb97d")
	v.SetDefault("COINFLIP_CONTRACT_ADDRESS", "0xf6b8d2E0d36669Ed82059713BDc6ACfABe11Fde6")
	v.SetDefault("SIGNER_MODE", SignerCommand)
	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("IMAGE_BASE_URL", "https://f005.backblazeb2.com/file/sketchymilios/")
	v.SetDefault("IMAGE_PLACEHOLDER_URL", "https://via.placeholder.com/32x32?text=NF")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads the environment (and ./.env when present) into a Config.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetConfigFile("./.env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString("PORT"),
		DbUrl:            v.GetString("DB_URL"),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		RedisUrl:         v.GetString("REDIS_URL"),
		RedisDb:          v.GetInt("REDIS_DB"),
		RpcUrl:           v.GetString("RPC_URL"),
		ChainId:          v.GetInt64("CHAIN_ID"),
		SignerMode:       strings.ToLower(v.GetString("SIGNER_MODE")),
		SignerPrivateKey: v.GetString("SIGNER_PRIVATE_KEY"),
		GoogleProjectId:  v.GetString("GOOGLE_PROJECT_ID"),
		PollInterval:     v.GetDuration("POLL_INTERVAL"),
		SessionIdleTTL:   v.GetDuration("SESSION_IDLE_TTL"),
		ImageBaseUrl:     v.GetString("IMAGE_BASE_URL"),
		ImagePlaceholder: v.GetString("IMAGE_PLACEHOLDER_URL"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CorsAllowedOrigins = append(cfg.CorsAllowedOrigins, origin)
		}
	}

	var err error
	if cfg.NftContract, err = address(v, "NFT_CONTRACT_ADDRESS", true); err != nil {
		return nil, err
	}
	if cfg.CoinFlipContract, err = address(v, "COINFLIP_CONTRACT_ADDRESS", true); err != nil {
		return nil, err
	}
	if cfg.DaycareContract, err = address(v, "DAYCARE_CONTRACT_ADDRESS", false); err != nil {
		return nil, err
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", v.GetString("POLL_INTERVAL"))
	}

	if cfg.SessionIdleTTL < 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TTL must not be negative, got %s", v.GetString("SESSION_IDLE_TTL"))
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DbUrl == "" {
			return nil, fmt.Errorf("DB_URL is required for store driver %s", StorePostgres)
		}
	case StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.SignerMode {
	case SignerKeyed:
		if cfg.SignerPrivateKey == "" {
			return nil, fmt.Errorf("SIGNER_PRIVATE_KEY is required for signer mode %s", SignerKeyed)
		}
	case SignerCommand:
		if cfg.GoogleProjectId == "" {
			return nil, fmt.Errorf("GOOGLE_PROJECT_ID is required for signer mode %s", SignerCommand)
		}
	default:
		return nil, fmt.Errorf("unknown SIGNER_MODE %q", cfg.SignerMode)
	}

	return cfg, nil
}

// HasDaycare reports whether a daycare contract is configured.
func (c *Config) HasDaycare() bool {
	return c.DaycareContract != (common.Address{})
}

func address(v *viper.Viper, key string, required bool) (common.Address, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		if required {
			return common.Address{}, fmt.Errorf("%s is required", key)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s is not a valid address: %q", key, raw)
	}
	return common.HexToAddress(raw), nil
}
