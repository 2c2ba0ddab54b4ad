// Package config resolves process configuration from flags, environment
// variables and an optional .env file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"agent-launchpad/internal/launch"
	"agent-launchpad/internal/postcodec"
	"agent-launchpad/internal/solana"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config is the resolved configuration of the server and the fee sweeper.
type Config struct {
	Port    int
	DataDir string
	Store   string

	PostgresDSN   string
	ClickhouseDSN string
	RedisURL      string

	RPCURL            string
	WSURL             string
	ClaimWalletSecret string
	PriorityFeeSOL    float64
	RouterProgramID   string

	PumpPortalAPIKey string

	MoltbookAPIBase string
	MoltbookAPIKey  string
	Trigger         string
	Submolt         string

	CooldownDays        float64
	MaxNameLen          int
	MaxDescriptionLen   int
	MaxSymbolLen        int
	PlatformWallet      string
	DefaultDevBuySOL    float64
	VerifyLivePost      bool
	AllowInlineFallback bool

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Parse resolves the configuration from args, using getenv for defaults.
func Parse(name string, args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	env := envReader{get: getenv}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	c := &Config{}
	fs.IntVar(&c.Port, "port", env.getInt("PORT", 4000), "HTTP listen port")
	fs.StringVar(&c.DataDir, "data-dir", env.getString("DATA_DIR", "data"), "Directory for JSON record files")
	fs.StringVar(&c.Store, "store", env.getString("STORE", StoreFile), "Record store backend (file, postgres)")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", env.getString("POSTGRES_DSN", ""), "PostgreSQL connection string")
	fs.StringVar(&c.ClickhouseDSN, "clickhouse-dsn", env.getString("CLICKHOUSE_DSN", ""), "ClickHouse connection string for fee history")
	fs.StringVar(&c.RedisURL, "redis-url", env.getString("REDIS_URL", ""), "Redis URL for cross-process locks")

	fs.StringVar(&c.RPCURL, "rpc-url", env.getString("RPC_URL", "https://api.mainnet-beta.solana.com"), "Solana RPC HTTP endpoint")
	fs.StringVar(&c.WSURL, "ws-url", env.getString("WS_URL", ""), "Solana WebSocket endpoint; polling when empty")
	fs.StringVar(&c.ClaimWalletSecret, "claim-wallet-secret", env.getString("CLAIM_WALLET_SECRET", ""), "Base58 secret key of the fee collector wallet")
	fs.Float64Var(&c.PriorityFeeSOL, "priority-fee-sol", env.getFloat("PRIORITY_FEE_SOL", 0.00005), "Default priority fee in SOL")
	fs.StringVar(&c.RouterProgramID, "fee-router-program-id", env.getString("FEE_ROUTER_PROGRAM_ID", solana.DefaultFeeRouterProgramID), "Fee router program id")

	fs.StringVar(&c.PumpPortalAPIKey, "pumpportal-api-key", env.getString("PUMPPORTAL_API_KEY", ""), "PumpPortal API key")

	fs.StringVar(&c.MoltbookAPIBase, "moltbook-api-base", env.getString("MOLTBOOK_API_BASE", "https://www.moltbook.com/api/v1"), "Moltbook API base URL")
	fs.StringVar(&c.MoltbookAPIKey, "moltbook-api-key", env.getString("MOLTBOOK_API_KEY", ""), "Moltbook API key of the service agent")
	fs.StringVar(&c.Trigger, "trigger", env.getString("MOLTBOOK_TRIGGER", postcodec.DefaultTrigger), "Launch post trigger line")
	fs.StringVar(&c.Submolt, "submolt", env.getString("MOLTBOOK_SUBMOLT", "solclawn"), "Community launch posts are published to")

	limits := postcodec.DefaultLimits()
	fs.Float64Var(&c.CooldownDays, "cooldown-days", env.getFloat("LAUNCH_COOLDOWN_DAYS", 7), "Days between launches of one agent")
	fs.IntVar(&c.MaxNameLen, "max-name-len", env.getInt("MAX_TOKEN_NAME_LEN", limits.MaxName), "Maximum token name length")
	fs.IntVar(&c.MaxDescriptionLen, "max-desc-len", env.getInt("MAX_TOKEN_DESC_LEN", limits.MaxDescription), "Maximum token description length")
	fs.IntVar(&c.MaxSymbolLen, "max-symbol-len", env.getInt("MAX_TOKEN_SYMBOL_LEN", limits.MaxSymbol), "Maximum token symbol length")
	fs.StringVar(&c.PlatformWallet, "platform-wallet", env.getString("PLATFORM_WALLET", ""), "Wallet receiving the platform fee share")
	fs.Float64Var(&c.DefaultDevBuySOL, "dev-buy-sol", env.getFloat("DEFAULT_DEV_BUY_SOL", 0.1), "Default dev buy in SOL")
	fs.BoolVar(&c.VerifyLivePost, "verify-live-post", env.getBool("VERIFY_LIVE_POST", false), "Always decode the live post instead of an inline payload")
	fs.BoolVar(&c.AllowInlineFallback, "allow-inline-fallback", env.getBool("ALLOW_INLINE_FALLBACK", false), "Use the inline payload when the live post does not decode")

	fs.StringVar(&c.LogLevel, "log-level", env.getString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", env.getString("LOG_FORMAT", "json"), "Log format (json, text)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if env.err != nil {
		return nil, env.err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("--postgres-dsn is required with --store=postgres")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CooldownDays < 0 {
		return errors.New("cooldown must not be negative")
	}
	if c.PlatformWallet != "" && !solana.IsValidAddress(c.PlatformWallet) {
		return errors.New("PLATFORM_WALLET is not a valid address")
	}
	return nil
}

// Cooldown converts CooldownDays to a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownDays * float64(24*time.Hour))
}

// Limits returns the codec field limits.
func (c *Config) Limits() postcodec.Limits {
	return postcodec.Limits{MaxName: c.MaxNameLen, MaxSymbol: c.MaxSymbolLen, MaxDescription: c.MaxDescriptionLen}
}

// LaunchConfig builds the launch policy. collector is the fee collector address.
func (c *Config) LaunchConfig(collector string) launch.Config {
	lc := launch.DefaultConfig()
	lc.APIKey = c.MoltbookAPIKey
	lc.Submolt = c.Submolt
	lc.Cooldown = c.Cooldown()
	lc.PlatformWallet = c.PlatformWallet
	lc.CollectorWallet = collector
	lc.RouterProgramID = c.RouterProgramID
	lc.DefaultDevBuySOL = c.DefaultDevBuySOL
	lc.DefaultPriorityFeeSOL = c.PriorityFeeSOL
	lc.VerifyLivePost = c.VerifyLivePost
	lc.AllowInlineFallback = c.AllowInlineFallback
	return lc
}

// envReader reads typed defaults and keeps the first malformed value.
type envReader struct {
	get func(string) string
	err error
}

func (e *envReader) getString(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return n
}

func (e *envReader) getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return f
}

func (e *envReader) getBool(key string, def bool) bool {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return b
}

func (e *envReader) fail(key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q", key, value)
	}
}
