// Package launch orchestrates agent token launches: post publication,
// launch validation and commit, and mint confirmation.
package launch

import (
	"context"
	"log/slog"
	"time"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/keylock"
	"agent-launchpad/internal/moltbook"
	"agent-launchpad/internal/observability"
	"agent-launchpad/internal/postcodec"
	"agent-launchpad/internal/pumpportal"
	"agent-launchpad/internal/solana"
	"agent-launchpad/internal/storage"
)

// Upstream service names used in errors and metrics.
const (
	serviceSocial = "moltbook"
	serviceLaunch = "pumpportal"
	serviceLedger = "solana"
)

// DescriptionSuffix is appended to every launched token description.
const DescriptionSuffix = "\n\n{LAUNCHED WITH SOLCLAWN}"

// Fee split applied to every launch, in basis points.
const (
	CreatorShareBps  = 8000
	PlatformShareBps = 2000
)

// SocialPlatform is the social network that gates launches.
type SocialPlatform interface {
	AgentClaimStatus(ctx context.Context, key string) (string, error)
	AgentIdentity(ctx context.Context, key string) (moltbook.Agent, error)
	GetPost(ctx context.Context, key, postID string) (*moltbook.Post, error)
	CreatePost(ctx context.Context, key, submolt, title, content string) (*moltbook.CreatedPost, error)
	EnsureCommunity(ctx context.Context, name string) error
	PostURL(id, u string) string
}

// LaunchService publishes metadata and builds mint transactions.
type LaunchService interface {
	FetchImage(ctx context.Context, url string) (pumpportal.Image, error)
	UploadMetadata(ctx context.Context, m pumpportal.MetadataFields, img pumpportal.Image) (string, error)
	BuildMintTransaction(ctx context.Context, req pumpportal.MintRequest) (string, error)
}

// Ledger submits signed transactions.
type Ledger interface {
	SubmitAndConfirm(ctx context.Context, raw []byte) (string, error)
}

var (
	_ SocialPlatform = (*moltbook.Client)(nil)
	_ LaunchService  = (*pumpportal.Client)(nil)
)

// Config holds launch policy.
type Config struct {
	// APIKey is the service's social key, used when a request carries none.
	APIKey string
	// Submolt is the community posts are published to.
	Submolt string
	// Cooldown is the minimum time between two minted launches of one agent.
	Cooldown time.Duration
	// PlatformWallet receives the platform share; CollectorWallet is used when empty.
	PlatformWallet  string
	CollectorWallet string
	// RouterProgramID is the fee router program the per-mint PDA derives from.
	RouterProgramID string

	DefaultDevBuySOL      float64
	DefaultPriorityFeeSOL float64

	// VerifyLivePost always decodes the live post instead of trusting an
	// inline payload; AllowInlineFallback then permits the inline payload
	// when the live post does not decode.
	VerifyLivePost      bool
	AllowInlineFallback bool
}

// DefaultConfig returns the production policy.
func DefaultConfig() Config {
	return Config{
		Submolt:               "solclawn",
		Cooldown:              7 * 24 * time.Hour,
		DefaultDevBuySOL:      0.1,
		DefaultPriorityFeeSOL: 0.00005,
		RouterProgramID:       solana.DefaultFeeRouterProgramID,
	}
}

// Deps are the collaborators of Service.
type Deps struct {
	Codec    *postcodec.Codec
	Tokens   storage.TokenStore
	Pending  storage.PendingPostStore
	Social   SocialPlatform
	Launcher LaunchService
	Ledger   Ledger
	Locks    keylock.Locker
	Logger   *slog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service is the launch orchestrator.
type Service struct {
	cfg      Config
	codec    *postcodec.Codec
	tokens   storage.TokenStore
	pending  storage.PendingPostStore
	social   SocialPlatform
	launcher LaunchService
	ledger   Ledger
	locks    keylock.Locker
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config, d Deps) *Service {
	if d.Codec == nil {
		d.Codec = postcodec.New(postcodec.DefaultTrigger, postcodec.DefaultLimits())
	}
	if d.Locks == nil {
		d.Locks = keylock.NewMemory()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if cfg.RouterProgramID == "" {
		cfg.RouterProgramID = solana.DefaultFeeRouterProgramID
	}
	return &Service{
		cfg:      cfg,
		codec:    d.Codec,
		tokens:   d.Tokens,
		pending:  d.Pending,
		social:   d.Social,
		launcher: d.Launcher,
		ledger:   d.Ledger,
		locks:    d.Locks,
		log:      d.Logger,
		now:      d.Clock,
	}
}

// platformWallet is the recipient of the platform share.
func (s *Service) platformWallet() string {
	if s.cfg.PlatformWallet != "" {
		return s.cfg.PlatformWallet
	}
	return s.cfg.CollectorWallet
}

// upstream runs one external call, recording its latency, and wraps a
// failure as an EXTERNAL_SERVICE error.
func upstream(service, method string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.ObserveUpstream(service, method, start, err)
	if err != nil {
		return apperr.External(service, err)
	}
	return nil
}

// storeErr wraps a record store failure.
func storeErr(collection string, err error) error {
	observability.RecordStoreWriteError(collection)
	return apperr.Wrap(apperr.CodeInternal, err, "persist "+collection)
}
