package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/keylock"
	"agent-launchpad/internal/moltbook"
	"agent-launchpad/internal/observability"
	"agent-launchpad/internal/pumpportal"
	"agent-launchpad/internal/solana"
	"agent-launchpad/internal/storage"
)

// LaunchRequest asks to launch the token described by a social post.
type LaunchRequest struct {
	APIKey         string
	PostID         string
	Payer          string
	Mint           string
	DevBuySOL      *float64
	PriorityFeeSOL *float64
	PostURL        string
	Payload        *domain.LaunchPayload
}

// Rewards describes the fee split of a launch.
type Rewards struct {
	AgentShare     string `json:"agent_share"`
	PlatformShare  string `json:"platform_share"`
	AgentWallet    string `json:"agent_wallet"`
	PlatformWallet string `json:"platform_wallet"`
}

// LaunchResult carries the unsigned mint transaction for the payer.
type LaunchResult struct {
	Agent    string  `json:"agent,omitempty"`
	PostID   string  `json:"post_id"`
	PostURL  string  `json:"post_url"`
	Mint     string  `json:"mint"`
	TradeURL string  `json:"pumpfun_url"`
	TxBase64 string  `json:"tx_base64"`
	Rewards  Rewards `json:"rewards"`
}

// TradeURL is the pump.fun page of a mint.
func TradeURL(mint string) string {
	return "https://pump.fun/coin/" + mint
}

// Launch validates a launch request against the agent, the post and the
// registry, publishes metadata, commits a pending token and returns the
// unsigned mint transaction. Nothing is committed before metadata is
// published; the pending token stays if building the transaction fails.
func (s *Service) Launch(ctx context.Context, req LaunchRequest) (res *LaunchResult, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.CodeOf(err))
		}
		observability.RecordLaunch(outcome)
	}()

	req.PostID = strings.TrimSpace(req.PostID)
	req.Payer = strings.TrimSpace(req.Payer)
	req.Mint = strings.TrimSpace(req.Mint)
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}
	log := s.log.With("post_id", req.PostID, "mint", req.Mint)

	var status string
	if err := upstream(serviceSocial, "agent_status", func() (err error) {
		status, err = s.social.AgentClaimStatus(ctx, req.APIKey)
		return err
	}); err != nil {
		return nil, err
	}
	if status != moltbook.StatusClaimed {
		return nil, apperr.Policy("Agent must be claimed")
	}

	var agent moltbook.Agent
	if err := upstream(serviceSocial, "agent_identity", func() (err error) {
		agent, err = s.social.AgentIdentity(ctx, req.APIKey)
		return err
	}); err != nil {
		return nil, err
	}
	log = log.With("agent", agent.Name)

	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load tokens")
	}
	if s.inCooldown(tokens, agent.Name) {
		return nil, apperr.Policy("Rate limit: 1 token per %s", formatDays(s.cfg.Cooldown))
	}
	if postUsed(tokens, req.PostID) {
		return nil, apperr.Policy("Post already used")
	}
	tokens, err = s.clearStalePending(ctx, tokens, req.PostID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolvePayload(ctx, req, agent.Name)
	if err != nil {
		return nil, err
	}
	payload := resolved.payload

	if symbolUsed(tokens, payload.Symbol) {
		return nil, apperr.Policy("Ticker already launched")
	}
	if payload.Wallet != req.Payer {
		return nil, apperr.Policy("Payer wallet must match JSON wallet")
	}

	description := payload.Description + DescriptionSuffix
	var img pumpportal.Image
	if err := upstream(serviceLaunch, "fetch_image", func() (err error) {
		img, err = s.launcher.FetchImage(ctx, payload.Image)
		return err
	}); err != nil {
		return nil, err
	}
	var metadataURI string
	if err := upstream(serviceLaunch, "upload_metadata", func() (err error) {
		metadataURI, err = s.launcher.UploadMetadata(ctx, pumpportal.MetadataFields{
			Name:        payload.Name,
			Symbol:      payload.Symbol,
			Description: description,
			Website:     payload.Website,
			Twitter:     payload.Twitter,
			Telegram:    payload.Telegram,
		}, img)
		return err
	}); err != nil {
		return nil, err
	}

	token, err := s.commit(ctx, req, agent.Name, resolved.postURL, payload, description)
	if err != nil {
		return nil, err
	}
	log.Info("launch committed", "symbol", token.Symbol)

	var txBase64 string
	if err := upstream(serviceLaunch, "build_mint_tx", func() (err error) {
		txBase64, err = s.launcher.BuildMintTransaction(ctx, pumpportal.MintRequest{
			Payer:          req.Payer,
			Mint:           req.Mint,
			Name:           payload.Name,
			Symbol:         payload.Symbol,
			MetadataURI:    metadataURI,
			DevBuySOL:      valueOr(req.DevBuySOL, s.cfg.DefaultDevBuySOL),
			PriorityFeeSOL: valueOr(req.PriorityFeeSOL, s.cfg.DefaultPriorityFeeSOL),
		})
		return err
	}); err != nil {
		log.Warn("mint transaction build failed, pending token kept", "error", err)
		return nil, err
	}

	if resolved.cached {
		if err := s.pending.Delete(ctx, req.PostID); err != nil {
			return nil, storeErr("pending_posts", err)
		}
	}

	return &LaunchResult{
		Agent:    agent.Name,
		PostID:   req.PostID,
		PostURL:  token.SocialPostURL,
		Mint:     token.Mint,
		TradeURL: token.TradeURL,
		TxBase64: txBase64,
		Rewards: Rewards{
			AgentShare:     "80%",
			PlatformShare:  "20%",
			AgentWallet:    payload.Wallet,
			PlatformWallet: s.platformWallet(),
		},
	}, nil
}

func (s *Service) validateRequest(req *LaunchRequest) error {
	if req.PostID == "" {
		return apperr.Validation("post_id is required")
	}
	if req.Payer == "" {
		return apperr.Validation("payer_public_key is required")
	}
	if req.Mint == "" {
		return apperr.Validation("mint_public_key is required")
	}
	if !solana.IsValidAddress(req.Payer) {
		return apperr.Validation("Invalid payer wallet address")
	}
	if !solana.IsValidAddress(req.Mint) {
		return apperr.Validation("Invalid mint address")
	}
	if req.DevBuySOL != nil && *req.DevBuySOL < 0 {
		return apperr.Validation("dev_buy_sol must not be negative")
	}
	if req.PriorityFeeSOL != nil && *req.PriorityFeeSOL < 0 {
		return apperr.Validation("priority_fee must not be negative")
	}
	if req.APIKey == "" {
		req.APIKey = s.cfg.APIKey
	}
	if req.APIKey == "" {
		return apperr.Validation("Missing Moltbook API key")
	}
	return nil
}

// inCooldown reports whether agent has a minted token whose launch time is
// strictly after now minus the cooldown.
func (s *Service) inCooldown(tokens []*domain.Token, agent string) bool {
	if agent == "" {
		return false
	}
	cutoff := s.now().Add(-s.cfg.Cooldown)
	for _, t := range tokens {
		if t.Agent == agent && t.IsMinted() && t.ActivityTime().After(cutoff) {
			return true
		}
	}
	return false
}

func postUsed(tokens []*domain.Token, postID string) bool {
	for _, t := range tokens {
		if t.SocialPostID == postID && t.IsMinted() {
			return true
		}
	}
	return false
}

func postBound(tokens []*domain.Token, postID string) bool {
	for _, t := range tokens {
		if t.SocialPostID == postID {
			return true
		}
	}
	return false
}

func symbolUsed(tokens []*domain.Token, symbol string) bool {
	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return true
		}
	}
	return false
}

func mintUsed(tokens []*domain.Token, mint string) bool {
	for _, t := range tokens {
		if t.Mint == mint {
			return true
		}
	}
	return false
}

// clearStalePending deletes unminted tokens left by earlier attempts on the
// same post and returns the remaining tokens.
func (s *Service) clearStalePending(ctx context.Context, tokens []*domain.Token, postID string) ([]*domain.Token, error) {
	kept := tokens[:0:0]
	for _, t := range tokens {
		if t.SocialPostID == postID && !t.IsMinted() {
			if err := s.tokens.Delete(ctx, t.Mint); err != nil {
				return nil, storeErr("tokens", err)
			}
			s.log.Info("stale pending token removed", "post_id", postID, "mint", t.Mint)
			continue
		}
		kept = append(kept, t)
	}
	return kept, nil
}

type resolvedPayload struct {
	payload domain.LaunchPayload
	postURL string
	cached  bool
}

// resolvePayload picks the launch payload: the pending post cache first,
// then the inline payload, then the live post.
func (s *Service) resolvePayload(ctx context.Context, req LaunchRequest, agentName string) (resolvedPayload, error) {
	cached, err := s.cachedPost(ctx, req.PostID)
	if err != nil {
		return resolvedPayload{}, err
	}
	if cached != nil {
		p, err := s.codec.NormalizeInput(cached.Payload)
		if err != nil {
			return resolvedPayload{}, err
		}
		return resolvedPayload{payload: p, postURL: s.social.PostURL(req.PostID, cached.PostURL), cached: true}, nil
	}

	if req.Payload != nil && !s.cfg.VerifyLivePost {
		p, err := s.codec.NormalizeInput(*req.Payload)
		if err != nil {
			return resolvedPayload{}, err
		}
		return resolvedPayload{payload: p, postURL: s.social.PostURL(req.PostID, req.PostURL)}, nil
	}

	var post *moltbook.Post
	if err := upstream(serviceSocial, "get_post", func() (err error) {
		post, err = s.social.GetPost(ctx, req.APIKey, req.PostID)
		return err
	}); err != nil {
		return resolvedPayload{}, err
	}
	if post == nil || strings.TrimSpace(post.Content) == "" {
		return resolvedPayload{}, apperr.NotFound("Post not found")
	}
	if agentName != "" && post.AuthorName != "" && agentName != post.AuthorName {
		return resolvedPayload{}, apperr.Policy("Post must belong to you")
	}

	postURL := s.social.PostURL(req.PostID, post.URL)
	p, decodeErr := s.codec.Decode(post.Content)
	if decodeErr == nil {
		return resolvedPayload{payload: p, postURL: postURL}, nil
	}
	if req.Payload == nil || (s.cfg.VerifyLivePost && !s.cfg.AllowInlineFallback) {
		return resolvedPayload{}, decodeErr
	}
	s.log.Info("live post did not decode, using inline payload", "post_id", req.PostID, "error", decodeErr)
	p, err = s.codec.NormalizeInput(*req.Payload)
	if err != nil {
		return resolvedPayload{}, err
	}
	return resolvedPayload{payload: p, postURL: postURL}, nil
}

// cachedPost returns the unexpired pending post, deleting it when expired.
func (s *Service) cachedPost(ctx context.Context, postID string) (*domain.PendingPost, error) {
	p, err := s.pending.Get(ctx, postID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load pending post")
	}
	if p.Expired(s.now()) {
		if err := s.pending.Delete(ctx, postID); err != nil {
			return nil, storeErr("pending_posts", err)
		}
		return nil, nil
	}
	return p, nil
}

// commit re-validates uniqueness under the post, symbol and mint locks and
// persists the pending token.
func (s *Service) commit(ctx context.Context, req LaunchRequest, agent, postURL string, payload domain.LaunchPayload, description string) (*domain.Token, error) {
	unlock, err := s.locks.Lock(ctx,
		keylock.PostKey(req.PostID),
		keylock.SymbolKey(payload.Symbol),
		keylock.MintKey(req.Mint),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "acquire launch locks")
	}
	defer unlock()

	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load tokens")
	}
	// Stale pending tokens for this post were cleared before the locks were
	// taken, so any token still bound to it came from a concurrent launch.
	if postBound(tokens, req.PostID) {
		return nil, apperr.Policy("Post already used")
	}
	if symbolUsed(tokens, payload.Symbol) {
		return nil, apperr.Policy("Ticker already launched")
	}
	if mintUsed(tokens, req.Mint) {
		return nil, apperr.Policy("Mint already registered")
	}

	split, err := domain.NewFeeSplit(
		domain.FeeShare{Wallet: payload.Wallet, BasisPoints: CreatorShareBps},
		domain.FeeShare{Wallet: s.platformWallet(), BasisPoints: PlatformShareBps},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "build fee split")
	}

	routerPDA, err := solana.RouterPDA(req.Mint, s.cfg.RouterProgramID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "derive router address")
	}

	now := s.now().UTC()
	token := &domain.Token{
		Mint:          req.Mint,
		Name:          payload.Name,
		Symbol:        payload.Symbol,
		Description:   description,
		Image:         payload.Image,
		Website:       payload.Website,
		Twitter:       payload.Twitter,
		Telegram:      payload.Telegram,
		CreatorWallet: payload.Wallet,
		Agent:         agent,
		SocialPostID:  req.PostID,
		SocialPostURL: postURL,
		TradeURL:      TradeURL(req.Mint),
		RouterPDA:     routerPDA,
		FeeSplit:      split,
		Status:        domain.TokenStatusPending,
		CreatedAt:     now,
		LaunchedAt:    now,
	}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, storeErr("tokens", err)
	}
	return token, nil
}

// Confirm records the mint signature and marks the token minted. Repeating
// the same signature is a no-op.
func (s *Service) Confirm(ctx context.Context, mint, signature string) (*domain.Token, error) {
	mint = strings.TrimSpace(mint)
	signature = strings.TrimSpace(signature)
	if mint == "" || signature == "" {
		return nil, apperr.Validation("mint and signature are required")
	}

	unlock, err := s.locks.Lock(ctx, keylock.MintKey(mint))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "acquire mint lock")
	}
	defer unlock()

	token, err := s.tokens.Get(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Unknown mint")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load token")
	}

	if token.Status == domain.TokenStatusMinted && token.Proofs.MintTx == signature {
		return token, nil
	}

	token.Proofs.MintTx = signature
	token.Status = domain.TokenStatusMinted
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, storeErr("tokens", err)
	}
	observability.RecordConfirmation()
	s.log.Info("mint confirmed", "mint", mint, "signature", signature)
	return token, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// formatDays renders a cooldown as whole or fractional days.
func formatDays(d time.Duration) string {
	days := d.Hours() / 24
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%g days", days)
}
