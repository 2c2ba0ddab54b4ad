package launch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/moltbook"
	"agent-launchpad/internal/postcodec"
	"agent-launchpad/internal/pumpportal"
	"agent-launchpad/internal/storage/memory"
)

const (
	testPayer  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testMint   = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	otherMint  = "So11111111111111111111111111111111111111112"
	collector  = "11111111111111111111111111111111"
	testAgent  = "alpha"
	testPostID = "post-1"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSocial struct {
	status     string
	agent      string
	post       *moltbook.Post
	getPosts   int
	created    []string
	ensured    []string
	createErr  error
	identityFn func() (moltbook.Agent, error)
}

func (f *fakeSocial) AgentClaimStatus(context.Context, string) (string, error) {
	return f.status, nil
}

func (f *fakeSocial) AgentIdentity(context.Context, string) (moltbook.Agent, error) {
	if f.identityFn != nil {
		return f.identityFn()
	}
	return moltbook.Agent{Name: f.agent}, nil
}

func (f *fakeSocial) GetPost(_ context.Context, _, id string) (*moltbook.Post, error) {
	f.getPosts++
	if f.post == nil {
		return nil, &moltbook.APIError{Status: 404, Message: "Post not found"}
	}
	return f.post, nil
}

func (f *fakeSocial) CreatePost(_ context.Context, _, submolt, title, content string) (*moltbook.CreatedPost, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, content)
	return &moltbook.CreatedPost{ID: "new-post", URL: "https://www.moltbook.com/post/new-post"}, nil
}

func (f *fakeSocial) EnsureCommunity(_ context.Context, name string) error {
	f.ensured = append(f.ensured, name)
	return nil
}

func (f *fakeSocial) PostURL(id, u string) string {
	if u == "" {
		return "https://www.moltbook.com/post/" + id
	}
	return u
}

type fakeLauncher struct {
	mu       sync.Mutex
	metadata []pumpportal.MetadataFields
	mints    []pumpportal.MintRequest
	buildErr error
	// beforeUpload runs at the start of UploadMetadata, outside mu.
	beforeUpload func()
}

func (f *fakeLauncher) FetchImage(context.Context, string) (pumpportal.Image, error) {
	return pumpportal.Image{Data: []byte("png"), ContentType: "image/png"}, nil
}

func (f *fakeLauncher) UploadMetadata(_ context.Context, m pumpportal.MetadataFields, _ pumpportal.Image) (string, error) {
	if f.beforeUpload != nil {
		f.beforeUpload()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, m)
	return "ipfs://meta", nil
}

func (f *fakeLauncher) BuildMintTransaction(_ context.Context, req pumpportal.MintRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buildErr != nil {
		return "", f.buildErr
	}
	f.mints = append(f.mints, req)
	return "dHg=", nil
}

type fakeLedger struct {
	raw [][]byte
	sig string
	err error
}

func (f *fakeLedger) SubmitAndConfirm(_ context.Context, raw []byte) (string, error) {
	f.raw = append(f.raw, raw)
	return f.sig, f.err
}

type harness struct {
	svc      *Service
	tokens   *memory.TokenStore
	pending  *memory.PendingPostStore
	social   *fakeSocial
	launcher *fakeLauncher
	ledger   *fakeLedger
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	h := &harness{
		tokens:   memory.NewTokenStore(),
		pending:  memory.NewPendingPostStore(),
		social:   &fakeSocial{status: moltbook.StatusClaimed, agent: testAgent},
		launcher: &fakeLauncher{},
		ledger:   &fakeLedger{sig: "sig-1"},
	}
	cfg := DefaultConfig()
	cfg.APIKey = "service-key"
	cfg.CollectorWallet = collector
	if mutate != nil {
		mutate(&cfg)
	}
	h.svc = NewService(cfg, Deps{
		Tokens:   h.tokens,
		Pending:  h.pending,
		Social:   h.social,
		Launcher: h.launcher,
		Ledger:   h.ledger,
		Clock:    func() time.Time { return testNow },
	})
	return h
}

func payload(symbol string) domain.LaunchPayload {
	return domain.LaunchPayload{
		Name:        "Alpha Token",
		Symbol:      symbol,
		Wallet:      testPayer,
		Description: "first agent token",
		Image:       "https://i.imgur.com/alpha.png",
	}
}

func inlineRequest(symbol string) LaunchRequest {
	p := payload(symbol)
	return LaunchRequest{
		APIKey:  "agent-key",
		PostID:  testPostID,
		Payer:   testPayer,
		Mint:    testMint,
		Payload: &p,
	}
}

func seedToken(t *testing.T, h *harness, tok *domain.Token) {
	t.Helper()
	require.NoError(t, h.tokens.Upsert(context.Background(), tok))
}

func assertCode(t *testing.T, err error, code apperr.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperr.CodeOf(err))
	if msg != "" {
		e, _ := apperr.From(err)
		assert.Equal(t, msg, e.Message())
	}
}

func TestLaunch_InlinePayloadCommitsPendingToken(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res, err := h.svc.Launch(ctx, inlineRequest("ALPHA"))
	require.NoError(t, err)

	assert.Equal(t, testAgent, res.Agent)
	assert.Equal(t, testMint, res.Mint)
	assert.Equal(t, "dHg=", res.TxBase64)
	assert.Equal(t, "https://pump.fun/coin/"+testMint, res.TradeURL)
	assert.Equal(t, "https://www.moltbook.com/post/"+testPostID, res.PostURL)
	assert.Equal(t, Rewards{AgentShare: "80%", PlatformShare: "20%", AgentWallet: testPayer, PlatformWallet: collector}, res.Rewards)

	tok, err := h.tokens.Get(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenStatusPending, tok.Status)
	assert.Equal(t, "first agent token"+DescriptionSuffix, tok.Description)
	assert.NotEmpty(t, tok.RouterPDA)
	assert.Equal(t, []domain.FeeShare{
		{Wallet: testPayer, BasisPoints: 8000},
		{Wallet: collector, BasisPoints: 2000},
	}, tok.FeeSplit)

	require.Len(t, h.launcher.metadata, 1)
	assert.Equal(t, tok.Description, h.launcher.metadata[0].Description)
	require.Len(t, h.launcher.mints, 1)
	assert.Equal(t, 0.1, h.launcher.mints[0].DevBuySOL)
	assert.Equal(t, "ipfs://meta", h.launcher.mints[0].MetadataURI)
	assert.Zero(t, h.social.getPosts, "inline payload must not fetch the post")
}

func TestLaunch_PlatformWalletOverridesCollector(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.PlatformWallet = otherMint })

	res, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
	require.NoError(t, err)
	assert.Equal(t, otherMint, res.Rewards.PlatformWallet)
}

func TestLaunch_PolicyRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, h *harness)
		req   func() LaunchRequest
		msg   string
	}{
		{
			name:  "agent not claimed",
			setup: func(_ *testing.T, h *harness) { h.social.status = "pending_claim" },
			req:   func() LaunchRequest { return inlineRequest("ALPHA") },
			msg:   "Agent must be claimed",
		},
		{
			name: "post already used",
			setup: func(t *testing.T, h *harness) {
				seedToken(t, h, &domain.Token{Mint: otherMint, Symbol: "OLD", SocialPostID: testPostID, Status: domain.TokenStatusMinted})
			},
			req: func() LaunchRequest { return inlineRequest("ALPHA") },
			msg: "Post already used",
		},
		{
			name: "ticker taken case insensitively",
			setup: func(t *testing.T, h *harness) {
				seedToken(t, h, &domain.Token{Mint: otherMint, Symbol: "alpha", SocialPostID: "other", Status: domain.TokenStatusPending})
			},
			req: func() LaunchRequest { return inlineRequest("ALPHA") },
			msg: "Ticker already launched",
		},
		{
			name:  "payer differs from payload wallet",
			setup: func(*testing.T, *harness) {},
			req: func() LaunchRequest {
				r := inlineRequest("ALPHA")
				r.Payer = otherMint
				return r
			},
			msg: "Payer wallet must match JSON wallet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			tt.setup(t, h)

			_, err := h.svc.Launch(context.Background(), tt.req())
			assertCode(t, err, apperr.CodePolicy, tt.msg)
			assert.Empty(t, h.launcher.mints)
		})
	}
}

func TestLaunch_ValidationErrors(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.APIKey = "" })

	req := inlineRequest("ALPHA")
	req.APIKey = ""
	_, err := h.svc.Launch(context.Background(), req)
	assertCode(t, err, apperr.CodeValidation, "Missing Moltbook API key")

	req = inlineRequest("ALPHA")
	req.Mint = "not-base58-0OIl"
	_, err = h.svc.Launch(context.Background(), req)
	assertCode(t, err, apperr.CodeValidation, "Invalid mint address")

	req = inlineRequest("ALPHA")
	req.Payload.Symbol = "lower"
	_, err = h.svc.Launch(context.Background(), req)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestLaunch_CooldownBoundary(t *testing.T) {
	cooldown := DefaultConfig().Cooldown

	t.Run("exactly at cutoff is allowed", func(t *testing.T) {
		h := newHarness(t, nil)
		seedToken(t, h, &domain.Token{
			Mint: otherMint, Symbol: "OLD", Agent: testAgent, SocialPostID: "old",
			Status: domain.TokenStatusMinted, LaunchedAt: testNow.Add(-cooldown),
		})
		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		require.NoError(t, err)
	})

	t.Run("inside window is rejected", func(t *testing.T) {
		h := newHarness(t, nil)
		seedToken(t, h, &domain.Token{
			Mint: otherMint, Symbol: "OLD", Agent: testAgent, SocialPostID: "old",
			Status: domain.TokenStatusMinted, LaunchedAt: testNow.Add(-cooldown + time.Millisecond),
		})
		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		assertCode(t, err, apperr.CodePolicy, "Rate limit: 1 token per 7 days")
	})

	t.Run("unminted tokens do not count", func(t *testing.T) {
		h := newHarness(t, nil)
		seedToken(t, h, &domain.Token{
			Mint: otherMint, Symbol: "OLD", Agent: testAgent, SocialPostID: "old",
			Status: domain.TokenStatusPending, LaunchedAt: testNow,
		})
		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		require.NoError(t, err)
	})
}

func TestLaunch_StalePendingForSamePostIsReplaced(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	seedToken(t, h, &domain.Token{
		Mint: otherMint, Symbol: "ALPHA", SocialPostID: testPostID, Status: domain.TokenStatusPending,
	})

	_, err := h.svc.Launch(ctx, inlineRequest("ALPHA"))
	require.NoError(t, err)

	_, err = h.tokens.Get(ctx, otherMint)
	assert.Error(t, err, "stale pending token should be removed")
	tokens, err := h.tokens.List(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, testMint, tokens[0].Mint)
}

func TestLaunch_BuildFailureKeepsPendingToken(t *testing.T) {
	h := newHarness(t, nil)
	h.launcher.buildErr = errors.New("trade-local returned 500")
	ctx := context.Background()

	_, err := h.svc.Launch(ctx, inlineRequest("ALPHA"))
	assert.Equal(t, apperr.CodeExternalService, apperr.CodeOf(err))

	tok, err := h.tokens.Get(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenStatusPending, tok.Status)

	// A retry on the same post replaces the pending token.
	h.launcher.buildErr = nil
	_, err = h.svc.Launch(ctx, inlineRequest("ALPHA"))
	require.NoError(t, err)
}

func TestLaunch_LivePost(t *testing.T) {
	codec := postcodec.New(postcodec.DefaultTrigger, postcodec.DefaultLimits())
	live := func(author string) *moltbook.Post {
		return &moltbook.Post{
			ID:         testPostID,
			URL:        "https://www.moltbook.com/post/" + testPostID,
			Content:    "hello\n" + codec.Encode(payload("LIVE")),
			AuthorName: author,
		}
	}

	t.Run("decodes live post", func(t *testing.T) {
		h := newHarness(t, nil)
		h.social.post = live(testAgent)
		req := inlineRequest("ALPHA")
		req.Payload = nil

		_, err := h.svc.Launch(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "LIVE", h.launcher.mints[0].Symbol)
	})

	t.Run("rejects another agent's post", func(t *testing.T) {
		h := newHarness(t, nil)
		h.social.post = live("someone-else")
		req := inlineRequest("ALPHA")
		req.Payload = nil

		_, err := h.svc.Launch(context.Background(), req)
		assertCode(t, err, apperr.CodePolicy, "Post must belong to you")
	})

	t.Run("empty post is not found", func(t *testing.T) {
		h := newHarness(t, nil)
		h.social.post = &moltbook.Post{ID: testPostID}
		req := inlineRequest("ALPHA")
		req.Payload = nil

		_, err := h.svc.Launch(context.Background(), req)
		assertCode(t, err, apperr.CodeNotFound, "Post not found")
	})

	t.Run("verify mode prefers live post over inline", func(t *testing.T) {
		h := newHarness(t, func(c *Config) { c.VerifyLivePost = true })
		h.social.post = live(testAgent)

		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		require.NoError(t, err)
		assert.Equal(t, 1, h.social.getPosts)
		assert.Equal(t, "LIVE", h.launcher.mints[0].Symbol)
	})

	t.Run("undecodable live post without fallback is a format error", func(t *testing.T) {
		h := newHarness(t, func(c *Config) { c.VerifyLivePost = true })
		h.social.post = &moltbook.Post{ID: testPostID, Content: "no payload here", AuthorName: testAgent}

		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		assert.Equal(t, apperr.CodeFormat, apperr.CodeOf(err))
	})

	t.Run("undecodable live post falls back to inline when allowed", func(t *testing.T) {
		h := newHarness(t, func(c *Config) {
			c.VerifyLivePost = true
			c.AllowInlineFallback = true
		})
		h.social.post = &moltbook.Post{ID: testPostID, Content: "no payload here", AuthorName: testAgent}

		_, err := h.svc.Launch(context.Background(), inlineRequest("ALPHA"))
		require.NoError(t, err)
		assert.Equal(t, "ALPHA", h.launcher.mints[0].Symbol)
	})
}

func TestLaunch_CachedPost(t *testing.T) {
	t.Run("fresh entry is used and removed", func(t *testing.T) {
		h := newHarness(t, nil)
		ctx := context.Background()
		require.NoError(t, h.pending.Upsert(ctx, &domain.PendingPost{
			PostID: testPostID, Payload: payload("CACHED"), CreatedAt: testNow.Add(-time.Hour),
		}))
		req := inlineRequest("ALPHA")
		req.Payload = nil

		_, err := h.svc.Launch(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "CACHED", h.launcher.mints[0].Symbol)
		assert.Zero(t, h.social.getPosts)

		_, err = h.pending.Get(ctx, testPostID)
		assert.Error(t, err)
	})

	t.Run("expired entry is dropped", func(t *testing.T) {
		h := newHarness(t, nil)
		ctx := context.Background()
		require.NoError(t, h.pending.Upsert(ctx, &domain.PendingPost{
			PostID: testPostID, Payload: payload("CACHED"), CreatedAt: testNow.Add(-domain.PendingPostTTL - time.Second),
		}))

		_, err := h.svc.Launch(ctx, inlineRequest("ALPHA"))
		require.NoError(t, err)
		assert.Equal(t, "ALPHA", h.launcher.mints[0].Symbol)

		_, err = h.pending.Get(ctx, testPostID)
		assert.Error(t, err)
	})
}

func TestConfirm(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Confirm(ctx, testMint, "sig")
	assertCode(t, err, apperr.CodeNotFound, "Unknown mint")

	_, err = h.svc.Launch(ctx, inlineRequest("ALPHA"))
	require.NoError(t, err)

	tok, err := h.svc.Confirm(ctx, testMint, "sig-mint")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenStatusMinted, tok.Status)
	assert.Equal(t, "sig-mint", tok.Proofs.MintTx)

	again, err := h.svc.Confirm(ctx, testMint, "sig-mint")
	require.NoError(t, err)
	assert.Equal(t, tok.Proofs, again.Proofs)

	_, err = h.svc.Confirm(ctx, "", "")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestConfirmedPostCannotLaunchAgain(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Launch(ctx, inlineRequest("ALPHA"))
	require.NoError(t, err)
	_, err = h.svc.Confirm(ctx, testMint, "sig-mint")
	require.NoError(t, err)

	req := inlineRequest("BETA")
	req.Mint = otherMint
	_, err = h.svc.Launch(ctx, req)
	// The agent is now inside its cooldown, which is checked first.
	assertCode(t, err, apperr.CodePolicy, "Rate limit: 1 token per 7 days")
}

func TestCreatePost(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res, err := h.svc.CreatePost(ctx, CreatePostRequest{Payload: payload("POST")})
	require.NoError(t, err)
	assert.Equal(t, "new-post", res.PostID)
	assert.Equal(t, []string{"solclawn"}, h.social.ensured)
	require.Len(t, h.social.created, 1)
	assert.Equal(t, res.Content, h.social.created[0])

	entry, err := h.pending.Get(ctx, "new-post")
	require.NoError(t, err)
	assert.Equal(t, "POST", entry.Payload.Symbol)
	assert.Equal(t, testAgent, entry.AgentName)
	assert.Equal(t, testNow, entry.CreatedAt)

	// The cached post launches without re-fetching.
	_, err = h.svc.Launch(ctx, LaunchRequest{PostID: "new-post", Payer: testPayer, Mint: testMint})
	require.NoError(t, err)
	assert.Zero(t, h.social.getPosts)
}

func TestCreatePost_Errors(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.APIKey = "" })
	_, err := h.svc.CreatePost(context.Background(), CreatePostRequest{Payload: payload("POST")})
	assertCode(t, err, apperr.CodeValidation, "Missing Moltbook API key")

	h = newHarness(t, nil)
	h.social.createErr = errors.New("boom")
	_, err = h.svc.CreatePost(context.Background(), CreatePostRequest{Payload: payload("POST")})
	assert.Equal(t, apperr.CodeExternalService, apperr.CodeOf(err))

	h = newHarness(t, nil)
	p := payload("POST")
	p.Image = "https://example.com/page"
	_, err = h.svc.CreatePost(context.Background(), CreatePostRequest{Payload: p})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestStats(t *testing.T) {
	h := newHarness(t, nil)
	caps := []float64{10, 50, 30, 50, 5, 70}
	for i, c := range caps {
		seedToken(t, h, &domain.Token{
			Mint:         string(rune('a'+i)) + "-mint",
			Symbol:       string(rune('A' + i)),
			MarketCapUSD: c,
			Volume24hUSD: 1,
			CreatedAt:    testNow.Add(time.Duration(i) * time.Minute),
		})
	}

	st, err := h.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, st.TokenCount)
	assert.Equal(t, 215.0, st.TotalMarketCap)
	assert.Equal(t, 6.0, st.TotalVolume24h)
	require.Len(t, st.TopTokens, TopTokenCount)

	var order []string
	for _, s := range st.TopTokens {
		order = append(order, s.Symbol)
	}
	assert.Equal(t, []string{"F", "B", "D", "C", "A"}, order)
	assert.Equal(t, "agent", st.AllTokens[0].Agent)
	assert.Equal(t, TradeURL("a-mint"), st.AllTokens[0].TradeURL)
	assert.Equal(t, testNow, st.UpdatedAt)
}

func TestGetToken(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.GetToken(context.Background(), testMint)
	assertCode(t, err, apperr.CodeNotFound, "Unknown mint")
}

func TestSubmitSignedTransaction(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	sig, err := h.svc.SubmitSignedTransaction(ctx, "AQID")
	require.NoError(t, err)
	assert.Equal(t, "sig-1", sig)
	assert.Equal(t, [][]byte{{1, 2, 3}}, h.ledger.raw)

	_, err = h.svc.SubmitSignedTransaction(ctx, "%%%")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	h.ledger.err = errors.New("blockhash not found")
	_, err = h.svc.SubmitSignedTransaction(ctx, "AQID")
	assert.Equal(t, apperr.CodeExternalService, apperr.CodeOf(err))
}

func TestLaunch_ConcurrentLaunchesCommitOnce(t *testing.T) {
	tests := []struct {
		name   string
		second func() LaunchRequest
		msg    string
	}{
		{
			name: "same symbol",
			second: func() LaunchRequest {
				req := inlineRequest("ALPHA")
				req.PostID = "post-2"
				req.Mint = otherMint
				return req
			},
			msg: "Ticker already launched",
		},
		{
			name: "same post",
			second: func() LaunchRequest {
				req := inlineRequest("BETA")
				req.Mint = otherMint
				return req
			},
			msg: "Post already used",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()

			// Both launches pass the read-side checks before either commits.
			var arrived sync.WaitGroup
			arrived.Add(2)
			h.launcher.beforeUpload = func() {
				arrived.Done()
				arrived.Wait()
			}

			reqs := []LaunchRequest{inlineRequest("ALPHA"), tt.second()}
			errs := make([]error, len(reqs))
			var wg sync.WaitGroup
			for i, req := range reqs {
				wg.Add(1)
				go func(i int, req LaunchRequest) {
					defer wg.Done()
					_, errs[i] = h.svc.Launch(ctx, req)
				}(i, req)
			}
			wg.Wait()

			var failed []error
			for _, err := range errs {
				if err != nil {
					failed = append(failed, err)
				}
			}
			require.Len(t, failed, 1, "exactly one launch must commit")
			assertCode(t, failed[0], apperr.CodePolicy, tt.msg)

			tokens, err := h.tokens.List(ctx)
			require.NoError(t, err)
			assert.Len(t, tokens, 1)
			assert.Len(t, h.launcher.mints, 1)
		})
	}
}
