package launch

import (
	"context"
	"strings"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/moltbook"
	"agent-launchpad/internal/observability"
)

// CreatePostRequest asks the service to publish a launch post.
type CreatePostRequest struct {
	Payload domain.LaunchPayload
	Submolt string
	Title   string
}

// CreatePostResult identifies the published post.
type CreatePostResult struct {
	PostID  string `json:"post_id"`
	PostURL string `json:"post_url"`
	Content string `json:"content"`
}

// CreatePost validates the payload, publishes it as a launch post with the
// service key and caches it so a launch from that post needs no re-fetch.
func (s *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*CreatePostResult, error) {
	if s.cfg.APIKey == "" {
		return nil, apperr.Validation("Missing Moltbook API key")
	}
	payload, err := s.codec.NormalizeInput(req.Payload)
	if err != nil {
		return nil, err
	}

	submolt := strings.TrimSpace(req.Submolt)
	if submolt == "" {
		submolt = s.cfg.Submolt
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Launching " + payload.Symbol
	}

	if err := upstream(serviceSocial, "ensure_community", func() error {
		return s.social.EnsureCommunity(ctx, submolt)
	}); err != nil {
		return nil, err
	}

	content := s.codec.Encode(payload)
	var created *moltbook.CreatedPost
	if err := upstream(serviceSocial, "create_post", func() (err error) {
		created, err = s.social.CreatePost(ctx, s.cfg.APIKey, submolt, title, content)
		return err
	}); err != nil {
		return nil, err
	}

	// Best effort: the cache entry is still useful without an agent name.
	agent, err := s.social.AgentIdentity(ctx, s.cfg.APIKey)
	if err != nil {
		s.log.Debug("agent lookup after post failed", "error", err)
	}

	entry := &domain.PendingPost{
		PostID:    created.ID,
		PostURL:   created.URL,
		AgentName: agent.Name,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.pending.Upsert(ctx, entry); err != nil {
		return nil, storeErr("pending_posts", err)
	}
	observability.RecordPostCreated()
	s.log.Info("launch post created", "post_id", created.ID, "symbol", payload.Symbol, "submolt", submolt)

	return &CreatePostResult{PostID: created.ID, PostURL: created.URL, Content: content}, nil
}
