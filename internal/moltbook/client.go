// Package moltbook is a client for the Moltbook social platform API.
//
// Responses come in several shapes (bare object, {post: ...},
// {data: {post: ...}}); the client flattens them before decoding.
package moltbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"
)

// Default endpoints.
const (
	DefaultAPIBase = "https://www.moltbook.com/api/v1"
	DefaultWebBase = "https://www.moltbook.com"
	DefaultTimeout = 30 * time.Second
)

// CommunityDescription is used when the service creates its submolt.
const CommunityDescription = "Solclawn launches on Solana via Pump.fun."

// StatusClaimed is the claim status of an agent bound to a human owner.
const StatusClaimed = "claimed"

// APIError is a failed Moltbook call. Message carries the upstream text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Agent is the identity behind an API key.
type Agent struct {
	Name string
}

// Post is a published post.
type Post struct {
	ID         string
	URL        string
	Content    string
	AuthorName string
}

// CreatedPost identifies a post the client just published.
type CreatedPost struct {
	ID  string
	URL string
}

// Client talks to the Moltbook REST API.
type Client struct {
	http    *resty.Client
	apiKey  string
	webBase string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIKey sets the service's own key, used for community management.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithWebBase sets the site root used to build post URLs.
func WithWebBase(base string) ClientOption {
	return func(c *Client) {
		c.webBase = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		base := c.http.BaseURL
		c.http = resty.NewWithClient(hc).SetBaseURL(base)
	}
}

// NewClient creates a client for the API rooted at apiBase.
func NewClient(apiBase string, opts ...ClientOption) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	c := &Client{
		http:    resty.New().SetBaseURL(strings.TrimRight(apiBase, "/")).SetTimeout(DefaultTimeout),
		webBase: DefaultWebBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAPIKey reports whether a service key is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// AgentClaimStatus returns the claim status of the agent owning key.
func (c *Client) AgentClaimStatus(ctx context.Context, key string) (string, error) {
	data, err := c.do(ctx, key, http.MethodGet, "/agents/status", nil)
	if err != nil {
		return "", err
	}
	var shape struct {
		Status string `json:"status"`
		Data   struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := decode(data, &shape); err != nil {
		return "", fmt.Errorf("decode agent status: %w", err)
	}
	return firstNonEmpty(shape.Status, shape.Data.Status), nil
}

// AgentIdentity returns the agent owning key. Name may be empty when the
// platform does not report one.
func (c *Client) AgentIdentity(ctx context.Context, key string) (Agent, error) {
	data, err := c.do(ctx, key, http.MethodGet, "/agents/me", nil)
	if err != nil {
		return Agent{}, err
	}
	var shape struct {
		Name  string `json:"name"`
		Agent struct {
			Name string `json:"name"`
		} `json:"agent"`
		Data struct {
			Agent struct {
				Name string `json:"name"`
			} `json:"agent"`
		} `json:"data"`
	}
	if err := decode(data, &shape); err != nil {
		return Agent{}, fmt.Errorf("decode agent: %w", err)
	}
	return Agent{Name: firstNonEmpty(shape.Agent.Name, shape.Data.Agent.Name, shape.Name)}, nil
}

// GetPost fetches a post by id. A post without content is returned as is;
// deciding whether that counts as missing is the caller's concern.
func (c *Client) GetPost(ctx context.Context, key, postID string) (*Post, error) {
	data, err := c.do(ctx, key, http.MethodGet, "/posts/"+url.PathEscape(postID), nil)
	if err != nil {
		return nil, err
	}

	var shape postShape
	if err := decode(unwrapPost(data), &shape); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &Post{
		ID:         shape.ID,
		URL:        shape.URL,
		Content:    shape.Content,
		AuthorName: firstNonEmpty(shape.Author.Name, shape.Author.Username),
	}, nil
}

// CreatePost publishes content to submolt. The returned URL is absolute;
// it is built from the id when the platform omits it or returns a path.
func (c *Client) CreatePost(ctx context.Context, key, submolt, title, content string) (*CreatedPost, error) {
	body := map[string]string{
		"submolt": submolt,
		"title":   title,
		"content": content,
	}
	data, err := c.do(ctx, key, http.MethodPost, "/posts", body)
	if err != nil {
		return nil, err
	}

	var inner, outer postShape
	if err := decode(unwrapPost(data), &inner); err != nil {
		return nil, fmt.Errorf("decode created post: %w", err)
	}
	if err := decode(data, &outer); err != nil {
		return nil, fmt.Errorf("decode created post: %w", err)
	}

	id := firstNonEmpty(inner.ID, inner.Post.ID, outer.Post.ID, outer.Data.Post.ID)
	if id == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "Post id missing from Moltbook response"}
	}
	u := firstNonEmpty(inner.URL, inner.Post.URL, outer.Post.URL, outer.Data.Post.URL)
	return &CreatedPost{ID: id, URL: c.PostURL(id, u)}, nil
}

// EnsureCommunity creates the submolt when missing. It is a no-op without a
// service key, and an existing community is not an error.
func (c *Client) EnsureCommunity(ctx context.Context, name string) error {
	if c.apiKey == "" {
		return nil
	}
	body := map[string]string{
		"name":         name,
		"display_name": name,
		"description":  CommunityDescription,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(body).
		Post("/submolts")
	if err != nil {
		return fmt.Errorf("create submolt: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}

	msg := errorMessage(parseBody(resp.Body()), "")
	if resp.StatusCode() == http.StatusConflict || alreadyExists.MatchString(msg) {
		return nil
	}
	if msg == "" {
		msg = "Failed to create submolt"
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

var alreadyExists = regexp.MustCompile(`(?i)already`)

// PostURL returns the absolute URL of a post, falling back to the canonical
// web URL when u is empty or relative.
func (c *Client) PostURL(id, u string) string {
	if u == "" || strings.HasPrefix(u, "/") {
		return c.webBase + "/post/" + id
	}
	return u
}

// do performs a JSON call. Non-2xx responses and bodies with
// "success": false become *APIError.
func (c *Client) do(ctx context.Context, key, method, path string, body interface{}) (map[string]interface{}, error) {
	req := c.http.R().SetContext(ctx)
	if key != "" {
		req.SetAuthToken(key)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("moltbook unreachable: %w", err)
	}

	data := parseBody(resp.Body())
	if !resp.IsSuccess() || data["success"] == false {
		return nil, &APIError{
			Status:  resp.StatusCode(),
			Message: errorMessage(data, http.StatusText(resp.StatusCode())),
		}
	}
	return data, nil
}

// parseBody decodes a JSON object; anything else yields an empty map.
func parseBody(b []byte) map[string]interface{} {
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil || data == nil {
		return map[string]interface{}{}
	}
	return data
}

func errorMessage(data map[string]interface{}, fallback string) string {
	for _, k := range []string{"error", "message"} {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// unwrapPost picks the post object out of the known envelopes.
func unwrapPost(data map[string]interface{}) map[string]interface{} {
	if p, ok := data["post"].(map[string]interface{}); ok {
		return p
	}
	if d, ok := data["data"].(map[string]interface{}); ok {
		if p, ok := d["post"].(map[string]interface{}); ok {
			return p
		}
		return d
	}
	return data
}

type postRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type postShape struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Author  struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"author"`
	Post postRef `json:"post"`
	Data struct {
		Post postRef `json:"post"`
	} `json:"data"`
}

// decode maps a loose JSON object onto out. Numbers and strings convert
// into each other, so numeric ids decode into string fields.
func decode(in map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return dec.Decode(in)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
