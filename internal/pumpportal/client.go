// Package pumpportal is a client for the pump.fun launch service: metadata
// upload to pump.fun IPFS and transaction building through PumpPortal.
package pumpportal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default endpoints.
const (
	DefaultTradeBase = "https://pumpportal.fun/api"
	DefaultIPFSURL   = "https://pump.fun/api/ipfs"
	DefaultTimeout   = 30 * time.Second
)

// Fixed trade parameters.
const (
	Pool     = "pump"
	Slippage = 10
)

// Image is fetched image content ready for upload.
type Image struct {
	Data        []byte
	ContentType string
}

// MetadataFields is the token metadata published to IPFS.
type MetadataFields struct {
	Name        string
	Symbol      string
	Description string
	Website     string
	Twitter     string
	Telegram    string
}

// MintRequest asks for an unsigned token creation transaction.
type MintRequest struct {
	Payer          string
	Mint           string
	Name           string
	Symbol         string
	MetadataURI    string
	DevBuySOL      float64
	PriorityFeeSOL float64
}

// Client talks to pump.fun and PumpPortal.
type Client struct {
	http      *resty.Client
	tradeBase string
	ipfsURL   string
	apiKey    string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithAPIKey sets the PumpPortal key used for server-signed trades.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTradeBase overrides the PumpPortal API root.
func WithTradeBase(base string) ClientOption {
	return func(c *Client) {
		c.tradeBase = strings.TrimRight(base, "/")
	}
}

// WithIPFSURL overrides the metadata upload endpoint.
func WithIPFSURL(u string) ClientOption {
	return func(c *Client) {
		c.ipfsURL = u
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// NewClient creates a Client with default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      resty.New().SetTimeout(DefaultTimeout),
		tradeBase: DefaultTradeBase,
		ipfsURL:   DefaultIPFSURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchImage downloads the image at url.
func (c *Client) FetchImage(ctx context.Context, url string) (Image, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return Image{}, fmt.Errorf("Image fetch failed: %w", err)
	}
	if !resp.IsSuccess() {
		return Image{}, fmt.Errorf("Image fetch failed (%d)", resp.StatusCode())
	}

	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return Image{Data: resp.Body(), ContentType: ct}, nil
}

// UploadMetadata publishes the metadata and image and returns the metadata URI.
func (c *Client) UploadMetadata(ctx context.Context, m MetadataFields, img Image) (string, error) {
	form := map[string]string{
		"name":        m.Name,
		"symbol":      m.Symbol,
		"description": m.Description,
		"showName":    "true",
	}
	if m.Website != "" {
		form["website"] = m.Website
	}
	if m.Twitter != "" {
		form["twitter"] = m.Twitter
	}
	if m.Telegram != "" {
		form["telegram"] = m.Telegram
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", "image", img.ContentType, bytes.NewReader(img.Data)).
		SetMultipartFormData(form).
		Post(c.ipfsURL)
	if err != nil {
		return "", fmt.Errorf("Metadata upload failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("Metadata upload failed: %d %s", resp.StatusCode(), resp.String())
	}

	var out struct {
		MetadataURI string `json:"metadataUri"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.MetadataURI == "" {
		return "", fmt.Errorf("metadataUri missing from pump.fun response")
	}
	return out.MetadataURI, nil
}

// BuildMintTransaction returns a base64 unsigned create transaction that
// the payer signs locally.
func (c *Client) BuildMintTransaction(ctx context.Context, req MintRequest) (string, error) {
	body := map[string]interface{}{
		"publicKey": req.Payer,
		"action":    "create",
		"tokenMetadata": map[string]string{
			"name":   req.Name,
			"symbol": req.Symbol,
			"uri":    req.MetadataURI,
		},
		"mint":             req.Mint,
		"denominatedInSol": "true",
		"amount":           req.DevBuySOL,
		"slippage":         Slippage,
		"priorityFee":      req.PriorityFeeSOL,
		"pool":             Pool,
		"isMayhemMode":     "false",
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.tradeBase + "/trade-local")
	if err != nil {
		return "", fmt.Errorf("pump.fun create-local failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("pump.fun create-local failed: %d %s", resp.StatusCode(), resp.String())
	}
	if len(resp.Body()) == 0 {
		return "", fmt.Errorf("pump.fun create-local failed: empty transaction")
	}
	return base64.StdEncoding.EncodeToString(resp.Body()), nil
}

// CollectCreatorFee asks PumpPortal to claim the creator fees of mint to
// the wallet behind the API key and returns the claim signature.
func (c *Client) CollectCreatorFee(ctx context.Context, mint string, priorityFeeSOL float64) (string, error) {
	body := map[string]interface{}{
		"action":      "collectCreatorFee",
		"mint":        mint,
		"priorityFee": priorityFeeSOL,
		"pool":        Pool,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api-key", c.apiKey).
		SetBody(body).
		Post(c.tradeBase + "/trade")
	if err != nil {
		return "", fmt.Errorf("collectCreatorFee failed: %w", err)
	}

	var out struct {
		Signature string `json:"signature"`
		Error     string `json:"error"`
	}
	decodeErr := json.Unmarshal(resp.Body(), &out)
	if !resp.IsSuccess() || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return "", fmt.Errorf("collectCreatorFee failed: %s", msg)
	}
	if decodeErr != nil || out.Signature == "" {
		return "", fmt.Errorf("collectCreatorFee failed: signature missing from response")
	}
	return out.Signature, nil
}
