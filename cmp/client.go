// Package cmp is a client for the CMP SIM management open API.
package cmp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

const (
	DefaultEndpoint = "https://cmp.acceleronix.io"

	pathDeviceList   = "/openapi/v1/device/list"
	pathDeviceDetail = "/openapi/v1/device/detail"
	pathDeviceUsage  = "/openapi/v1/device/usage"
	pathProfileList  = "/openapi/v1/esim/profile/list"

	HeaderAPIKey    = "X-Api-Key"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Credentials are the per-account API key pair and endpoint.
type Credentials struct {
	APIKey    string
	APISecret string
	Endpoint  string
}

// Client calls the CMP API. It holds no mutable state after construction and
// is safe for concurrent use.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	nowTime    func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNowTime sets the clock used for request timestamps (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New validates the credentials and builds a client. A missing key or
// secret fails with ErrMissingCredentials.
func New(creds Credentials, options ...Option) (*Client, error) {
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	creds.APISecret = strings.TrimSpace(creds.APISecret)
	if creds.APIKey == "" || creds.APISecret == "" {
		return nil, errors.Wrapf(errors.ErrMissingCredentials, "CMP API key and secret are required")
	}
	creds.Endpoint = strings.TrimSuffix(strings.TrimSpace(creds.Endpoint), "/")
	if creds.Endpoint == "" {
		creds.Endpoint = DefaultEndpoint
	}

	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.creds.Endpoint
}

func (c *Client) ListDevices(ctx context.Context, filter DeviceFilter) (*Response, error) {
	return c.post(ctx, pathDeviceList, filter)
}

func (c *Client) DeviceDetail(ctx context.Context, iccid string) (*Response, error) {
	return c.post(ctx, pathDeviceDetail, map[string]string{"iccid": iccid})
}

func (c *Client) DeviceUsage(ctx context.Context, iccid, month string) (*Response, error) {
	return c.post(ctx, pathDeviceUsage, map[string]string{"iccid": iccid, "month": month})
}

func (c *Client) ListEmbeddedProfiles(ctx context.Context, filter ProfileFilter) (*Response, error) {
	return c.post(ctx, pathProfileList, filter)
}

// Sign computes the request signature: hex(HMAC-SHA256(secret, key + timestamp + body)).
func Sign(secret, apiKey, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(apiKey))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", errors.ErrUpstreamFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", errors.ErrUpstreamFailure, err)
	}
	timestamp := strconv.FormatInt(c.nowTime().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAPIKey, c.creds.APIKey)
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderSignature, Sign(c.creds.APISecret, c.creds.APIKey, timestamp, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrUpstreamFailure, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", errors.ErrUpstreamFailure, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %s: HTTP %d %s", errors.ErrUpstreamFailure, path, resp.StatusCode, snippet)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: decode response: %w", errors.ErrUpstreamFailure, path, err)
	}
	return &out, nil
}
