package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chainguard/internal/observability"
)

// DefaultBaseURL is the public token-security API root.
const DefaultBaseURL = "https://api.gopluslabs.io/api/v1"

// DefaultTimeout is the hard per-call timeout. Oracle timeouts are a
// recoverable condition for callers, never fatal.
const DefaultTimeout = 10 * time.Second

// Client fetches token security reports. GetReport returning (nil, nil)
// means the oracle has no data for the address.
type Client interface {
	GetReport(ctx context.Context, address string, chainID int) (*Report, error)
}

// HTTPClient implements Client against the token-security REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// Option configures HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a token-security oracle client.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the API response wrapper. Code 1 means success.
type envelope struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Result  map[string]json.RawMessage `json:"result"`
}

// GetReport fetches the security report for one contract address.
func (c *HTTPClient) GetReport(ctx context.Context, address string, chainID int) (report *Report, err error) {
	start := time.Now()
	defer func() { observability.RecordCollaboratorCall("oracle", time.Since(start).Seconds(), err) }()

	addr := strings.ToLower(address)

	q := url.Values{}
	q.Set("contract_addresses", addr)
	reqURL := fmt.Sprintf("%s/token_security/%d?%s", c.baseURL, chainID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if env.Code != 1 || env.Result == nil {
		return nil, fmt.Errorf("oracle error response: code=%d message=%q", env.Code, env.Message)
	}

	raw, ok := env.Result[addr]
	if !ok {
		// Oracle has no data for this address.
		return nil, nil
	}

	var rep Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rep, nil
}

// Chain name aliases accepted by ChainID.
var chainAliases = map[string]int{
	"ethereum":  1,
	"eth":       1,
	"bsc":       56,
	"binance":   56,
	"polygon":   137,
	"matic":     137,
	"fantom":    250,
	"ftm":       250,
	"optimism":  10,
	"op":        10,
	"base":      8453,
	"arbitrum":  42161,
	"arb":       42161,
	"avalanche": 43114,
	"avax":      43114,
}

// ChainID maps a chain name or alias to its oracle chain id.
// Unknown names default to Ethereum mainnet.
func ChainID(name string) int {
	if id, ok := chainAliases[strings.ToLower(name)]; ok {
		return id
	}
	return 1
}

// Verify interface compliance at compile time.
var _ Client = (*HTTPClient)(nil)
