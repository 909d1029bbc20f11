package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chainguard/internal/observability"
)

// DefaultExplorerTimeout bounds explorer API calls.
const DefaultExplorerTimeout = 10 * time.Second

// ExplorerClient implements SourceProvider against an Etherscan-style API.
type ExplorerClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewExplorerClient creates a client for an Etherscan-style explorer API.
func NewExplorerClient(apiURL, apiKey string) *ExplorerClient {
	return &ExplorerClient{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: DefaultExplorerTimeout},
	}
}

// explorerResponse is the getsourcecode envelope.
type explorerResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Result  []explorerSourceItem `json:"result"`
}

type explorerSourceItem struct {
	SourceCode       string `json:"SourceCode"`
	ContractName     string `json:"ContractName"`
	CompilerVersion  string `json:"CompilerVersion"`
	OptimizationUsed string `json:"OptimizationUsed"`
	ABI              string `json:"ABI"`
}

// GetContractSource fetches verified source metadata for a contract.
// An unverified contract yields IsVerified=false, not an error.
func (c *ExplorerClient) GetContractSource(ctx context.Context, address string) (source *ContractSource, err error) {
	start := time.Now()
	defer func() { observability.RecordCollaboratorCall("explorer", time.Since(start).Seconds(), err) }()

	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", address)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var envelope explorerResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if envelope.Status != "1" || len(envelope.Result) == 0 {
		return &ContractSource{IsVerified: false}, nil
	}

	item := envelope.Result[0]
	return &ContractSource{
		SourceCode:       item.SourceCode,
		ContractName:     item.ContractName,
		CompilerVersion:  item.CompilerVersion,
		OptimizationUsed: item.OptimizationUsed,
		ABI:              item.ABI,
		IsVerified:       item.SourceCode != "",
	}, nil
}

// Verify interface compliance at compile time.
var _ SourceProvider = (*ExplorerClient)(nil)
