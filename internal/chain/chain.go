// Package chain provides EVM chain introspection: JSON-RPC node queries
// and block-explorer source-code lookups.
package chain

import (
	"context"
	"math/big"
)

// Introspector answers basic questions about an address from a node.
// Every method may fail with a network error; callers treat failure as
// "no data", never as fatal.
type Introspector interface {
	// GetCode returns the deployed bytecode as 0x-prefixed hex.
	// "0x" (or "0x0") means no code: the address is an EOA.
	GetCode(ctx context.Context, address string) (string, error)

	// GetTransactionCount returns the outgoing transaction count (nonce).
	GetTransactionCount(ctx context.Context, address string) (uint64, error)

	// GetBalance returns the balance in wei.
	GetBalance(ctx context.Context, address string) (*big.Int, error)
}

// ContractSource is the explorer's verified-source response.
type ContractSource struct {
	SourceCode       string
	ContractName     string
	CompilerVersion  string
	OptimizationUsed string
	ABI              string
	IsVerified       bool
}

// SourceProvider fetches verified contract source from a block explorer.
type SourceProvider interface {
	// GetContractSource returns source metadata for a contract address.
	// An unverified contract yields IsVerified=false, not an error.
	GetContractSource(ctx context.Context, address string) (*ContractSource, error)
}

// HasCode reports whether a GetCode result indicates deployed bytecode.
func HasCode(code string) bool {
	return code != "" && code != "0x" && code != "0x0"
}

// FormatEth renders a wei amount as a decimal ETH string with 4 places.
func FormatEth(wei *big.Int) string {
	if wei == nil {
		return "0.0000"
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	return f.Text('f', 4)
}
