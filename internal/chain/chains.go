package chain

// Well-known EVM chain IDs.
const (
	ChainEthereum  = 1
	ChainOptimism  = 10
	ChainBSC       = 56
	ChainPolygon   = 137
	ChainFantom    = 250
	ChainBase      = 8453
	ChainArbitrum  = 42161
	ChainAvalanche = 43114
)

var chainNames = map[int]string{
	ChainEthereum: "Ethereum",
	ChainOptimism: "Optimism",
	ChainBSC:      "BSC",
	ChainPolygon:  "Polygon",
	ChainFantom:   "Fantom",
	ChainBase:     "Base",
	ChainArbitrum: "Arbitrum",
}

// Name returns the display name for a chain ID, "Unknown" otherwise.
func Name(chainID int) string {
	if name, ok := chainNames[chainID]; ok {
		return name
	}
	return "Unknown"
}

var explorerURLs = map[int]string{
	ChainEthereum: "https://etherscan.io",
	ChainOptimism: "https://optimistic.etherscan.io",
	ChainBSC:      "https://bscscan.com",
	ChainPolygon:  "https://polygonscan.com",
	ChainBase:     "https://basescan.org",
	ChainArbitrum: "https://arbiscan.io",
}

// ExplorerURL returns the address page URL on the chain's block explorer.
// Falls back to Etherscan for unknown chains.
func ExplorerURL(address string, chainID int) string {
	base, ok := explorerURLs[chainID]
	if !ok {
		base = explorerURLs[ChainEthereum]
	}
	return base + "/address/" + address
}
