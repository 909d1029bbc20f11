// Package oracle provides the token-security oracle client. The oracle is
// a third-party risk API returning per-contract security attributes; its
// raw report is normalized into a RiskRecord by the risk package.
package oracle

// Report is the raw per-token security report. Boolean-like attributes
// arrive as "1"/"0" strings and numeric attributes as decimal strings;
// any field may be absent (empty string).
type Report struct {
	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`

	IsHoneypot           string `json:"is_honeypot"`
	IsBlacklisted        string `json:"is_blacklisted"`
	IsProxy              string `json:"is_proxy"`
	IsMintable           string `json:"is_mintable"`
	IsOpenSource         string `json:"is_open_source"`
	IsWhitelisted        string `json:"is_whitelisted"`
	CanTakeBackOwnership string `json:"can_take_back_ownership"`
	OwnerChangeBalance   string `json:"owner_change_balance"`
	HiddenOwner          string `json:"hidden_owner"`
	Selfdestruct         string `json:"selfdestruct"`
	ExternalCall         string `json:"external_call"`
	TradingCooldown      string `json:"trading_cooldown"`
	CannotSellAll        string `json:"cannot_sell_all"`

	BuyTax  string `json:"buy_tax"`
	SellTax string `json:"sell_tax"`

	HolderCount   string `json:"holder_count"`
	LPHolderCount string `json:"lp_holder_count"`
	HolderPercent string `json:"holder_percent"`

	OwnerAddress string `json:"owner_address"`
}

// Flag reports whether a boolean-like attribute is set.
func Flag(v string) bool {
	return v == "1"
}
