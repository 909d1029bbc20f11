package domain

// Status is the color-coded severity tier shown to the user.
type Status string

const (
	// StatusRed marks confirmed malicious or sanctioned addresses.
	StatusRed Status = "red"
	// StatusYellow marks suspicious addresses or unknown/degraded results.
	StatusYellow Status = "yellow"
	// StatusGreen marks verified safe addresses.
	StatusGreen Status = "green"
	// StatusBlue marks informational, neutral results.
	StatusBlue Status = "blue"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is one of the four known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusRed, StatusYellow, StatusGreen, StatusBlue:
		return true
	}
	return false
}

// RiskLevel is the fine-grained risk classification.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskSafe     RiskLevel = "safe"
	RiskInfo     RiskLevel = "info"
	RiskUnknown  RiskLevel = "unknown"
)

// String returns the string representation of RiskLevel.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid checks if the risk level is a known value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow, RiskSafe, RiskInfo, RiskUnknown:
		return true
	}
	return false
}

// AddressType classifies the address itself.
type AddressType string

const (
	TypeWallet    AddressType = "wallet"
	TypeContract  AddressType = "contract"
	TypeMixer     AddressType = "mixer"
	TypeTerrorism AddressType = "terrorism"
	TypeScam      AddressType = "scam"
	TypeHack      AddressType = "hack"
	TypeExchange  AddressType = "exchange"
	TypeSanctions AddressType = "sanctions"
	TypeUnknown   AddressType = "unknown"
)

// RiskRecord is the universal output of every classification stage and the
// stable contract consumed by UI and highlighting layers.
type RiskRecord struct {
	Status     Status      `json:"status"`
	RiskLevel  RiskLevel   `json:"riskLevel"`
	Summary    string      `json:"summary"`           // short headline
	Reason     string      `json:"reason"`            // longer explanation
	Tooltip    string      `json:"tooltip,omitempty"` // hover text, usually the summary
	Flags      []string    `json:"flags"`             // machine tags: honeypot, sanctions, ...
	Confidence float64     `json:"confidence"`        // [0,1]
	Type       AddressType `json:"type,omitempty"`

	// Stage-specific enrichment (nil unless the stage ran).
	SanctionsData *SanctionsEntry `json:"sanctionsData,omitempty"`
	OracleDetails *OracleDetails  `json:"goPlusDetails,omitempty"`

	// Error carries the failure message when the safety net produced
	// this record. Empty on every normal path.
	Error string `json:"error,omitempty"`

	// IsGated reports whether tier gating suppressed detail fields.
	IsGated bool `json:"isGated"`
}

// HasFlag reports whether the record carries the given machine tag.
func (r *RiskRecord) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// OracleDetails preserves key fields of the oracle report for display.
// Pass-through data: never used in classification decisions.
type OracleDetails struct {
	TokenName   string `json:"tokenName,omitempty"`
	TokenSymbol string `json:"tokenSymbol,omitempty"`

	IsHoneypot    bool `json:"isHoneypot"`
	IsBlacklisted bool `json:"isBlacklisted"`
	IsProxy       bool `json:"isProxy"`
	IsMintable    bool `json:"isMintable"`
	IsOpenSource  bool `json:"isOpenSource"`

	RiskScore int `json:"riskScore"` // accumulated 0-100 weight sum

	Taxes     TaxDetails       `json:"taxes"`
	Holders   HolderDetails    `json:"holders"`
	Trading   TradingDetails   `json:"trading"`
	Ownership OwnershipDetails `json:"ownership"`
	Contract  ContractDetails  `json:"contract"`
}

// TaxDetails holds buy/sell tax percentages.
type TaxDetails struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// HolderDetails holds holder concentration data.
type HolderDetails struct {
	Total           int     `json:"total"`
	LPHolders       int     `json:"lpHolders"`
	Top10HoldingPct float64 `json:"top10HoldingPercent"`
}

// TradingDetails holds trading restriction data.
type TradingDetails struct {
	CanSellAll    bool `json:"canSellAll"`
	HasCooldown   bool `json:"hasCooldown"`
	IsWhitelisted bool `json:"isWhitelisted"`
}

// OwnershipDetails holds contract ownership data.
type OwnershipDetails struct {
	Renounced        bool `json:"renounced"`
	CanTakeBack      bool `json:"canTakeBack"`
	CanChangeBalance bool `json:"canChangeBalance"`
	Hidden           bool `json:"hidden"`
}

// ContractDetails holds contract-level security data.
type ContractDetails struct {
	HasSelfdestruct bool `json:"hasSelfdestruct"`
	HasExternalCall bool `json:"hasExternalCall"`
	IsVerified      bool `json:"isVerified"`
}
