// Package risk turns raw oracle reports into risk records. Pure scoring
// logic, no I/O.
package risk

import (
	"fmt"
	"strconv"
	"strings"

	"chainguard/internal/domain"
	"chainguard/internal/oracle"
)

// Weighted risk attributes. Scores accumulate to a 0-100 scale.
const (
	weightHoneypot           = 50
	weightBlacklisted        = 40
	weightOwnerChangeBalance = 30
	weightSelfdestruct       = 25
	weightTakeBackOwnership  = 20
	weightCannotSellAll      = 20
	weightProxy              = 15
	weightHiddenOwner        = 15
	weightHighTax            = 15
	weightLowHolders         = 15
	weightMintable           = 10
	weightCooldown           = 10
	weightLPConcentration    = 10
	weightExternalCall       = 5
)

// Score thresholds for severity tiers.
const (
	thresholdCritical = 50
	thresholdHigh     = 30
	thresholdMedium   = 15
)

// Concentration cutoffs.
const (
	minHolders   = 10
	minLPHolders = 3
	maxTaxPct    = 10
)

// Normalize converts a raw oracle report into a RiskRecord. The report
// must be non-nil; callers handle the no-data case themselves.
func Normalize(report *oracle.Report) *domain.RiskRecord {
	var (
		risks []string
		flags []string
		score int
	)

	addRisk := func(desc, flag string, weight int) {
		risks = append(risks, desc)
		flags = append(flags, flag)
		score += weight
	}

	honeypot := oracle.Flag(report.IsHoneypot)
	if honeypot {
		addRisk("Honeypot detected - Cannot sell tokens", "honeypot", weightHoneypot)
	}
	if oracle.Flag(report.IsBlacklisted) {
		addRisk("Blacklisted contract", "blacklisted", weightBlacklisted)
	}
	if oracle.Flag(report.IsProxy) {
		addRisk("Proxy contract - code can be changed", "proxy", weightProxy)
	}
	if oracle.Flag(report.IsMintable) {
		addRisk("Token supply can be increased", "mintable", weightMintable)
	}
	if oracle.Flag(report.CanTakeBackOwnership) {
		addRisk("Ownership can be reclaimed", "ownership_risk", weightTakeBackOwnership)
	}
	if oracle.Flag(report.OwnerChangeBalance) {
		addRisk("Owner can change balances", "balance_manipulation", weightOwnerChangeBalance)
	}
	if oracle.Flag(report.HiddenOwner) {
		addRisk("Hidden ownership", "hidden_owner", weightHiddenOwner)
	}
	if oracle.Flag(report.Selfdestruct) {
		addRisk("Contract can self-destruct", "selfdestruct", weightSelfdestruct)
	}
	if oracle.Flag(report.ExternalCall) {
		addRisk("Makes external calls", "external_call", weightExternalCall)
	}

	buyTax := parseFloat(report.BuyTax)
	sellTax := parseFloat(report.SellTax)
	if buyTax > maxTaxPct || sellTax > maxTaxPct {
		addRisk(fmt.Sprintf("High tax: Buy %g%%, Sell %g%%", buyTax, sellTax), "high_tax", weightHighTax)
	}
	if oracle.Flag(report.TradingCooldown) {
		addRisk("Trading cooldown enabled", "cooldown", weightCooldown)
	}
	if oracle.Flag(report.CannotSellAll) {
		addRisk("Cannot sell all tokens at once", "cannot_sell_all", weightCannotSellAll)
	}

	holderCount := parseInt(report.HolderCount)
	lpHolderCount := parseInt(report.LPHolderCount)
	if holderCount < minHolders {
		addRisk("Very few token holders", "low_holders", weightLowHolders)
	}
	if lpHolderCount < minLPHolders {
		addRisk("Liquidity concentration risk", "lp_concentration", weightLPConcentration)
	}

	var status domain.Status
	var level domain.RiskLevel
	switch {
	case score >= thresholdCritical || honeypot:
		status, level = domain.StatusRed, domain.RiskCritical
	case score >= thresholdHigh:
		status, level = domain.StatusRed, domain.RiskHigh
	case score >= thresholdMedium:
		status, level = domain.StatusYellow, domain.RiskMedium
	case score > 0:
		status, level = domain.StatusYellow, domain.RiskLow
	default:
		status, level = domain.StatusGreen, domain.RiskSafe
	}

	var summary string
	switch len(risks) {
	case 0:
		name := report.TokenName
		if name == "" {
			name = "Token"
		}
		summary = fmt.Sprintf("✓ Token appears safe (%s)", name)
	case 1:
		summary = "⚠️ " + risks[0]
	default:
		summary = fmt.Sprintf("⚠️ %d security concerns detected", len(risks))
	}

	reason := "No significant risks detected"
	if len(risks) > 0 {
		reason = strings.Join(risks, "; ")
	}
	if flags == nil {
		flags = []string{}
	}

	return &domain.RiskRecord{
		Status:        status,
		RiskLevel:     level,
		Summary:       summary,
		Reason:        reason,
		Tooltip:       summary,
		Flags:         flags,
		Confidence:    0.9,
		OracleDetails: buildDetails(report, score, buyTax, sellTax, holderCount, lpHolderCount),
	}
}

func buildDetails(report *oracle.Report, score int, buyTax, sellTax float64, holders, lpHolders int) *domain.OracleDetails {
	return &domain.OracleDetails{
		TokenName:   report.TokenName,
		TokenSymbol: report.TokenSymbol,

		IsHoneypot:    oracle.Flag(report.IsHoneypot),
		IsBlacklisted: oracle.Flag(report.IsBlacklisted),
		IsProxy:       oracle.Flag(report.IsProxy),
		IsMintable:    oracle.Flag(report.IsMintable),
		IsOpenSource:  oracle.Flag(report.IsOpenSource),

		RiskScore: score,

		Taxes: domain.TaxDetails{Buy: buyTax, Sell: sellTax},
		Holders: domain.HolderDetails{
			Total:           holders,
			LPHolders:       lpHolders,
			Top10HoldingPct: parseFloat(report.HolderPercent),
		},
		Trading: domain.TradingDetails{
			CanSellAll:    !oracle.Flag(report.CannotSellAll),
			HasCooldown:   oracle.Flag(report.TradingCooldown),
			IsWhitelisted: oracle.Flag(report.IsWhitelisted),
		},
		Ownership: domain.OwnershipDetails{
			Renounced:        report.OwnerAddress == "0x0000000000000000000000000000000000000000",
			CanTakeBack:      oracle.Flag(report.CanTakeBackOwnership),
			CanChangeBalance: oracle.Flag(report.OwnerChangeBalance),
			Hidden:           oracle.Flag(report.HiddenOwner),
		},
		Contract: domain.ContractDetails{
			HasSelfdestruct: oracle.Flag(report.Selfdestruct),
			HasExternalCall: oracle.Flag(report.ExternalCall),
			IsVerified:      oracle.Flag(report.IsOpenSource),
		},
	}
}

// Malformed numeric fields count as zero.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
