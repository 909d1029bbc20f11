package analyzer

import "chainguard/internal/domain"

// Upsell copy shown to free-tier users when a dangerous verdict is gated.
const (
	gatedTooltip = "⚠️ Potentially dangerous address detected. Upgrade to Pro for full security analysis."
	gatedSummary = "Security concerns detected - Upgrade for details"
	gatedReason  = "This address has been flagged by our security system. Upgrade to Pro to see the full analysis and protect yourself from potential threats."
)

// ApplyTierGating enforces the subscription tier on a verdict. Paid
// users and demo mode see everything; free users get red and
// high/critical verdicts downgraded to a yellow upsell. Flags survive
// gating so highlighting layers still know the real signals.
func ApplyTierGating(record *domain.RiskRecord, tier domain.Tier, demoMode bool) *domain.RiskRecord {
	out := *record

	if demoMode || tier == domain.TierPaid {
		out.Tooltip = record.Summary
		out.IsGated = false
		return &out
	}

	if record.Status == domain.StatusRed || record.RiskLevel == domain.RiskHigh || record.RiskLevel == domain.RiskCritical {
		out.Status = domain.StatusYellow
		out.Tooltip = gatedTooltip
		out.Summary = gatedSummary
		out.Reason = gatedReason
		out.IsGated = true
		return &out
	}

	out.Tooltip = record.Summary
	out.IsGated = false
	return &out
}
