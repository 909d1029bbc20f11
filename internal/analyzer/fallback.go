package analyzer

import "chainguard/internal/domain"

// FallbackRecord produces a conservative verdict when the model is
// unavailable. Sanctions hits stay critical even without the model.
func FallbackRecord(addressType domain.AddressType, sanctionsHit bool) *domain.RiskRecord {
	if sanctionsHit {
		return &domain.RiskRecord{
			Status:     domain.StatusRed,
			RiskLevel:  domain.RiskCritical,
			Summary:    "🚫 Address on sanctions list",
			Reason:     "This address has been identified on a sanctions or malicious actors list.",
			Flags:      []string{"sanctions_list"},
			Confidence: 1.0,
			Tooltip:    "CRITICAL: This address is on a sanctions list. Avoid all interactions.",
		}
	}

	if addressType == domain.TypeContract {
		return &domain.RiskRecord{
			Status:     domain.StatusBlue,
			RiskLevel:  domain.RiskUnknown,
			Summary:    "Smart contract detected",
			Reason:     "This is a smart contract. Exercise caution and verify the contract before interacting.",
			Flags:      []string{"contract"},
			Confidence: 0.5,
			Tooltip:    "Smart Contract - Review before interacting",
		}
	}

	return &domain.RiskRecord{
		Status:     domain.StatusBlue,
		RiskLevel:  domain.RiskUnknown,
		Summary:    "Wallet address detected",
		Reason:     "Standard wallet address. No immediate risk indicators.",
		Flags:      []string{"wallet"},
		Confidence: 0.5,
		Tooltip:    "Wallet Address - Standard EOA",
	}
}
