// Package analyzer builds LLM analysis prompts, parses model responses
// into risk records, and applies tier gating. No I/O here; the llm
// package owns transport.
package analyzer

import (
	"fmt"
	"strings"

	"chainguard/internal/chain"
	"chainguard/internal/domain"
)

// Paid-tier prompts embed at most this much verified source.
const maxSourceSnippet = 2000

// PromptData is everything gathered about an address before the model
// is asked for a verdict. Optional sections are nil when the collector
// had no data.
type PromptData struct {
	Address string
	Type    domain.AddressType

	Balance string // formatted ETH, empty if unknown
	TxCount *uint64

	Sanctions *domain.SanctionsEntry
	Contract  *chain.ContractSource
	Oracle    *domain.RiskRecord // normalized oracle verdict, carries OracleDetails
}

// BuildPrompt renders the analysis prompt for the model. Paid-tier
// prompts include source snippets and deeper instructions.
func BuildPrompt(data PromptData, tier domain.Tier) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a Web3 security analyst. Analyze this %s address and provide a risk assessment.\n\n", data.Type)
	fmt.Fprintf(&b, "Address: %s\n", data.Address)
	if data.Type == domain.TypeContract {
		b.WriteString("Type: Smart Contract\n")
	} else {
		b.WriteString("Type: Wallet (EOA)\n")
	}

	if data.Balance != "" {
		fmt.Fprintf(&b, "Balance: %s ETH\n", data.Balance)
	}
	if data.TxCount != nil {
		fmt.Fprintf(&b, "Transaction Count: %d\n", *data.TxCount)
	}

	if data.Sanctions != nil {
		b.WriteString("\n⚠️ SANCTIONS LIST MATCH:\n")
		fmt.Fprintf(&b, "- Entity: %s\n", orUnknown(data.Sanctions.Name))
		fmt.Fprintf(&b, "- Source: %s\n", orUnknown(data.Sanctions.Source))
		if data.Sanctions.Reason != "" {
			fmt.Fprintf(&b, "- Reason: %s\n", data.Sanctions.Reason)
		}
	}

	if data.Type == domain.TypeContract && data.Contract != nil {
		b.WriteString("\nContract Information:\n")
		if data.Contract.IsVerified {
			b.WriteString("- Verification: ✓ Verified\n")
			if data.Contract.ContractName != "" {
				fmt.Fprintf(&b, "- Name: %s\n", data.Contract.ContractName)
			}
		} else {
			b.WriteString("- Verification: ✗ Not Verified (HIGH RISK)\n")
		}

		if tier == domain.TierPaid && data.Contract.SourceCode != "" {
			snippet := data.Contract.SourceCode
			if len(snippet) > maxSourceSnippet {
				snippet = snippet[:maxSourceSnippet]
			}
			fmt.Fprintf(&b, "\nSource Code Snippet:\n```solidity\n%s\n```\n", snippet)
		}
	}

	if data.Oracle != nil && data.Oracle.OracleDetails != nil {
		details := data.Oracle.OracleDetails
		b.WriteString("\n## Token Security Analysis:\n")
		fmt.Fprintf(&b, "- Risk Score: %d/100\n", details.RiskScore)
		fmt.Fprintf(&b, "- Status: %s\n", data.Oracle.Status)
		if details.IsHoneypot {
			b.WriteString("- ⚠️ HONEYPOT DETECTED\n")
		}
		if details.TokenName != "" {
			fmt.Fprintf(&b, "- Token: %s (%s)\n", details.TokenName, details.TokenSymbol)
		}
		if len(data.Oracle.Flags) > 0 {
			fmt.Fprintf(&b, "- Flags: %s\n", strings.Join(data.Oracle.Flags, ", "))
		}
		fmt.Fprintf(&b, "- Tax: Buy %g%%, Sell %g%%\n", details.Taxes.Buy, details.Taxes.Sell)
		fmt.Fprintf(&b, "- Holders: %d\n", details.Holders.Total)
	}

	if tier == domain.TierPaid {
		b.WriteString("\n## Deep Analysis Required:\n")
		b.WriteString("- Check for common vulnerabilities (reentrancy, overflow, etc.)\n")
		b.WriteString("- Analyze unusual patterns in transaction history\n")
		b.WriteString("- Assess honeypot indicators\n")
		b.WriteString("- Check ownership concentration\n")
		b.WriteString("- Verify against known scam patterns\n")
	} else {
		b.WriteString("\n## Basic Analysis:\n")
		b.WriteString("- Determine if address appears safe or suspicious\n")
		b.WriteString("- Note any obvious red flags\n")
		b.WriteString("- Provide general risk level\n")
	}

	b.WriteString("\n## Required Output Format (JSON only):\n")
	b.WriteString("{\n")
	b.WriteString("  \"status\": \"green\" | \"yellow\" | \"red\" | \"blue\",\n")
	b.WriteString("  \"risk_level\": \"safe\" | \"low\" | \"medium\" | \"high\" | \"critical\",\n")
	b.WriteString("  \"summary\": \"Brief one-line summary\",\n")
	b.WriteString("  \"reason\": \"Detailed explanation of the risk assessment\",\n")
	b.WriteString("  \"flags\": [\"flag1\", \"flag2\"],\n")
	b.WriteString("  \"confidence\": 0.0 to 1.0\n")
	b.WriteString("}\n\n")

	b.WriteString("Status meanings:\n")
	b.WriteString("- green: Safe/verified contract or legitimate wallet\n")
	b.WriteString("- blue: Informational (known contract, exchange, etc.)\n")
	b.WriteString("- yellow: Suspicious/warning signs detected\n")
	b.WriteString("- red: Dangerous/malicious activity confirmed\n\n")

	b.WriteString("Respond with ONLY the JSON object, no additional text.")

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
