package risk

import (
	"testing"

	"chainguard/internal/domain"
	"chainguard/internal/oracle"
)

func safeReport() *oracle.Report {
	return &oracle.Report{
		TokenName:     "Good Token",
		TokenSymbol:   "GOOD",
		IsOpenSource:  "1",
		HolderCount:   "45000",
		LPHolderCount: "120",
		BuyTax:        "0",
		SellTax:       "0",
	}
}

func TestNormalize_SafeToken(t *testing.T) {
	rec := Normalize(safeReport())

	if rec.Status != domain.StatusGreen {
		t.Errorf("expected green, got %s", rec.Status)
	}
	if rec.RiskLevel != domain.RiskSafe {
		t.Errorf("expected safe, got %s", rec.RiskLevel)
	}
	if rec.Summary != "✓ Token appears safe (Good Token)" {
		t.Errorf("unexpected summary: %s", rec.Summary)
	}
	if rec.Reason != "No significant risks detected" {
		t.Errorf("unexpected reason: %s", rec.Reason)
	}
	if len(rec.Flags) != 0 {
		t.Errorf("expected no flags, got %v", rec.Flags)
	}
	if rec.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", rec.Confidence)
	}
	if rec.OracleDetails == nil || rec.OracleDetails.RiskScore != 0 {
		t.Error("expected details with zero risk score")
	}
}

func TestNormalize_HoneypotIsCritical(t *testing.T) {
	report := safeReport()
	report.IsHoneypot = "1"

	rec := Normalize(report)
	if rec.Status != domain.StatusRed || rec.RiskLevel != domain.RiskCritical {
		t.Errorf("honeypot must be red/critical, got %s/%s", rec.Status, rec.RiskLevel)
	}
	if !rec.HasFlag("honeypot") {
		t.Errorf("expected honeypot flag, got %v", rec.Flags)
	}
	if rec.Summary != "⚠️ Honeypot detected - Cannot sell tokens" {
		t.Errorf("single risk summary should name the risk, got %s", rec.Summary)
	}
}

func TestNormalize_ScoreAccumulation(t *testing.T) {
	// proxy 15 + mintable 10 + cooldown 10 = 35 -> red/high
	report := safeReport()
	report.IsProxy = "1"
	report.IsMintable = "1"
	report.TradingCooldown = "1"

	rec := Normalize(report)
	if rec.OracleDetails.RiskScore != 35 {
		t.Errorf("expected score 35, got %d", rec.OracleDetails.RiskScore)
	}
	if rec.Status != domain.StatusRed || rec.RiskLevel != domain.RiskHigh {
		t.Errorf("expected red/high, got %s/%s", rec.Status, rec.RiskLevel)
	}
	if rec.Summary != "⚠️ 3 security concerns detected" {
		t.Errorf("unexpected summary: %s", rec.Summary)
	}
	if rec.Reason != "Proxy contract - code can be changed; Token supply can be increased; Trading cooldown enabled" {
		t.Errorf("unexpected reason: %s", rec.Reason)
	}
}

func TestNormalize_MediumAndLowTiers(t *testing.T) {
	report := safeReport()
	report.IsProxy = "1" // 15 -> yellow/medium
	rec := Normalize(report)
	if rec.Status != domain.StatusYellow || rec.RiskLevel != domain.RiskMedium {
		t.Errorf("expected yellow/medium at 15, got %s/%s", rec.Status, rec.RiskLevel)
	}

	report = safeReport()
	report.ExternalCall = "1" // 5 -> yellow/low
	rec = Normalize(report)
	if rec.Status != domain.StatusYellow || rec.RiskLevel != domain.RiskLow {
		t.Errorf("expected yellow/low at 5, got %s/%s", rec.Status, rec.RiskLevel)
	}
}

func TestNormalize_HighTax(t *testing.T) {
	report := safeReport()
	report.BuyTax = "12"
	report.SellTax = "25"

	rec := Normalize(report)
	if !rec.HasFlag("high_tax") {
		t.Errorf("expected high_tax flag, got %v", rec.Flags)
	}
	if rec.Summary != "⚠️ High tax: Buy 12%, Sell 25%" {
		t.Errorf("unexpected summary: %s", rec.Summary)
	}
	if rec.OracleDetails.Taxes.Sell != 25 {
		t.Errorf("expected sell tax 25, got %v", rec.OracleDetails.Taxes.Sell)
	}
}

func TestNormalize_HolderConcentration(t *testing.T) {
	report := safeReport()
	report.HolderCount = "4"
	report.LPHolderCount = "1"

	// low_holders 15 + lp_concentration 10 = 25 -> yellow/medium
	rec := Normalize(report)
	if !rec.HasFlag("low_holders") || !rec.HasFlag("lp_concentration") {
		t.Errorf("expected concentration flags, got %v", rec.Flags)
	}
	if rec.Status != domain.StatusYellow || rec.RiskLevel != domain.RiskMedium {
		t.Errorf("expected yellow/medium, got %s/%s", rec.Status, rec.RiskLevel)
	}
}

func TestNormalize_MalformedNumbersCountAsZero(t *testing.T) {
	report := safeReport()
	report.HolderCount = "n/a"
	report.LPHolderCount = ""

	rec := Normalize(report)
	if !rec.HasFlag("low_holders") || !rec.HasFlag("lp_concentration") {
		t.Error("unparseable counts must be treated as zero")
	}
}

func TestNormalize_OwnershipRenounced(t *testing.T) {
	report := safeReport()
	report.OwnerAddress = "0x0000000000000000000000000000000000000000"

	rec := Normalize(report)
	if !rec.OracleDetails.Ownership.Renounced {
		t.Error("zero owner address means ownership renounced")
	}
}

func TestNormalize_UnnamedToken(t *testing.T) {
	report := safeReport()
	report.TokenName = ""

	rec := Normalize(report)
	if rec.Summary != "✓ Token appears safe (Token)" {
		t.Errorf("unexpected summary: %s", rec.Summary)
	}
}
