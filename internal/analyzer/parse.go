package analyzer

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"chainguard/internal/domain"
)

var fenceOpen = regexp.MustCompile("```json?\n?")
var fenceClose = regexp.MustCompile("```\n?$")

// modelResponse is the JSON contract the prompt asks the model to emit.
type modelResponse struct {
	Status     string   `json:"status"`
	RiskLevel  string   `json:"risk_level"`
	Summary    string   `json:"summary"`
	Reason     string   `json:"reason"`
	Flags      []string `json:"flags"`
	Confidence float64  `json:"confidence"`
}

// ParseResponse turns a raw model completion into a RiskRecord. It never
// fails: malformed or incomplete responses yield the analysis-error
// fallback so the pipeline can keep going.
func ParseResponse(raw string) *domain.RiskRecord {
	jsonStr := strings.TrimSpace(raw)
	if strings.HasPrefix(jsonStr, "```") {
		jsonStr = fenceOpen.ReplaceAllString(jsonStr, "")
		jsonStr = fenceClose.ReplaceAllString(jsonStr, "")
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		log.Printf("[analyzer] unparseable model response: %v", err)
		return parseFailureRecord()
	}
	if parsed.Status == "" || parsed.RiskLevel == "" || parsed.Summary == "" {
		log.Printf("[analyzer] model response missing required fields")
		return parseFailureRecord()
	}

	status := domain.Status(parsed.Status)
	if !status.IsValid() {
		log.Printf("[analyzer] invalid status %q, defaulting to yellow", parsed.Status)
		status = domain.StatusYellow
	}

	reason := parsed.Reason
	if reason == "" {
		reason = parsed.Summary
	}
	flags := parsed.Flags
	if flags == nil {
		flags = []string{}
	}
	confidence := parsed.Confidence
	if confidence == 0 {
		confidence = 0.7
	}

	return &domain.RiskRecord{
		Status:     status,
		RiskLevel:  domain.RiskLevel(parsed.RiskLevel),
		Summary:    parsed.Summary,
		Reason:     reason,
		Flags:      flags,
		Confidence: confidence,
	}
}

func parseFailureRecord() *domain.RiskRecord {
	return &domain.RiskRecord{
		Status:     domain.StatusYellow,
		RiskLevel:  domain.RiskUnknown,
		Summary:    "Unable to analyze address",
		Reason:     "AI analysis failed. Manual review recommended.",
		Flags:      []string{"analysis_error"},
		Confidence: 0.0,
	}
}
