package domain

// SanctionsEntry is one row of the sanctioned-address dataset.
// Loaded once at startup, never mutated at runtime.
type SanctionsEntry struct {
	Address       string      `json:"address"` // normalized lowercase 0x hex
	Name          string      `json:"name"`    // entity name
	Type          AddressType `json:"type"`    // mixer | hack | scam | terrorism | exchange | sanctions
	Source        string      `json:"source"`  // issuing authority (OFAC, FBI, ...)
	Reason        string      `json:"reason"`
	Severity      RiskLevel   `json:"severity"`
	Jurisdictions []string    `json:"jurisdictions"`
	DateAdded     string      `json:"dateAdded"` // YYYY-MM-DD
	References    []string    `json:"references"`
	Tags          []string    `json:"tags"`
	Network       string      `json:"network,omitempty"` // chain name, if known
}
