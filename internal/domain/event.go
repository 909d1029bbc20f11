package domain

// ScanEvent is one row of the high-volume classification log.
// Corresponds to scan_events table in ClickHouse.
type ScanEvent struct {
	Address    string      // normalized lowercase address
	Type       AddressType // resolved address type
	Status     Status      // final verdict color
	RiskLevel  RiskLevel   // final risk level
	Confidence float64     // verdict confidence
	CacheHit   bool        // served from the result cache
	DurationMs int64       // wall time of the classification
	Timestamp  int64       // Unix timestamp in milliseconds
}
