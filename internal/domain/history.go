package domain

// ScanHistoryEntry records one completed classification for the audit trail.
// Corresponds to scan_history table in PostgreSQL.
type ScanHistoryEntry struct {
	ID        int64      // BIGSERIAL primary key
	Address   string     // normalized lowercase address
	Record    RiskRecord // full verdict as returned to the caller
	PageURL   *string    // page the address was found on (nullable)
	CreatedAt int64      // Unix timestamp in milliseconds
}

// AddressbookEntry is a user-assigned tag for an address.
// Corresponds to addressbook table in PostgreSQL.
type AddressbookEntry struct {
	Address   string // normalized lowercase address, primary key
	Tag       string // user-friendly label
	DateAdded int64  // Unix timestamp in milliseconds
}

// Retention periods for history cleanup.
const (
	RetentionNever   = "never"
	Retention1Week   = "1week"
	Retention1Month  = "1month"
	Retention3Months = "3months"
	Retention1Year   = "1year"
)

// RetentionCutoffMs returns the oldest allowed entry timestamp for a
// retention period, relative to now (ms). Returns 0 for RetentionNever
// and unrecognized periods (keep everything).
func RetentionCutoffMs(period string, nowMs int64) int64 {
	const dayMs = 24 * 60 * 60 * 1000
	switch period {
	case Retention1Week:
		return nowMs - 7*dayMs
	case Retention1Month:
		return nowMs - 30*dayMs
	case Retention3Months:
		return nowMs - 90*dayMs
	case Retention1Year:
		return nowMs - 365*dayMs
	default:
		return 0
	}
}
