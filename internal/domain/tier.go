package domain

// Tier represents the user's subscription level.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// String returns the string representation of Tier.
func (t Tier) String() string {
	return string(t)
}

// IsValid checks if the tier is a known value.
func (t Tier) IsValid() bool {
	return t == TierFree || t == TierPaid
}
