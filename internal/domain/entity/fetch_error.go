package entity

// Snapshot sections a fetch error can belong to.
const (
	SectionNative  = "native"
	SectionStaking = "staking"
	SectionLockup  = "lockup"
	SectionIntents = "intents"
)

// FetchError records a failure of one sub-fetch during a snapshot refresh.
// Failures are isolated per section; the rest of the snapshot stays usable.
type FetchError struct {
	TreasuryID string `json:"treasuryId"`
	Section    string `json:"section"`
	PoolID     string `json:"poolId,omitempty"`
	TokenID    string `json:"tokenId,omitempty"`
	Message    string `json:"message"`
}
