package entity

import "time"

// TreasurySnapshot is the full recomputed balance view of one treasury.
// It is rebuilt from scratch on every refresh; sections that failed to load
// are zero-valued and explained by Errors.
type TreasurySnapshot struct {
	TreasuryID      string                   `json:"treasuryId"`
	Native          *AccountBalance          `json:"native,omitempty"`
	Staking         AggregatedStaking        `json:"staking"`
	LockupAccountID string                   `json:"lockupAccountId,omitempty"`
	Lockup          *LockupReconciledBalance `json:"lockup,omitempty"`
	Intents         []AggregatedIntentsAsset `json:"intents"`
	Errors          []FetchError             `json:"errors,omitempty"`
	Generation      uint64                   `json:"-"`
	RefreshedAt     time.Time                `json:"refreshedAt"`
}
