package entity

import "github.com/shopspring/decimal"

// LockupAccount is the resolved state of a treasury's derived lockup contract.
// State holds the first stored contract value (base64), which carries the
// serialized vesting schedule.
type LockupAccount struct {
	ContractID         string            `json:"contractId"`
	State              string            `json:"state,omitempty"`
	VestingLockedYocto decimal.Decimal   `json:"vestingLockedYocto"`
	NearBalances       *AccountBalance   `json:"nearBalances,omitempty"`
	StakedBalances     AggregatedStaking `json:"stakedBalances"`
}

// LockupReconciledBalance is the user-facing breakdown of a lockup account.
// All fields are yocto-scale. The four categories always sum exactly to Total.
type LockupReconciledBalance struct {
	Locked    decimal.Decimal `json:"locked"`
	Available decimal.Decimal `json:"available"`
	Staked    decimal.Decimal `json:"staked"`
	Storage   decimal.Decimal `json:"storage"`
	Total     decimal.Decimal `json:"total"`
}
