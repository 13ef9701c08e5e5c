package entity

import "github.com/shopspring/decimal"

// StakingPoolBalance is the delegation state of one account in one staking pool.
// Amounts are whole-token scale (yocto divided by 10^24). At any snapshot the
// unstaked amount lives in exactly one of Unstaked or AvailableToWithdraw,
// depending on whether the pool's unstaking waiting period has elapsed.
type StakingPoolBalance struct {
	PoolID              string          `json:"poolId"`
	Staked              decimal.Decimal `json:"staked"`
	Unstaked            decimal.Decimal `json:"unstaked"`
	AvailableToWithdraw decimal.Decimal `json:"availableToWithdraw"`
	Total               decimal.Decimal `json:"total"`
}

// AggregatedStaking is the field-wise sum of StakingPoolBalance over all pools
// of a single account. Recomputed in full on every refresh.
type AggregatedStaking struct {
	Staked              decimal.Decimal `json:"staked"`
	Unstaked            decimal.Decimal `json:"unstaked"`
	AvailableToWithdraw decimal.Decimal `json:"availableToWithdraw"`
	Total               decimal.Decimal `json:"total"`
}
