package service

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/shopspring/decimal"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/pkg/utils"
)

// The reconciliation engine. Every function here is a pure transformation
// over already-fetched data: no I/O, no retries, and absence (nil input) is a
// modeled result rather than an error. All arithmetic is arbitrary-precision
// decimal; yocto amounts never pass through floating point.

// ComputeAccountBalance turns a raw account view into a categorized balance.
// A nil view means the account does not exist and yields a nil balance.
// The storage reserve is storageUsage bytes at 10^19 yocto per byte.
func ComputeAccountBalance(raw *entity.RawAccountView) (*entity.AccountBalance, error) {
	if raw == nil {
		return nil, nil
	}

	total, err := utils.ParseYocto(raw.Amount)
	if err != nil {
		return nil, err
	}

	storage := decimal.NewFromUint64(raw.StorageUsage).Mul(utils.YoctoPerByte)
	available := utils.ClampZero(total.Sub(storage))

	return &entity.AccountBalance{
		Total:     total,
		Available: available,
		Storage:   storage,
	}, nil
}

// NormalizePoolBalance converts one pool's raw yocto amounts into a
// whole-token StakingPoolBalance. The unstakedAvailable flag routes the
// unstaked amount into exactly one of Unstaked or AvailableToWithdraw; the
// two are mutually exclusive per pool at any instant. Total is staked plus
// unstaked regardless of availability.
func NormalizePoolBalance(poolID, stakedYocto, unstakedYocto string, unstakedAvailable bool) (entity.StakingPoolBalance, error) {
	staked, err := utils.ParseYocto(stakedYocto)
	if err != nil {
		return entity.StakingPoolBalance{}, err
	}
	unstaked, err := utils.ParseYocto(unstakedYocto)
	if err != nil {
		return entity.StakingPoolBalance{}, err
	}

	pool := entity.StakingPoolBalance{
		PoolID:              poolID,
		Staked:              utils.YoctoToToken(staked),
		Unstaked:            decimal.Zero,
		AvailableToWithdraw: decimal.Zero,
		Total:               utils.YoctoToToken(staked.Add(unstaked)),
	}
	if unstakedAvailable {
		pool.AvailableToWithdraw = utils.YoctoToToken(unstaked)
	} else {
		pool.Unstaked = utils.YoctoToToken(unstaked)
	}
	return pool, nil
}

// AggregateStakingPools sums each field independently across all pools.
// The result is order-independent; an empty input yields all zeros.
func AggregateStakingPools(pools []entity.StakingPoolBalance) entity.AggregatedStaking {
	agg := entity.AggregatedStaking{
		Staked:              decimal.Zero,
		Unstaked:            decimal.Zero,
		AvailableToWithdraw: decimal.Zero,
		Total:               decimal.Zero,
	}
	for _, p := range pools {
		agg.Staked = agg.Staked.Add(p.Staked)
		agg.Unstaked = agg.Unstaked.Add(p.Unstaked)
		agg.AvailableToWithdraw = agg.AvailableToWithdraw.Add(p.AvailableToWithdraw)
		agg.Total = agg.Total.Add(p.Total)
	}
	return agg
}

// DeriveLockupAccountID derives the deterministic lockup contract id for a
// treasury: the first 40 hex characters of the SHA-256 digest of the
// treasury id, plus the lockup domain suffix. SHA-256 with lowercase hex is
// what deployed lockup factories use, so the derived id matches accounts
// already on chain.
func DeriveLockupAccountID(treasuryID, suffix string) string {
	sum := sha256.Sum256([]byte(treasuryID))
	return hex.EncodeToString(sum[:])[:40] + suffix
}

// ReconcileLockupBalance combines a resolved lockup account and its vesting
// state into the user-facing categories. All returned fields are yocto-scale
// and always satisfy locked + available + staked + storage == total.
//
// The contract reports its locked amount in yocto while staking totals are
// whole-token scale; both operands are normalized to the same scale before
// comparison. When the staked total already covers the contract-locked
// amount, nothing is reported as locked.
func ReconcileLockupBalance(lockup *entity.LockupAccount) entity.LockupReconciledBalance {
	stakedTotal := lockup.StakedBalances.Total
	stakedYocto := utils.TokenToYocto(stakedTotal)

	vestingLocked := utils.YoctoToToken(lockup.VestingLockedYocto)
	locked := decimal.Zero
	if stakedTotal.LessThan(vestingLocked) {
		locked = utils.TokenToYocto(vestingLocked.Sub(stakedTotal))
	}

	var nearBalances entity.AccountBalance
	if lockup.NearBalances != nil {
		nearBalances = *lockup.NearBalances
	}

	// The raw account total excludes delegated funds; add them back.
	total := nearBalances.Total.Add(stakedYocto)
	storage := nearBalances.Storage
	available := utils.ClampZero(total.Sub(stakedYocto).Sub(locked).Sub(storage))

	// Rounding and estimation drift can push the category sum past the
	// total; storage absorbs the excess, and if that would drive storage
	// negative the remainder comes out of locked. Staked never exceeds
	// total, so locked cannot go negative here.
	sum := locked.Add(available).Add(stakedYocto).Add(storage)
	if sum.GreaterThan(total) {
		excess := sum.Sub(total)
		storage = storage.Sub(excess)
		if storage.IsNegative() {
			locked = locked.Add(storage)
			storage = decimal.Zero
		}
	}

	return entity.LockupReconciledBalance{
		Locked:    locked,
		Available: available,
		Staked:    stakedYocto,
		Storage:   storage,
		Total:     total,
	}
}
