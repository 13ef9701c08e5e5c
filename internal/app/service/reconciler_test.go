package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/pkg/utils"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestComputeAccountBalanceNilInput(t *testing.T) {
	balance, err := ComputeAccountBalance(nil)
	require.NoError(t, err)
	assert.Nil(t, balance, "absent account must yield nil, not an error")
}

func TestComputeAccountBalanceOneNear(t *testing.T) {
	// 1 NEAR total, 500 bytes of storage at 10^19 yocto per byte.
	balance, err := ComputeAccountBalance(&entity.RawAccountView{
		AccountID:    "treasury.near",
		Amount:       "1000000000000000000000000",
		StorageUsage: 500,
	})
	require.NoError(t, err)
	require.NotNil(t, balance)

	assert.Equal(t, "1000000000000000000000000", balance.Total.String())
	assert.Equal(t, "5000000000000000000000", balance.Storage.String())
	assert.Equal(t, "995000000000000000000000", balance.Available.String())
}

func TestComputeAccountBalanceClampsAvailable(t *testing.T) {
	// Storage reserve exceeds the total; available clamps to zero.
	balance, err := ComputeAccountBalance(&entity.RawAccountView{
		Amount:       "1000000000000000000000",
		StorageUsage: 100000,
	})
	require.NoError(t, err)
	require.NotNil(t, balance)

	assert.True(t, balance.Available.IsZero())
	assert.False(t, balance.Available.IsNegative())
}

func TestComputeAccountBalanceRejectsGarbage(t *testing.T) {
	_, err := ComputeAccountBalance(&entity.RawAccountView{Amount: "not-a-number"})
	assert.Error(t, err)
}

func TestNormalizePoolBalanceMutualExclusivity(t *testing.T) {
	// 5 NEAR unstaked, still inside the waiting period.
	pending, err := NormalizePoolBalance("pool.near", "0", "5000000000000000000000000", false)
	require.NoError(t, err)
	assert.Equal(t, "5", pending.Unstaked.String())
	assert.True(t, pending.AvailableToWithdraw.IsZero())

	// Same amount, waiting period elapsed.
	ready, err := NormalizePoolBalance("pool.near", "0", "5000000000000000000000000", true)
	require.NoError(t, err)
	assert.True(t, ready.Unstaked.IsZero())
	assert.Equal(t, "5", ready.AvailableToWithdraw.String())

	// Total counts the unstaked amount either way.
	assert.Equal(t, "5", pending.Total.String())
	assert.Equal(t, "5", ready.Total.String())
}

func TestNormalizePoolBalanceExactAtYoctoPrecision(t *testing.T) {
	// Single-yocto amounts must survive the scale conversion, and the
	// per-pool sum must hold exactly rather than up to rounding.
	pool, err := NormalizePoolBalance("pool.near",
		"1000000000000000000000001", "1", false)
	require.NoError(t, err)

	assert.Equal(t, "1.000000000000000000000001", pool.Staked.String())
	assert.Equal(t, "0.000000000000000000000001", pool.Unstaked.String())
	assert.True(t, pool.Staked.Add(pool.Unstaked).Equal(pool.Total),
		"total must equal staked + unstaked exactly")
	assert.Equal(t, "1000000000000000000000002",
		utils.TokenToYocto(pool.Total).String())
}

func TestAggregateStakingPoolsEmpty(t *testing.T) {
	agg := AggregateStakingPools(nil)
	assert.True(t, agg.Staked.IsZero())
	assert.True(t, agg.Unstaked.IsZero())
	assert.True(t, agg.AvailableToWithdraw.IsZero())
	assert.True(t, agg.Total.IsZero())
}

func TestAggregateStakingPoolsSums(t *testing.T) {
	pools := []entity.StakingPoolBalance{
		{
			PoolID: "a.pool.near",
			Staked: dec(t, "10"), Unstaked: dec(t, "0"),
			AvailableToWithdraw: dec(t, "0"), Total: dec(t, "10"),
		},
		{
			PoolID: "b.pool.near",
			Staked: dec(t, "0"), Unstaked: dec(t, "5"),
			AvailableToWithdraw: dec(t, "5"), Total: dec(t, "5"),
		},
	}

	agg := AggregateStakingPools(pools)
	assert.Equal(t, "10", agg.Staked.String())
	assert.Equal(t, "5", agg.Unstaked.String())
	assert.Equal(t, "5", agg.AvailableToWithdraw.String())
	assert.Equal(t, "15", agg.Total.String())
}

func TestAggregateStakingPoolsOrderIndependent(t *testing.T) {
	pools := []entity.StakingPoolBalance{
		{Staked: dec(t, "1.5"), Unstaked: dec(t, "0.25"), Total: dec(t, "1.75")},
		{Staked: dec(t, "3"), AvailableToWithdraw: dec(t, "2"), Total: dec(t, "5")},
		{Staked: dec(t, "0.000000000001"), Total: dec(t, "0.000000000001")},
	}
	reversed := []entity.StakingPoolBalance{pools[2], pools[1], pools[0]}

	forward := AggregateStakingPools(pools)
	backward := AggregateStakingPools(reversed)

	assert.Equal(t, forward.Staked.String(), backward.Staked.String())
	assert.Equal(t, forward.Unstaked.String(), backward.Unstaked.String())
	assert.Equal(t, forward.AvailableToWithdraw.String(), backward.AvailableToWithdraw.String())
	assert.Equal(t, forward.Total.String(), backward.Total.String())
}

func TestDeriveLockupAccountID(t *testing.T) {
	cases := map[string]string{
		"example.near":                      "ddae8062fd4c026d8782fec7ae8f9f26cbb2b288.lockup.near",
		"treasury.sputnik-dao.near":         "9e2e82dc1fca87ac0aac6ed63fd5327932f0e2e0.lockup.near",
		"testing-astradao.sputnik-dao.near": "d6d8a4615737815082b487c61f6f744f107b1e60.lockup.near",
	}
	for treasuryID, want := range cases {
		assert.Equal(t, want, DeriveLockupAccountID(treasuryID, ".lockup.near"))
	}
}

func lockupFixture(t *testing.T, rawTotal, storage, stakedTotal, vestingLockedYocto string) *entity.LockupAccount {
	t.Helper()
	total := dec(t, rawTotal)
	stor := dec(t, storage)
	return &entity.LockupAccount{
		ContractID:         "d6d8a4615737815082b487c61f6f744f107b1e60.lockup.near",
		VestingLockedYocto: dec(t, vestingLockedYocto),
		NearBalances: &entity.AccountBalance{
			Total:     total,
			Available: utils.ClampZero(total.Sub(stor)),
			Storage:   stor,
		},
		StakedBalances: entity.AggregatedStaking{Total: dec(t, stakedTotal)},
	}
}

func reconciledSum(r entity.LockupReconciledBalance) decimal.Decimal {
	return r.Locked.Add(r.Available).Add(r.Staked).Add(r.Storage)
}

func TestReconcileLockupBalanceClosure(t *testing.T) {
	cases := []struct {
		name               string
		rawTotal           string
		storage            string
		stakedTotal        string
		vestingLockedYocto string
	}{
		{"no staking, partial vesting", "100000000000000000000000000", "3500000000000000000000", "0", "40000000000000000000000000"},
		{"stake covers vesting", "10000000000000000000000000", "3500000000000000000000", "50", "40000000000000000000000000"},
		{"stake partially covers vesting", "20000000000000000000000000", "3500000000000000000000", "10", "40000000000000000000000000"},
		{"vesting exceeds raw total", "1000000000000000000000000", "3500000000000000000000", "0", "900000000000000000000000000"},
		{"everything zero", "0", "0", "0", "0"},
		{"storage only", "3500000000000000000000", "3500000000000000000000", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lockup := lockupFixture(t, tc.rawTotal, tc.storage, tc.stakedTotal, tc.vestingLockedYocto)
			r := ReconcileLockupBalance(lockup)

			assert.True(t, reconciledSum(r).Equal(r.Total),
				"closure violated: %s != %s", reconciledSum(r).String(), r.Total.String())
			assert.False(t, r.Locked.IsNegative())
			assert.False(t, r.Available.IsNegative())
			assert.False(t, r.Storage.IsNegative())
			assert.False(t, r.Staked.IsNegative())
		})
	}
}

func TestReconcileLockupBalanceFullyStaked(t *testing.T) {
	// 50 NEAR staked against 40 NEAR contract-locked: nothing reported locked.
	lockup := lockupFixture(t,
		"10000000000000000000000000", "3500000000000000000000",
		"50", "40000000000000000000000000")
	r := ReconcileLockupBalance(lockup)

	assert.True(t, r.Locked.IsZero())
	assert.Equal(t, "50000000000000000000000000", r.Staked.String())
	// total = raw total + staked added back
	assert.Equal(t, "60000000000000000000000000", r.Total.String())
}

func TestReconcileLockupBalancePartiallyStaked(t *testing.T) {
	// 10 NEAR staked against 40 NEAR locked: 30 NEAR remains locked.
	lockup := lockupFixture(t,
		"50000000000000000000000000", "3500000000000000000000",
		"10", "40000000000000000000000000")
	r := ReconcileLockupBalance(lockup)

	assert.Equal(t, "30000000000000000000000000", r.Locked.String())
	assert.True(t, reconciledSum(r).Equal(r.Total))
}

func TestReconcileLockupBalanceStorageAbsorbsExcess(t *testing.T) {
	// Locked exceeds what the balance can carry: available clamps to zero and
	// the correction pass pulls the overshoot out of storage, then locked.
	lockup := lockupFixture(t,
		"1000000000000000000000000", "3500000000000000000000",
		"0", "900000000000000000000000000")
	r := ReconcileLockupBalance(lockup)

	assert.True(t, r.Available.IsZero())
	assert.True(t, r.Storage.IsZero())
	assert.True(t, r.Locked.Equal(r.Total))
	assert.True(t, reconciledSum(r).Equal(r.Total))
}

func TestReconcileLockupBalanceIdempotent(t *testing.T) {
	lockup := lockupFixture(t,
		"20000000000000000000000000", "3500000000000000000000",
		"10", "40000000000000000000000000")

	first := ReconcileLockupBalance(lockup)
	second := ReconcileLockupBalance(lockup)

	assert.Equal(t, first.Locked.String(), second.Locked.String())
	assert.Equal(t, first.Available.String(), second.Available.String())
	assert.Equal(t, first.Staked.String(), second.Staked.String())
	assert.Equal(t, first.Storage.String(), second.Storage.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
}

func TestReconcileLockupBalanceNilNearBalances(t *testing.T) {
	// A failed balance sub-fetch leaves NearBalances nil; reconciliation
	// still holds together over the staked funds alone.
	lockup := &entity.LockupAccount{
		ContractID:     "abc.lockup.near",
		StakedBalances: entity.AggregatedStaking{Total: dec(t, "2")},
	}
	r := ReconcileLockupBalance(lockup)

	assert.Equal(t, "2000000000000000000000000", r.Staked.String())
	assert.True(t, r.Total.Equal(r.Staked))
	assert.True(t, reconciledSum(r).Equal(r.Total))
}
