package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/infrastructure/configloader"
	"treasury_dashboard/internal/pkg/metrics"
	"treasury_dashboard/internal/pkg/utils"
)

// TreasuryServiceImpl implements port.TreasuryService.
//
// Every refresh fully recomputes the snapshot from external sources. A
// refresh carries the generation id it was issued for; if a newer refresh
// for the same treasury starts while it is in flight, its result is
// discarded at commit time instead of overwriting fresher data.
type TreasuryServiceImpl struct {
	chain    port.ChainViewClient
	registry port.StakingRegistry
	intents  port.IntentsService
	logger   port.Logger
	cfg      *configloader.Config

	generation  atomic.Uint64
	mu          sync.Mutex
	snapshots   map[string]*entity.TreasurySnapshot
	generations map[string]uint64
}

// NewTreasuryService creates a new instance of TreasuryServiceImpl.
func NewTreasuryService(
	chain port.ChainViewClient,
	registry port.StakingRegistry,
	intents port.IntentsService,
	l port.Logger,
	cfg *configloader.Config,
) *TreasuryServiceImpl {
	return &TreasuryServiceImpl{
		chain:       chain,
		registry:    registry,
		intents:     intents,
		logger:      l,
		cfg:         cfg,
		snapshots:   make(map[string]*entity.TreasurySnapshot),
		generations: make(map[string]uint64),
	}
}

var _ port.TreasuryService = (*TreasuryServiceImpl)(nil)

// Snapshot returns the cached snapshot when still fresh, refreshing otherwise.
func (s *TreasuryServiceImpl) Snapshot(ctx context.Context, treasuryID string) (*entity.TreasurySnapshot, error) {
	ttl := time.Duration(s.cfg.Treasury.SnapshotTTLSeconds) * time.Second

	s.mu.Lock()
	snap, ok := s.snapshots[treasuryID]
	s.mu.Unlock()

	if ok && time.Since(snap.RefreshedAt) < ttl {
		return snap, nil
	}
	return s.Refresh(ctx, treasuryID)
}

// Refresh recomputes the treasury snapshot. Sections that fail to load are
// zero-valued and reported through the snapshot's Errors list; only a total
// failure to reach the chain returns an error.
func (s *TreasuryServiceImpl) Refresh(ctx context.Context, treasuryID string) (*entity.TreasurySnapshot, error) {
	gen := s.beginGeneration(treasuryID)
	started := time.Now()
	s.logger.Debug("Refreshing treasury snapshot", "treasury", treasuryID, "generation", gen)

	snap := &entity.TreasurySnapshot{
		TreasuryID: treasuryID,
		Staking:    AggregateStakingPools(nil),
		Intents:    []entity.AggregatedIntentsAsset{},
		Generation: gen,
	}

	var mu sync.Mutex
	addErr := func(section string, err error) {
		mu.Lock()
		snap.Errors = append(snap.Errors, entity.FetchError{
			TreasuryID: treasuryID,
			Section:    section,
			Message:    err.Error(),
		})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Performance.MaxConcurrentRoutines)

	g.Go(func() error {
		cctx, cancel := s.rpcContext(gctx)
		raw, err := s.chain.ViewAccount(cctx, treasuryID)
		cancel()
		if err != nil {
			s.logger.Error("Failed to fetch treasury account", "treasury", treasuryID, "error", err)
			addErr(entity.SectionNative, err)
			return nil
		}
		balance, err := ComputeAccountBalance(raw)
		if err != nil {
			addErr(entity.SectionNative, err)
			return nil
		}
		mu.Lock()
		snap.Native = balance
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		agg, poolErrs := s.fetchStakingAggregate(gctx, treasuryID)
		mu.Lock()
		snap.Staking = agg
		snap.Errors = append(snap.Errors, poolErrs...)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		lockupID, reconciled, lockupErrs := s.resolveAndReconcileLockup(gctx, treasuryID)
		mu.Lock()
		snap.LockupAccountID = lockupID
		snap.Lockup = reconciled
		snap.Errors = append(snap.Errors, lockupErrs...)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		assets, fetchErrs, err := s.intents.Assets(gctx, treasuryID)
		if err != nil {
			s.logger.Error("Failed to aggregate intents assets", "treasury", treasuryID, "error", err)
			addErr(entity.SectionIntents, err)
			return nil
		}
		mu.Lock()
		// Keep the pre-initialized empty slice on a nil result so the
		// snapshot serializes intents as [] rather than null.
		if assets != nil {
			snap.Intents = assets
		}
		snap.Errors = append(snap.Errors, fetchErrs...)
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot refresh aborted for %s: %w", treasuryID, err)
	}

	snap.RefreshedAt = time.Now()
	metrics.SnapshotRefreshDuration.Observe(time.Since(started).Seconds())

	if stored, committed := s.commit(treasuryID, snap); !committed {
		metrics.SnapshotDiscardedTotal.Inc()
		s.logger.Warn("Discarding stale snapshot refresh", "treasury", treasuryID,
			"generation", gen)
		if stored != nil {
			return stored, nil
		}
		return snap, nil
	}

	s.logger.Info("Treasury snapshot refreshed", "treasury", treasuryID,
		"sections_failed", len(snap.Errors), "took", time.Since(started).String())
	return snap, nil
}

// beginGeneration registers a new refresh generation for the treasury and
// returns its id. Any refresh with a smaller id becomes stale immediately.
func (s *TreasuryServiceImpl) beginGeneration(treasuryID string) uint64 {
	gen := s.generation.Add(1)
	s.mu.Lock()
	s.generations[treasuryID] = gen
	s.mu.Unlock()
	return gen
}

// rpcContext bounds a chain call with the configured per-call timeout. A
// non-positive timeout leaves the parent context untouched.
func (s *TreasuryServiceImpl) rpcContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.Performance.RPCCallTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// commit stores the snapshot unless a newer generation was issued while the
// refresh ran. It returns the currently stored snapshot and whether the
// commit happened.
func (s *TreasuryServiceImpl) commit(treasuryID string, snap *entity.TreasurySnapshot) (*entity.TreasurySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[treasuryID] != snap.Generation {
		return s.snapshots[treasuryID], false
	}
	s.snapshots[treasuryID] = snap
	return snap, true
}

// fetchStakingAggregate lists the account's staking pools and aggregates the
// per-pool balances. Failing pools are skipped and reported; they never abort
// the aggregate.
func (s *TreasuryServiceImpl) fetchStakingAggregate(ctx context.Context, accountID string) (entity.AggregatedStaking, []entity.FetchError) {
	poolIDs, err := s.registry.ListStakingPools(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to list staking pools", "account", accountID, "error", err)
		return AggregateStakingPools(nil), []entity.FetchError{{
			TreasuryID: accountID,
			Section:    entity.SectionStaking,
			Message:    err.Error(),
		}}
	}
	if len(poolIDs) == 0 {
		return AggregateStakingPools(nil), nil
	}

	var (
		mu        sync.Mutex
		pools     []entity.StakingPoolBalance
		fetchErrs []entity.FetchError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Performance.MaxConcurrentRoutines)

	for _, poolID := range poolIDs {
		g.Go(func() error {
			pool, err := s.fetchPoolBalance(gctx, accountID, poolID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Skipping staking pool after fetch failure",
					"account", accountID, "pool", poolID, "error", err)
				fetchErrs = append(fetchErrs, entity.FetchError{
					TreasuryID: accountID,
					Section:    entity.SectionStaking,
					PoolID:     poolID,
					Message:    err.Error(),
				})
				return nil
			}
			pools = append(pools, pool)
			return nil
		})
	}
	_ = g.Wait()

	return AggregateStakingPools(pools), fetchErrs
}

// fetchPoolBalance issues the three per-pool view calls concurrently:
// staked balance, unstaked balance, and the is-available flag that decides
// whether the unstaked amount is withdrawable yet.
func (s *TreasuryServiceImpl) fetchPoolBalance(ctx context.Context, accountID, poolID string) (entity.StakingPoolBalance, error) {
	ctx, cancel := s.rpcContext(ctx)
	defer cancel()

	args := map[string]string{"account_id": accountID}

	var (
		stakedYocto   string
		unstakedYocto string
		available     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.chain.ViewFunction(gctx, poolID, "get_account_staked_balance", args, &stakedYocto)
	})
	g.Go(func() error {
		return s.chain.ViewFunction(gctx, poolID, "get_account_unstaked_balance", args, &unstakedYocto)
	})
	g.Go(func() error {
		return s.chain.ViewFunction(gctx, poolID, "is_account_unstaked_balance_available", args, &available)
	})
	if err := g.Wait(); err != nil {
		return entity.StakingPoolBalance{}, fmt.Errorf("pool %s balance fetch failed: %w", poolID, err)
	}

	return NormalizePoolBalance(poolID, stakedYocto, unstakedYocto, available)
}

// resolveAndReconcileLockup probes the derived lockup account and, when it
// exists, fans out the lockup sub-fetches and reconciles the result. A
// missing lockup is a valid outcome, not an error.
func (s *TreasuryServiceImpl) resolveAndReconcileLockup(ctx context.Context, treasuryID string) (string, *entity.LockupReconciledBalance, []entity.FetchError) {
	lockupID := DeriveLockupAccountID(treasuryID, s.cfg.Treasury.LockupSuffix)

	cctx, cancel := s.rpcContext(ctx)
	raw, err := s.chain.ViewAccount(cctx, lockupID)
	cancel()
	if err != nil {
		return lockupID, nil, []entity.FetchError{{
			TreasuryID: treasuryID,
			Section:    entity.SectionLockup,
			Message:    err.Error(),
		}}
	}
	if raw == nil {
		s.logger.Debug("No lockup account for treasury", "treasury", treasuryID, "candidate", lockupID)
		return "", nil, nil
	}

	lockup, fetchErrs := s.fetchLockupAccount(ctx, treasuryID, lockupID, raw)
	reconciled := ReconcileLockupBalance(lockup)
	return lockupID, &reconciled, fetchErrs
}

// fetchLockupAccount gathers the lockup sub-state concurrently: staking
// aggregate, vesting-locked view call, and the raw contract state. A failing
// sub-fetch leaves its field zero-valued and is reported; the reconciliation
// still runs over what was fetched.
func (s *TreasuryServiceImpl) fetchLockupAccount(ctx context.Context, treasuryID, lockupID string, raw *entity.RawAccountView) (*entity.LockupAccount, []entity.FetchError) {
	lockup := &entity.LockupAccount{ContractID: lockupID}

	var (
		mu        sync.Mutex
		fetchErrs []entity.FetchError
	)
	addErr := func(err error) {
		mu.Lock()
		fetchErrs = append(fetchErrs, entity.FetchError{
			TreasuryID: treasuryID,
			Section:    entity.SectionLockup,
			Message:    err.Error(),
		})
		mu.Unlock()
	}

	balance, err := ComputeAccountBalance(raw)
	if err != nil {
		addErr(err)
	} else {
		lockup.NearBalances = balance
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		agg, poolErrs := s.fetchStakingAggregate(gctx, lockupID)
		mu.Lock()
		lockup.StakedBalances = agg
		fetchErrs = append(fetchErrs, poolErrs...)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		cctx, cancel := s.rpcContext(gctx)
		defer cancel()
		var lockedYocto string
		if err := s.chain.ViewFunction(cctx, lockupID, "get_locked_amount", nil, &lockedYocto); err != nil {
			addErr(fmt.Errorf("get_locked_amount: %w", err))
			return nil
		}
		locked, err := utils.ParseYocto(lockedYocto)
		if err != nil {
			addErr(fmt.Errorf("get_locked_amount: %w", err))
			return nil
		}
		mu.Lock()
		lockup.VestingLockedYocto = locked
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		cctx, cancel := s.rpcContext(gctx)
		defer cancel()
		items, err := s.chain.ViewState(cctx, lockupID, "")
		if err != nil {
			addErr(fmt.Errorf("view_state: %w", err))
			return nil
		}
		if len(items) > 0 {
			// The first stored value carries the serialized vesting schedule.
			mu.Lock()
			lockup.State = items[0].Value
			mu.Unlock()
		}
		return nil
	})

	_ = g.Wait()
	return lockup, fetchErrs
}
