package port

import (
	"context"

	"treasury_dashboard/internal/domain/entity"
)

// TreasuryService produces full treasury balance snapshots.
type TreasuryService interface {
	// Snapshot returns the cached snapshot for the treasury, refreshing it
	// first if none exists.
	Snapshot(ctx context.Context, treasuryID string) (*entity.TreasurySnapshot, error)

	// Refresh recomputes the snapshot from external sources. A refresh that
	// is superseded by a newer one for the same treasury is discarded.
	Refresh(ctx context.Context, treasuryID string) (*entity.TreasurySnapshot, error)
}

// IntentsService aggregates cross-chain intents balances per treasury.
type IntentsService interface {
	Assets(ctx context.Context, treasuryID string) ([]entity.AggregatedIntentsAsset, []entity.FetchError, error)
}

// ProposalService queries governance proposals through the indexer.
type ProposalService interface {
	Query(ctx context.Context, q entity.ProposalQuery) (*entity.ProposalPage, error)
	ExportURL(q entity.ProposalQuery) string

	// AwaitProposalIndexed polls the indexer until the proposal written by a
	// recent transaction becomes visible, then invalidates cached pages for
	// the DAO. Polling is bounded; an error is returned when the proposal
	// never appears within the attempt budget.
	AwaitProposalIndexed(ctx context.Context, daoID string, proposalID int64) error
}

// ProfileService resolves and caches social profiles.
type ProfileService interface {
	Profiles(ctx context.Context, ids []string) (map[string]entity.Profile, error)
}
