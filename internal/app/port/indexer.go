package port

import (
	"context"

	"treasury_dashboard/internal/domain/entity"
)

// IndexerClient defines access to the external proposal indexer.
type IndexerClient interface {
	// QueryProposals returns one page of proposals matching the query.
	QueryProposals(ctx context.Context, q entity.ProposalQuery) (*entity.ProposalPage, error)

	// ProposalByID returns a single proposal, or nil when the indexer has
	// not observed it yet.
	ProposalByID(ctx context.Context, daoID string, proposalID int64) (*entity.Proposal, error)

	// CSVExportURL builds the indexer-side CSV export URL for the query.
	CSVExportURL(q entity.ProposalQuery) string
}
