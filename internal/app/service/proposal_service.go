package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/infrastructure/configloader"
)

// ProposalServiceImpl implements port.ProposalService over the external
// indexer, with a short-lived page cache injected by the caller.
type ProposalServiceImpl struct {
	indexer   port.IndexerClient
	logger    port.Logger
	cfg       *configloader.Config
	pageCache *cache.Cache
}

// NewProposalService creates a new instance of ProposalServiceImpl.
func NewProposalService(
	indexer port.IndexerClient,
	l port.Logger,
	cfg *configloader.Config,
	pageCache *cache.Cache,
) *ProposalServiceImpl {
	return &ProposalServiceImpl{
		indexer:   indexer,
		logger:    l,
		cfg:       cfg,
		pageCache: pageCache,
	}
}

var _ port.ProposalService = (*ProposalServiceImpl)(nil)

// Query returns one page of proposals, served from the page cache when the
// identical query was answered recently.
func (s *ProposalServiceImpl) Query(ctx context.Context, q entity.ProposalQuery) (*entity.ProposalPage, error) {
	key := pageCacheKey(q)
	if cached, ok := s.pageCache.Get(key); ok {
		return cached.(*entity.ProposalPage), nil
	}

	page, err := s.indexer.QueryProposals(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("proposal query for %s: %w", q.DaoID, err)
	}

	s.pageCache.Set(key, page, cache.DefaultExpiration)
	return page, nil
}

// ExportURL returns the indexer-side CSV export URL for the query. The CSV
// itself is produced by the indexer; this is a plain passthrough.
func (s *ProposalServiceImpl) ExportURL(q entity.ProposalQuery) string {
	return s.indexer.CSVExportURL(q)
}

// AwaitProposalIndexed polls the indexer with exponential backoff until it
// observes the proposal written by a recent transaction, then drops cached
// pages for the DAO. The attempt budget is capped; the indexer lagging past
// the budget surfaces as an error rather than blocking forever.
func (s *ProposalServiceImpl) AwaitProposalIndexed(ctx context.Context, daoID string, proposalID int64) error {
	delay := time.Duration(s.cfg.Indexer.PollBaseDelayMillis) * time.Millisecond

	for attempt := 1; attempt <= s.cfg.Indexer.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		proposal, err := s.indexer.ProposalByID(ctx, daoID, proposalID)
		if err != nil {
			s.logger.Warn("Indexer poll attempt failed", "dao", daoID,
				"proposal", proposalID, "attempt", attempt, "error", err)
		} else if proposal != nil {
			s.logger.Debug("Proposal observed by indexer", "dao", daoID,
				"proposal", proposalID, "attempts", attempt)
			s.invalidateDAO(daoID)
			return nil
		}

		delay *= 2
	}

	return fmt.Errorf("proposal %d for %s not indexed after %d attempts", proposalID, daoID, s.cfg.Indexer.PollMaxAttempts)
}

// invalidateDAO drops every cached page belonging to the DAO.
func (s *ProposalServiceImpl) invalidateDAO(daoID string) {
	prefix := daoID + "|"
	for key := range s.pageCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.pageCache.Delete(key)
		}
	}
}

func pageCacheKey(q entity.ProposalQuery) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d",
		q.DaoID, q.Category, strings.Join(q.Statuses, ","), q.Search, q.Page, q.PageSize)
}
