package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/infrastructure/configloader"
)

type indexerStub struct {
	query      func(q entity.ProposalQuery) (*entity.ProposalPage, error)
	byID       func(daoID string, proposalID int64) (*entity.Proposal, error)
	queryCalls atomic.Int64
	pollCalls  atomic.Int64
}

func (s *indexerStub) QueryProposals(_ context.Context, q entity.ProposalQuery) (*entity.ProposalPage, error) {
	s.queryCalls.Add(1)
	if s.query == nil {
		return &entity.ProposalPage{}, nil
	}
	return s.query(q)
}

func (s *indexerStub) ProposalByID(_ context.Context, daoID string, proposalID int64) (*entity.Proposal, error) {
	s.pollCalls.Add(1)
	if s.byID == nil {
		return nil, nil
	}
	return s.byID(daoID, proposalID)
}

func (s *indexerStub) CSVExportURL(q entity.ProposalQuery) string {
	return "https://indexer.example/csv/proposals/" + q.DaoID
}

func proposalTestConfig() *configloader.Config {
	return &configloader.Config{
		Indexer: configloader.IndexerConfig{
			PollMaxAttempts:     3,
			PollBaseDelayMillis: 1,
		},
	}
}

func newProposalService(idx *indexerStub) *ProposalServiceImpl {
	return NewProposalService(idx, nopLogger{}, proposalTestConfig(),
		cache.New(time.Minute, time.Minute))
}

func TestQueryCachesIdenticalQueries(t *testing.T) {
	idx := &indexerStub{}
	svc := newProposalService(idx)
	q := entity.ProposalQuery{DaoID: "dao.sputnik-dao.near", Category: "payments", Page: 1, PageSize: 20}

	first, err := svc.Query(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), q)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), idx.queryCalls.Load())

	// A different page is a different cache entry.
	q.Page = 2
	_, err = svc.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), idx.queryCalls.Load())
}

func TestQueryDoesNotCacheFailures(t *testing.T) {
	idx := &indexerStub{query: func(entity.ProposalQuery) (*entity.ProposalPage, error) {
		return nil, errors.New("indexer down")
	}}
	svc := newProposalService(idx)
	q := entity.ProposalQuery{DaoID: "dao.sputnik-dao.near"}

	_, err := svc.Query(context.Background(), q)
	require.Error(t, err)

	_, err = svc.Query(context.Background(), q)
	require.Error(t, err)
	assert.Equal(t, int64(2), idx.queryCalls.Load(), "errors bypass the cache")
}

func TestAwaitProposalIndexedStopsAtFirstHit(t *testing.T) {
	idx := &indexerStub{}
	idx.byID = func(string, int64) (*entity.Proposal, error) {
		if idx.pollCalls.Load() < 2 {
			return nil, nil // indexer lagging
		}
		return &entity.Proposal{ID: 7}, nil
	}
	svc := newProposalService(idx)

	err := svc.AwaitProposalIndexed(context.Background(), "dao.sputnik-dao.near", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), idx.pollCalls.Load())
}

func TestAwaitProposalIndexedExhaustsBudget(t *testing.T) {
	idx := &indexerStub{} // never indexed
	svc := newProposalService(idx)

	err := svc.AwaitProposalIndexed(context.Background(), "dao.sputnik-dao.near", 7)
	require.Error(t, err)
	assert.Equal(t, int64(3), idx.pollCalls.Load(), "polling is bounded by the attempt budget")
}

func TestAwaitProposalIndexedHonorsContext(t *testing.T) {
	cfg := proposalTestConfig()
	cfg.Indexer.PollBaseDelayMillis = 60000 // would wait a minute per attempt
	idx := &indexerStub{}
	svc := NewProposalService(idx, nopLogger{}, cfg, cache.New(time.Minute, time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := svc.AwaitProposalIndexed(ctx, "dao.sputnik-dao.near", 7)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, idx.pollCalls.Load())
}

func TestAwaitProposalIndexedInvalidatesDAOPages(t *testing.T) {
	idx := &indexerStub{byID: func(string, int64) (*entity.Proposal, error) {
		return &entity.Proposal{ID: 1}, nil
	}}
	svc := newProposalService(idx)

	mine := entity.ProposalQuery{DaoID: "mine.sputnik-dao.near", Page: 1}
	other := entity.ProposalQuery{DaoID: "other.sputnik-dao.near", Page: 1}

	_, err := svc.Query(context.Background(), mine)
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), other)
	require.NoError(t, err)
	require.Equal(t, int64(2), idx.queryCalls.Load())

	require.NoError(t, svc.AwaitProposalIndexed(context.Background(), mine.DaoID, 1))

	// Pages for the written-to DAO were dropped; the other DAO's page survives.
	_, err = svc.Query(context.Background(), mine)
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, int64(3), idx.queryCalls.Load())
}

func TestExportURLPassthrough(t *testing.T) {
	svc := newProposalService(&indexerStub{})
	url := svc.ExportURL(entity.ProposalQuery{DaoID: "dao.sputnik-dao.near"})
	assert.Equal(t, "https://indexer.example/csv/proposals/dao.sputnik-dao.near", url)
}
