package nearclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"treasury_dashboard/internal/app/port"
)

// StakingRegistryClient implements port.StakingRegistry over a view call to
// the staking-pool registry contract.
type StakingRegistryClient struct {
	chain      port.ChainViewClient
	registryID string
	logger     *zap.Logger
}

// NewStakingRegistryClient creates a new StakingRegistryClient.
func NewStakingRegistryClient(chain port.ChainViewClient, registryID string, logger *zap.Logger) *StakingRegistryClient {
	return &StakingRegistryClient{
		chain:      chain,
		registryID: registryID,
		logger:     logger.Named("StakingRegistryClient"),
	}
}

var _ port.StakingRegistry = (*StakingRegistryClient)(nil)

// ListStakingPools returns the ids of every staking pool the account has
// delegated to. An account unknown to the registry yields an empty list.
func (c *StakingRegistryClient) ListStakingPools(ctx context.Context, accountID string) ([]string, error) {
	var pools []string
	err := c.chain.ViewFunction(ctx, c.registryID, "get_staking_pools_of", map[string]string{
		"account_id": accountID,
	}, &pools)
	if err != nil {
		return nil, fmt.Errorf("staking pool lookup for %s: %w", accountID, err)
	}
	c.logger.Debug("Resolved staking pools", zap.String("account", accountID), zap.Int("count", len(pools)))
	return pools, nil
}
