package port

import (
	"context"

	"treasury_dashboard/internal/domain/entity"
)

// ChainViewClient defines read-only access to the blockchain RPC.
// Absence of an account is modeled as (nil, nil), not an error.
type ChainViewClient interface {
	// ViewAccount returns the raw account view, or nil when the account
	// does not exist.
	ViewAccount(ctx context.Context, accountID string) (*entity.RawAccountView, error)

	// ViewFunction executes a view call on a contract and unmarshals the
	// JSON result into out.
	ViewFunction(ctx context.Context, contractID, method string, args any, out any) error

	// ViewState returns the raw key/value storage of a contract,
	// base64-encoded, optionally filtered by a key prefix.
	ViewState(ctx context.Context, contractID, prefixBase64 string) ([]entity.StateItem, error)

	// BatchBalanceOf returns the raw multi-token balances held by accountID
	// in the given settlement contract, one amount string per token id, in
	// request order.
	BatchBalanceOf(ctx context.Context, contractID, accountID string, tokenIDs []string) ([]string, error)
}

// StakingRegistry lists the staking pools an account has ever delegated to.
type StakingRegistry interface {
	ListStakingPools(ctx context.Context, accountID string) ([]string, error)
}
