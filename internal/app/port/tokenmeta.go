package port

import (
	"context"

	"treasury_dashboard/internal/domain/entity"
)

// TokenMetaClient defines access to the token metadata/price backend.
type TokenMetaClient interface {
	SupportedTokenCatalog(ctx context.Context) ([]entity.CatalogToken, error)
	MetadataByDefuseAssetID(ctx context.Context, ids []string) ([]entity.TokenMetadata, error)
	BlockchainInfo(ctx context.Context, names []string) ([]entity.NetworkInfo, error)
}

// ProfileClient resolves social profiles for account ids. Accounts without a
// profile are simply absent from the returned map.
type ProfileClient interface {
	ProfilesByAccountIDs(ctx context.Context, ids []string) (map[string]entity.Profile, error)
}
