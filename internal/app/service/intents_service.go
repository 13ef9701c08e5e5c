package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/infrastructure/configloader"
	"treasury_dashboard/internal/pkg/utils"
)

const (
	catalogCacheKey    = "catalog"
	metaCachePrefix    = "meta:"
	networkCachePrefix = "network:"
)

// IntentsServiceImpl implements port.IntentsService: it fetches the supported
// token catalog, the treasury's multi-token balances from the intents
// contract, and price/metadata, then folds everything into per-symbol assets.
//
// The metadata cache is injected by the caller so its lifetime and
// invalidation stay under the caller's control.
type IntentsServiceImpl struct {
	chain  port.ChainViewClient
	meta   port.TokenMetaClient
	logger port.Logger
	cfg    *configloader.Config
	cache  *cache.Cache
}

// NewIntentsService creates a new instance of IntentsServiceImpl.
func NewIntentsService(
	chain port.ChainViewClient,
	meta port.TokenMetaClient,
	l port.Logger,
	cfg *configloader.Config,
	metaCache *cache.Cache,
) *IntentsServiceImpl {
	return &IntentsServiceImpl{
		chain:  chain,
		meta:   meta,
		logger: l,
		cfg:    cfg,
		cache:  metaCache,
	}
}

var _ port.IntentsService = (*IntentsServiceImpl)(nil)

// Assets returns the aggregated intents holdings of the treasury. A failure
// of the whole pipeline (catalog unavailable) is an error; failures of
// individual balance batches degrade to missing entries plus FetchErrors.
func (s *IntentsServiceImpl) Assets(ctx context.Context, treasuryID string) ([]entity.AggregatedIntentsAsset, []entity.FetchError, error) {
	catalog, err := s.supportedCatalog(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("supported token catalog: %w", err)
	}
	if len(catalog) == 0 {
		return []entity.AggregatedIntentsAsset{}, nil, nil
	}

	// Dedupe before any fetching so a duplicated catalog entry can never
	// count a balance twice.
	seen := make(map[string]struct{}, len(catalog))
	deduped := make([]entity.CatalogToken, 0, len(catalog))
	for _, tok := range catalog {
		if _, dup := seen[tok.IntentsTokenID]; dup {
			continue
		}
		seen[tok.IntentsTokenID] = struct{}{}
		deduped = append(deduped, tok)
	}

	owned, fetchErrs := s.fetchOwnedBalances(ctx, treasuryID, deduped)

	metaByAssetID, err := s.metadataFor(ctx, deduped)
	if err != nil {
		return nil, fetchErrs, fmt.Errorf("token metadata: %w", err)
	}

	networkByName, err := s.networkInfoFor(ctx, deduped)
	if err != nil {
		// Network info only affects labels/icons; degrade to bare chain names.
		s.logger.Warn("Failed to fetch blockchain info, using chain names as-is", "error", err)
		networkByName = map[string]entity.NetworkInfo{}
	}

	assets, err := AggregateIntentsAssets(owned, deduped, metaByAssetID, networkByName)
	if err != nil {
		return nil, fetchErrs, err
	}
	return assets, fetchErrs, nil
}

// fetchOwnedBalances queries the intents contract for the treasury's raw
// balances, batched to the backend's id limit. A failed batch is reported and
// skipped; its tokens simply stay absent from the owned map.
func (s *IntentsServiceImpl) fetchOwnedBalances(ctx context.Context, treasuryID string, catalog []entity.CatalogToken) (map[string]string, []entity.FetchError) {
	ids := make([]string, 0, len(catalog))
	for _, tok := range catalog {
		ids = append(ids, tok.IntentsTokenID)
	}

	var (
		mu        sync.Mutex
		owned     = make(map[string]string, len(ids))
		fetchErrs []entity.FetchError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Performance.MaxConcurrentRoutines)

	for _, batch := range utils.BatchStrings(ids, s.cfg.TokenMeta.MaxIDsPerRequest) {
		g.Go(func() error {
			amounts, err := s.chain.BatchBalanceOf(gctx, s.cfg.Treasury.IntentsContractID, treasuryID, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Intents balance batch failed", "treasury", treasuryID,
					"batch_size", len(batch), "error", err)
				fetchErrs = append(fetchErrs, entity.FetchError{
					TreasuryID: treasuryID,
					Section:    entity.SectionIntents,
					Message:    err.Error(),
				})
				return nil
			}
			for i, id := range batch {
				if i < len(amounts) {
					owned[id] = amounts[i]
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return owned, fetchErrs
}

// supportedCatalog returns the cached supported-token catalog, fetching it
// from the metadata backend on a miss.
func (s *IntentsServiceImpl) supportedCatalog(ctx context.Context) ([]entity.CatalogToken, error) {
	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		return cached.([]entity.CatalogToken), nil
	}
	catalog, err := s.meta.SupportedTokenCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(catalogCacheKey, catalog, cache.DefaultExpiration)
	return catalog, nil
}

// metadataFor resolves metadata for every catalog token, serving cached
// entries and fetching only the missing ids in batches.
func (s *IntentsServiceImpl) metadataFor(ctx context.Context, catalog []entity.CatalogToken) (map[string]entity.TokenMetadata, error) {
	result := make(map[string]entity.TokenMetadata, len(catalog))
	var missing []string
	for _, tok := range catalog {
		if tok.DefuseAssetID == "" {
			continue
		}
		if cached, ok := s.cache.Get(metaCachePrefix + tok.DefuseAssetID); ok {
			result[tok.DefuseAssetID] = cached.(entity.TokenMetadata)
			continue
		}
		missing = append(missing, tok.DefuseAssetID)
	}

	for _, batch := range utils.BatchStrings(missing, s.cfg.TokenMeta.MaxIDsPerRequest) {
		metas, err := s.meta.MetadataByDefuseAssetID(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, m := range metas {
			result[m.DefuseAssetID] = m
			s.cache.Set(metaCachePrefix+m.DefuseAssetID, m, cache.DefaultExpiration)
		}
	}
	return result, nil
}

// networkInfoFor resolves display info for every source chain in the catalog.
func (s *IntentsServiceImpl) networkInfoFor(ctx context.Context, catalog []entity.CatalogToken) (map[string]entity.NetworkInfo, error) {
	result := make(map[string]entity.NetworkInfo)
	var missing []string
	seen := make(map[string]struct{})
	for _, tok := range catalog {
		name := strings.ToLower(tok.ChainName)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if cached, ok := s.cache.Get(networkCachePrefix + name); ok {
			result[name] = cached.(entity.NetworkInfo)
			continue
		}
		missing = append(missing, name)
	}

	if len(missing) > 0 {
		infos, err := s.meta.BlockchainInfo(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			name := strings.ToLower(info.ShortName)
			if name == "" {
				continue
			}
			result[name] = info
			s.cache.Set(networkCachePrefix+name, info, cache.DefaultExpiration)
		}
	}
	return result, nil
}
