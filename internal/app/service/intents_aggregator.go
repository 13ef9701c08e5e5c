package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/pkg/utils"
)

// AggregateIntentsAssets folds raw intents-contract balances into per-symbol
// assets with a per-chain breakdown.
//
// The catalog is deduplicated by intents token id first (first occurrence
// wins), so a balance is never counted twice. Tokens without resolvable
// metadata are excluded entirely rather than zero-filled, and asset groups
// whose total readable amount is zero are dropped from the result.
func AggregateIntentsAssets(
	owned map[string]string,
	catalog []entity.CatalogToken,
	metaByAssetID map[string]entity.TokenMetadata,
	networkByName map[string]entity.NetworkInfo,
) ([]entity.AggregatedIntentsAsset, error) {
	seen := make(map[string]struct{}, len(catalog))
	groups := make(map[string]*entity.AggregatedIntentsAsset)

	for _, tok := range catalog {
		if _, dup := seen[tok.IntentsTokenID]; dup {
			continue
		}
		seen[tok.IntentsTokenID] = struct{}{}

		meta, ok := metaByAssetID[tok.DefuseAssetID]
		if !ok {
			continue
		}

		symbol := strings.ToUpper(meta.Symbol)
		if symbol == "" {
			symbol = strings.ToUpper(tok.AssetName)
		}
		if symbol == "" {
			continue
		}

		amount, err := utils.ReadableAmount(owned[tok.IntentsTokenID], meta.Decimals)
		if err != nil {
			return nil, err
		}
		// A token without a balance contributes no network row; otherwise an
		// asset held on one chain would list every supported chain.
		if !amount.IsPositive() {
			continue
		}

		group, ok := groups[symbol]
		if !ok {
			group = &entity.AggregatedIntentsAsset{
				Symbol:      symbol,
				Icon:        meta.Icon,
				Price:       meta.Price,
				TotalAmount: decimal.Zero,
				TotalUSD:    decimal.Zero,
			}
			groups[symbol] = group
		}

		networkID := strings.ToLower(tok.ChainName)
		label, chainID, icon := tok.ChainName, tok.ChainName, ""
		if info, ok := networkByName[networkID]; ok {
			if info.Name != "" {
				label = info.Name
			}
			if info.Network != "" {
				chainID = info.Network
			}
			icon = info.Icon
		}

		// The same chain can contribute through several catalog entries;
		// merge into one network row instead of duplicating it.
		merged := false
		for i := range group.Networks {
			if group.Networks[i].ID == networkID {
				group.Networks[i].Amount = group.Networks[i].Amount.Add(amount)
				merged = true
				break
			}
		}
		if !merged {
			group.Networks = append(group.Networks, entity.IntentsNetworkHolding{
				ID:       networkID,
				Label:    label,
				Icon:     icon,
				ChainID:  chainID,
				Decimals: meta.Decimals,
				Amount:   amount,
			})
		}
		group.TotalAmount = group.TotalAmount.Add(amount)
	}

	assets := make([]entity.AggregatedIntentsAsset, 0, len(groups))
	for _, group := range groups {
		if !group.TotalAmount.IsPositive() {
			continue
		}
		group.TotalUSD = group.TotalAmount.Mul(group.Price)
		sort.Slice(group.Networks, func(i, j int) bool {
			return group.Networks[i].ID < group.Networks[j].ID
		})
		assets = append(assets, *group)
	}

	// Deterministic output for identical inputs.
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Symbol < assets[j].Symbol
	})
	return assets, nil
}
