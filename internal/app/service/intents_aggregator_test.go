package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury_dashboard/internal/domain/entity"
)

func usdcCatalog() []entity.CatalogToken {
	return []entity.CatalogToken{
		{
			IntentsTokenID: "nep141:usdc.near",
			AssetName:      "USDC",
			DefuseAssetID:  "nep141:usdc.near",
			ChainName:      "near",
		},
		{
			IntentsTokenID: "nep141:eth-usdc.omft.near",
			AssetName:      "USDC",
			DefuseAssetID:  "nep141:eth-usdc.omft.near",
			ChainName:      "eth",
		},
	}
}

func usdcMeta(price string) map[string]entity.TokenMetadata {
	p, _ := decimal.NewFromString(price)
	return map[string]entity.TokenMetadata{
		"nep141:usdc.near":          {Symbol: "usdc", Decimals: 6, Price: p, Icon: "usdc.svg"},
		"nep141:eth-usdc.omft.near": {Symbol: "usdc", Decimals: 6, Price: p, Icon: "usdc.svg"},
	}
}

func TestAggregateIntentsAssetsGroupsBySymbol(t *testing.T) {
	owned := map[string]string{
		"nep141:usdc.near":          "1500000", // 1.5 USDC on near
		"nep141:eth-usdc.omft.near": "2500000", // 2.5 USDC on eth
	}
	networks := map[string]entity.NetworkInfo{
		"near": {Network: "near:mainnet", Name: "NEAR Protocol", Icon: "near.svg"},
		"eth":  {Network: "eth:1", Name: "Ethereum", Icon: "eth.svg"},
	}

	assets, err := AggregateIntentsAssets(owned, usdcCatalog(), usdcMeta("1"), networks)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	usdc := assets[0]
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, "4", usdc.TotalAmount.String())
	assert.Equal(t, "4", usdc.TotalUSD.String())
	require.Len(t, usdc.Networks, 2)

	// Network rows are sorted by id.
	assert.Equal(t, "eth", usdc.Networks[0].ID)
	assert.Equal(t, "Ethereum", usdc.Networks[0].Label)
	assert.Equal(t, "eth:1", usdc.Networks[0].ChainID)
	assert.Equal(t, "2.5", usdc.Networks[0].Amount.String())
	assert.Equal(t, "near", usdc.Networks[1].ID)
	assert.Equal(t, "1.5", usdc.Networks[1].Amount.String())
}

func TestAggregateIntentsAssetsDedupeFirstWins(t *testing.T) {
	catalog := append(usdcCatalog(), entity.CatalogToken{
		// Duplicate intents token id with a different chain; must not
		// contribute a second time.
		IntentsTokenID: "nep141:usdc.near",
		AssetName:      "USDC",
		DefuseAssetID:  "nep141:usdc.near",
		ChainName:      "base",
	})
	owned := map[string]string{"nep141:usdc.near": "1000000"}

	assets, err := AggregateIntentsAssets(owned, catalog, usdcMeta("1"), nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "1", assets[0].TotalAmount.String())
	require.Len(t, assets[0].Networks, 1)
	assert.Equal(t, "near", assets[0].Networks[0].ID)
}

func TestAggregateIntentsAssetsOmitsUnheldChains(t *testing.T) {
	// USDC exists on both chains in the catalog but is held only on near;
	// the eth row must not appear as a zero holding.
	owned := map[string]string{"nep141:usdc.near": "1000000"}

	assets, err := AggregateIntentsAssets(owned, usdcCatalog(), usdcMeta("1"), nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Len(t, assets[0].Networks, 1)
	assert.Equal(t, "near", assets[0].Networks[0].ID)
	assert.Equal(t, "1", assets[0].TotalAmount.String())
}

func TestAggregateIntentsAssetsDropsZeroTotals(t *testing.T) {
	// No balance owned anywhere: the group totals zero and is filtered out.
	assets, err := AggregateIntentsAssets(nil, usdcCatalog(), usdcMeta("1"), nil)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestAggregateIntentsAssetsSkipsMissingMetadata(t *testing.T) {
	catalog := []entity.CatalogToken{
		{IntentsTokenID: "nep141:mystery.near", AssetName: "???", DefuseAssetID: "nep141:mystery.near", ChainName: "near"},
	}
	owned := map[string]string{"nep141:mystery.near": "123"}

	assets, err := AggregateIntentsAssets(owned, catalog, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, assets, "tokens without metadata are excluded, not zero-filled")
}

func TestAggregateIntentsAssetsMergesSameChainEntries(t *testing.T) {
	price := decimal.NewFromInt(2)
	catalog := []entity.CatalogToken{
		{IntentsTokenID: "nep141:a.near", AssetName: "ABC", DefuseAssetID: "nep141:a.near", ChainName: "near"},
		{IntentsTokenID: "nep141:b.near", AssetName: "ABC", DefuseAssetID: "nep141:b.near", ChainName: "Near"},
	}
	meta := map[string]entity.TokenMetadata{
		"nep141:a.near": {Symbol: "ABC", Decimals: 2, Price: price},
		"nep141:b.near": {Symbol: "ABC", Decimals: 2, Price: price},
	}
	owned := map[string]string{
		"nep141:a.near": "100", // 1
		"nep141:b.near": "250", // 2.5
	}

	assets, err := AggregateIntentsAssets(owned, catalog, meta, nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Len(t, assets[0].Networks, 1, "chain ids compare case-insensitively")
	assert.Equal(t, "3.5", assets[0].Networks[0].Amount.String())
	assert.Equal(t, "7", assets[0].TotalUSD.String())
}

func TestAggregateIntentsAssetsSymbolFallsBackToAssetName(t *testing.T) {
	catalog := []entity.CatalogToken{
		{IntentsTokenID: "nep141:noname.near", AssetName: "wnear", DefuseAssetID: "nep141:noname.near", ChainName: "near"},
	}
	meta := map[string]entity.TokenMetadata{
		"nep141:noname.near": {Decimals: 0, Price: decimal.NewFromInt(1)},
	}
	owned := map[string]string{"nep141:noname.near": "5"}

	assets, err := AggregateIntentsAssets(owned, catalog, meta, nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "WNEAR", assets[0].Symbol)
}

func TestAggregateIntentsAssetsDeterministicOrder(t *testing.T) {
	price := decimal.NewFromInt(1)
	catalog := []entity.CatalogToken{
		{IntentsTokenID: "t1", AssetName: "ZZZ", DefuseAssetID: "t1", ChainName: "near"},
		{IntentsTokenID: "t2", AssetName: "AAA", DefuseAssetID: "t2", ChainName: "near"},
	}
	meta := map[string]entity.TokenMetadata{
		"t1": {Symbol: "ZZZ", Decimals: 0, Price: price},
		"t2": {Symbol: "AAA", Decimals: 0, Price: price},
	}
	owned := map[string]string{"t1": "1", "t2": "1"}

	for i := 0; i < 5; i++ {
		assets, err := AggregateIntentsAssets(owned, catalog, meta, nil)
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Equal(t, "AAA", assets[0].Symbol)
		assert.Equal(t, "ZZZ", assets[1].Symbol)
	}
}
