package entity

import "github.com/shopspring/decimal"

// CatalogToken is one entry of the supported-token catalog served by the
// token metadata backend. IntentsTokenID is the namespaced identifier used by
// the intents settlement contract (e.g. "nep141:<contract>").
type CatalogToken struct {
	Standard       string `json:"standard"`
	IntentsTokenID string `json:"intents_token_id"`
	AssetName      string `json:"asset_name"`
	DefuseAssetID  string `json:"defuse_asset_identifier"`
	ChainName      string `json:"chainName"`
}

// TokenMetadata is price/display metadata for one defuse asset id.
type TokenMetadata struct {
	DefuseAssetID string          `json:"defuseAssetId"`
	Symbol        string          `json:"symbol"`
	Icon          string          `json:"icon"`
	Decimals      int32           `json:"decimals"`
	Price         decimal.Decimal `json:"price"`
	Blockchain    string          `json:"blockchain"`
}

// NetworkInfo describes a source blockchain as known to the metadata backend.
// ShortName echoes the chain name the info was requested under; Name is the
// human-readable label.
type NetworkInfo struct {
	ShortName string `json:"shortName"`
	Network   string `json:"network"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
}

// IntentsToken is a balance held in the intents settlement contract.
// Amount is the raw smallest-unit string reported by the contract.
type IntentsToken struct {
	TokenID    string          `json:"token_id"`
	Amount     string          `json:"amount"`
	Symbol     string          `json:"symbol"`
	Icon       string          `json:"icon"`
	Decimals   int32           `json:"decimals"`
	Price      decimal.Decimal `json:"price"`
	Blockchain string          `json:"blockchain"`
}

// IntentsNetworkHolding is the per-chain breakdown row of an aggregated asset.
type IntentsNetworkHolding struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Icon     string          `json:"icon"`
	ChainID  string          `json:"chainId"`
	Decimals int32           `json:"decimals"`
	Amount   decimal.Decimal `json:"amount"`
}

// AggregatedIntentsAsset groups intents tokens by canonical symbol across
// chains. TotalAmount is the sum of readable per-network amounts; groups with
// a zero total are filtered before presentation.
type AggregatedIntentsAsset struct {
	Symbol      string                  `json:"symbol"`
	Icon        string                  `json:"icon"`
	Price       decimal.Decimal         `json:"price"`
	TotalAmount decimal.Decimal         `json:"totalAmount"`
	TotalUSD    decimal.Decimal         `json:"totalUsd"`
	Networks    []IntentsNetworkHolding `json:"networks"`
}
