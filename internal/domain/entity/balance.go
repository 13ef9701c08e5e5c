package entity

import "github.com/shopspring/decimal"

// RawAccountView is the raw result of a view_account query against the chain RPC.
// Amount is a yocto-scale decimal string as returned by the node.
type RawAccountView struct {
	AccountID    string `json:"accountId"`
	Amount       string `json:"amount"`
	StorageUsage uint64 `json:"storageUsage"`
}

// AccountBalance is the categorized balance of a single on-chain account.
// All fields are yocto-scale. Available is Total minus the storage reserve,
// clamped at zero.
type AccountBalance struct {
	Total     decimal.Decimal `json:"totalYocto"`
	Available decimal.Decimal `json:"availableYocto"`
	Storage   decimal.Decimal `json:"storageYocto"`
}

// StateItem is a single key/value pair from a view_state query.
// Both fields are base64-encoded as returned by the node.
type StateItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
