package entity

import "encoding/json"

// Proposal categories as understood by the indexer.
const (
	ProposalCategoryPayments      = "payments"
	ProposalCategoryStaking       = "stake-delegation"
	ProposalCategoryAssetExchange = "asset-exchange"
	ProposalCategoryFunctionCall  = "function-call"
)

// Proposal is one governance proposal as returned by the indexer.
// Kind is kept opaque; its shape depends on the proposal category.
type Proposal struct {
	ID             int64           `json:"id"`
	DaoID          string          `json:"daoId"`
	Category       string          `json:"category"`
	Status         string          `json:"status"`
	Proposer       string          `json:"proposer"`
	Description    string          `json:"description"`
	SubmissionTime int64           `json:"submissionTime"`
	Kind           json.RawMessage `json:"kind,omitempty"`
}

// ProposalQuery is a paginated, filtered proposal request.
type ProposalQuery struct {
	DaoID    string   `json:"daoId"`
	Category string   `json:"category,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
	Search   string   `json:"search,omitempty"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

// ProposalPage is one page of proposals plus the total match count.
type ProposalPage struct {
	Proposals []Proposal `json:"proposals"`
	Total     int        `json:"total"`
}
