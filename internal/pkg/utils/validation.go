package utils

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NEAR account id rules: 2-64 chars, lowercase alphanumeric segments
// separated by single dots, dashes or underscores inside segments.
var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// IsValidAccountID reports whether id is a syntactically valid account id.
func IsValidAccountID(id string) bool {
	if len(id) < 2 || len(id) > 64 {
		return false
	}
	return accountIDPattern.MatchString(id)
}

// IsValidTargetAddress reports whether addr is a plausible withdrawal target
// for the given chain name. EVM chains are checked strictly; other chains get
// a non-empty sanity check only, since their formats belong to the external
// bridge.
func IsValidTargetAddress(chainName, addr string) bool {
	if addr == "" {
		return false
	}
	switch strings.ToLower(chainName) {
	case "eth", "ethereum", "base", "arbitrum", "arb", "optimism", "polygon", "bsc", "avalanche", "gnosis":
		return common.IsHexAddress(addr)
	case "near":
		return IsValidAccountID(addr)
	default:
		return true
	}
}
