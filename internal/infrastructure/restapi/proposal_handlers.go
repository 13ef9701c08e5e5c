package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var validCategories = map[string]struct{}{
	entity.ProposalCategoryPayments:      {},
	entity.ProposalCategoryStaking:       {},
	entity.ProposalCategoryAssetExchange: {},
	entity.ProposalCategoryFunctionCall:  {},
}

// ProposalHandler handles proposal browsing and CSV export requests.
type ProposalHandler struct {
	proposalSvc port.ProposalService
	logger      port.Logger
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(ps port.ProposalService, l port.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalSvc: ps,
		logger:      l,
	}
}

// ListProposalsHandler returns one filtered page of proposals for a DAO.
func (h *ProposalHandler) ListProposalsHandler(c *gin.Context) {
	q, ok := h.parseQuery(c)
	if !ok {
		return
	}

	page, err := h.proposalSvc.Query(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Proposal query failed", "dao", q.DaoID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load proposals"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportProposalsHandler redirects to the indexer's CSV export for the same
// filter set.
func (h *ProposalHandler) ExportProposalsHandler(c *gin.Context) {
	q, ok := h.parseQuery(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, h.proposalSvc.ExportURL(q))
}

// AwaitProposalHandler blocks until the indexer observes the given proposal,
// bounded by the configured attempt budget. Called by the frontend right
// after a proposal-creating transaction is confirmed.
func (h *ProposalHandler) AwaitProposalHandler(c *gin.Context) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return
	}
	proposalID, err := strconv.ParseInt(c.Param("proposalId"), 10, 64)
	if err != nil || proposalID < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	if err := h.proposalSvc.AwaitProposalIndexed(c.Request.Context(), treasuryID, proposalID); err != nil {
		h.logger.Warn("Proposal not observed by indexer in time",
			"dao", treasuryID, "proposal", proposalID, "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "proposal not indexed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": true})
}

func (h *ProposalHandler) parseQuery(c *gin.Context) (entity.ProposalQuery, bool) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return entity.ProposalQuery{}, false
	}

	category := c.Query("category")
	if category != "" {
		if _, known := validCategories[category]; !known {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown proposal category: " + category})
			return entity.ProposalQuery{}, false
		}
	}

	var statuses []string
	if raw := c.Query("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	pageSize := parsePositiveInt(c.Query("pageSize"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return entity.ProposalQuery{
		DaoID:    treasuryID,
		Category: category,
		Statuses: statuses,
		Search:   c.Query("search"),
		Page:     parsePositiveInt(c.Query("page"), 1),
		PageSize: pageSize,
	}, true
}
