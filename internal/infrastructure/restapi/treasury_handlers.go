package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/pkg/utils"
)

// TreasuryHandler handles treasury balance and profile HTTP requests.
type TreasuryHandler struct {
	treasurySvc port.TreasuryService
	profileSvc  port.ProfileService
	logger      port.Logger
}

// NewTreasuryHandler creates a new TreasuryHandler.
func NewTreasuryHandler(ts port.TreasuryService, ps port.ProfileService, l port.Logger) *TreasuryHandler {
	return &TreasuryHandler{
		treasurySvc: ts,
		profileSvc:  ps,
		logger:      l,
	}
}

// GetSnapshotHandler returns the full balance snapshot for a treasury.
func (h *TreasuryHandler) GetSnapshotHandler(c *gin.Context) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return
	}

	snapshot, err := h.treasurySvc.Snapshot(c.Request.Context(), treasuryID)
	if err != nil {
		h.logger.Error("Snapshot request failed", "treasury", treasuryID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load treasury snapshot"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetLockupHandler returns the reconciled lockup section of the snapshot.
// A treasury without a lockup yields an explicit exists=false body, not an
// error.
func (h *TreasuryHandler) GetLockupHandler(c *gin.Context) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return
	}

	snapshot, err := h.treasurySvc.Snapshot(c.Request.Context(), treasuryID)
	if err != nil {
		h.logger.Error("Lockup request failed", "treasury", treasuryID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load treasury snapshot"})
		return
	}

	if snapshot.Lockup == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":          true,
		"lockupAccountId": snapshot.LockupAccountID,
		"balances":        snapshot.Lockup,
	})
}

// GetIntentsHandler returns the aggregated intents assets of the treasury.
func (h *TreasuryHandler) GetIntentsHandler(c *gin.Context) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return
	}

	snapshot, err := h.treasurySvc.Snapshot(c.Request.Context(), treasuryID)
	if err != nil {
		h.logger.Error("Intents request failed", "treasury", treasuryID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load treasury snapshot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": snapshot.Intents})
}

// RefreshSnapshotHandler forces a full snapshot recompute, used after a write
// transaction went through.
func (h *TreasuryHandler) RefreshSnapshotHandler(c *gin.Context) {
	treasuryID, ok := requireAccountID(c)
	if !ok {
		return
	}

	snapshot, err := h.treasurySvc.Refresh(c.Request.Context(), treasuryID)
	if err != nil {
		h.logger.Error("Snapshot refresh failed", "treasury", treasuryID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh treasury snapshot"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetProfilesHandler resolves social profiles for a comma-separated ids list.
func (h *TreasuryHandler) GetProfilesHandler(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	var ids []string
	for _, id := range strings.Split(idsParam, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !utils.IsValidAccountID(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id: " + id})
			return
		}
		ids = append(ids, id)
	}

	profiles, err := h.profileSvc.Profiles(c.Request.Context(), ids)
	if err != nil {
		h.logger.Error("Profile lookup failed", "count", len(ids), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// requireAccountID validates the accountId path parameter, writing a 400
// response when it is malformed.
func requireAccountID(c *gin.Context) (string, bool) {
	id := c.Param("accountId")
	if !utils.IsValidAccountID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id: " + id})
		return "", false
	}
	return id, true
}

// parsePositiveInt parses a query parameter into a positive int with a default.
func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
