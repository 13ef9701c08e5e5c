package restapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches all /api/v1 routes to the router.
func RegisterRoutes(router *gin.Engine, th *TreasuryHandler, ph *ProposalHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/treasuries/:accountId", th.GetSnapshotHandler)
		v1.POST("/treasuries/:accountId/refresh", th.RefreshSnapshotHandler)
		v1.GET("/treasuries/:accountId/lockup", th.GetLockupHandler)
		v1.GET("/treasuries/:accountId/intents", th.GetIntentsHandler)

		v1.GET("/treasuries/:accountId/proposals", ph.ListProposalsHandler)
		v1.GET("/treasuries/:accountId/proposals/export", ph.ExportProposalsHandler)
		v1.GET("/treasuries/:accountId/proposals/:proposalId/await", ph.AwaitProposalHandler)

		v1.GET("/profiles", th.GetProfilesHandler)
	}
}
