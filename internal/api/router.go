package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes of the ingestion service.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.GET("/healthz", api.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/documents", api.IngestDocumentHandler)
		v1.POST("/documents/batch", api.IngestBatchHandler)
		v1.POST("/query", api.QueryHandler)
		v1.POST("/reset", api.ResetHandler)
	}
}
