// Package api exposes the ingestion and query pipelines over HTTP.
package api

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/pipeline"
	"DocuGraph/pkg/logger"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// API provides handlers for document ingestion and querying.
type API struct {
	pipeline *pipeline.DocumentPipeline
	batch    *pipeline.BatchCoordinator
	query    *pipeline.QueryPipeline
	storages *interfaces.Storages
	logger   *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(dp *pipeline.DocumentPipeline, bc *pipeline.BatchCoordinator, qp *pipeline.QueryPipeline, storages *interfaces.Storages, logger *logger.Logger) *API {
	return &API{
		pipeline: dp,
		batch:    bc,
		query:    qp,
		storages: storages,
		logger:   logger,
	}
}

// IngestDocumentHandler ingests a single document by file path.
func (a *API) IngestDocumentHandler(c *gin.Context) {
	var payload struct {
		FilePath string `json:"file_path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	status, err := a.pipeline.ProcessDocument(c.Request.Context(), payload.FilePath)
	if err != nil {
		a.logger.WithFile(payload.FilePath).Error(fmt.Sprintf("ingestion failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest document"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// IngestBatchHandler ingests every supported file under the given paths.
func (a *API) IngestBatchHandler(c *gin.Context) {
	var payload struct {
		Paths []string `json:"paths" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	report, err := a.batch.ProcessBatch(c.Request.Context(), payload.Paths)
	if err != nil {
		a.logger.Error(fmt.Sprintf("batch ingestion failed: %v", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// QueryHandler answers a question over the ingested knowledge. Modal content
// attached to the query is described transiently and folded into the question.
func (a *API) QueryHandler(c *gin.Context) {
	var payload struct {
		Question    string                `json:"question" binding:"required"`
		TopK        int                   `json:"top_k"`
		Attachments []models.ContentBlock `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var answer string
	var err error
	if len(payload.Attachments) > 0 {
		answer, err = a.query.QueryWithMultimodal(c.Request.Context(), payload.Question, payload.Attachments, payload.TopK)
	} else {
		answer, err = a.query.Query(c.Request.Context(), payload.Question, payload.TopK)
	}
	if err != nil {
		a.logger.Error(fmt.Sprintf("query failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer query"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// ResetHandler drops all ingested knowledge.
func (a *API) ResetHandler(c *gin.Context) {
	if err := pipeline.ResetWorkspace(c.Request.Context(), a.storages); err != nil {
		a.logger.Error(fmt.Sprintf("reset failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset workspace"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
