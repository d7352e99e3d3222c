package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/facetrail/internal/logger"
	"github.com/timmy/facetrail/internal/service"
)

// maxBatchBytes caps the accepted request body.
const maxBatchBytes = 6 << 20

// BatchHandler processes one raw event batch.
type BatchHandler interface {
	HandleBatch(ctx context.Context, payload []byte) *service.BatchResult
}

// EventHandler accepts event batches over HTTP.
type EventHandler struct {
	batches BatchHandler
}

// NewEventHandler creates a new event handler
func NewEventHandler(batches BatchHandler) *EventHandler {
	return &EventHandler{batches: batches}
}

// Ingest handles POST /api/v1/events. The response carries the batch status
// code and result body.
func (h *EventHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBatchBytes+1))
	if err != nil {
		logger.CtxWarn(ctx, "Failed to read request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) > maxBatchBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "batch too large"})
		return
	}

	result := h.batches.HandleBatch(ctx, body)
	c.JSON(result.StatusCode, result)
}
