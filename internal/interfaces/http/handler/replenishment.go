package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	replapp "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// ReplenishmentHandler handles replenishment batch and receiving endpoints.
type ReplenishmentHandler struct {
	BaseHandler
	batchService     *replapp.BatchService
	receivingService *replapp.ReceivingService
}

// NewReplenishmentHandler creates a new ReplenishmentHandler.
func NewReplenishmentHandler(batchService *replapp.BatchService, receivingService *replapp.ReceivingService, logger *zap.Logger) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		BaseHandler:      *NewBaseHandler(logger),
		batchService:     batchService,
		receivingService: receivingService,
	}
}

// CreateBatch handles POST /api/v1/replenishment/batches
func (h *ReplenishmentHandler) CreateBatch(c *gin.Context) {
	var req replapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatValidationError(err))
		return
	}

	batch, err := h.batchService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// ListBatches handles GET /api/v1/replenishment/batches
func (h *ReplenishmentHandler) ListBatches(c *gin.Context) {
	var filter replapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, middleware.FormatValidationError(err))
		return
	}

	result, err := h.batchService.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetBatch handles GET /api/v1/replenishment/batches/:id
func (h *ReplenishmentHandler) GetBatch(c *gin.Context) {
	batchID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// CancelBatch handles POST /api/v1/replenishment/batches/:id/cancel
func (h *ReplenishmentHandler) CancelBatch(c *gin.Context) {
	batchID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.CancelBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// ReceiveItem handles POST /api/v1/replenishment/items/:id/receive
//
// Clients may send an X-Idempotency-Key header to guard against duplicate
// submissions of the same delivery.
func (h *ReplenishmentHandler) ReceiveItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req replapp.ReceiveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatValidationError(err))
		return
	}

	idempotencyKey := c.GetHeader("X-Idempotency-Key")

	result, err := h.receivingService.ReceiveItem(c.Request.Context(), itemID, req, idempotencyKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateItem handles PATCH /api/v1/replenishment/items/:id
func (h *ReplenishmentHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req replapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatValidationError(err))
		return
	}

	item, err := h.receivingService.UpdateItem(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// CancelItem handles POST /api/v1/replenishment/items/:id/cancel
func (h *ReplenishmentHandler) CancelItem(c *gin.Context) {
	itemID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.receivingService.CancelItem(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// ListOpenItems handles GET /api/v1/replenishment/items/open
//
// Open items are pending or partially received lines, ordered by expected
// date with undated lines last unless an explicit sort is requested.
func (h *ReplenishmentHandler) ListOpenItems(c *gin.Context) {
	var req struct {
		Page     int    `form:"page" binding:"omitempty,min=1"`
		PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
		OrderBy  string `form:"order_by"`
		OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, middleware.FormatValidationError(err))
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir

	result, err := h.receivingService.ListOpenItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
