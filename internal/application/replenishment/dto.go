package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/shopspring/decimal"
)

// CreateBatchItemRequest is one ordered line in a batch creation request
type CreateBatchItemRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	OrderedQuantity int64           `json:"ordered_quantity" binding:"required,gt=0"`
	UnitCost        decimal.Decimal `json:"unit_cost" binding:"required"`
	Note            string          `json:"note"`
	ExpectedDate    *time.Time      `json:"expected_date"`
}

// CreateBatchRequest represents a request to create a replenishment batch.
// The supplier is optional; ad-hoc restocks carry none.
type CreateBatchRequest struct {
	SupplierID   *uuid.UUID               `json:"supplier_id"`
	BatchNumber  string                   `json:"batch_number"`
	ExpectedDate *time.Time               `json:"expected_date"`
	Notes        string                   `json:"notes"`
	Items        []CreateBatchItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItemRequest represents a delivery recorded against one batch item
type ReceiveItemRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// UpdateItemRequest amends an untouched batch item. Every field is optional;
// only the fields present in the request are applied.
type UpdateItemRequest struct {
	OrderedQuantity *int64           `json:"ordered_quantity" binding:"omitempty,gt=0"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	Note            *string          `json:"note"`
}

// BatchListFilter represents filter options for batch listing. Dates accept
// RFC3339 or plain YYYY-MM-DD.
type BatchListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING PARTIAL_RECEIVED COMPLETED CANCELLED"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	DateFrom   string     `form:"date_from"`
	DateTo     string     `form:"date_to"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchItemResponse represents a batch item in API responses
type BatchItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	BatchID           uuid.UUID       `json:"batch_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	OrderedQuantity   int64           `json:"ordered_quantity"`
	ReceivedQuantity  int64           `json:"received_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Status            string          `json:"status"`
	Note              string          `json:"note,omitempty"`
	ExpectedDate      *time.Time      `json:"expected_date,omitempty"`
	ReceivedAt        *time.Time      `json:"received_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID           uuid.UUID           `json:"id"`
	BatchNumber  string              `json:"batch_number"`
	SupplierID   *uuid.UUID          `json:"supplier_id"`
	Status       string              `json:"status"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Items        []BatchItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Version      int                 `json:"version"`
}

// ReceiveItemResponse reports the outcome of a receipt
type ReceiveItemResponse struct {
	Item          BatchItemResponse `json:"item"`
	ItemCompleted bool              `json:"item_completed"`
	BatchStatus   string            `json:"batch_status"`
}

// ToBatchItemResponse converts a domain item to its response form
func ToBatchItemResponse(item *replenishment.BatchItem) BatchItemResponse {
	return BatchItemResponse{
		ID:                item.ID,
		BatchID:           item.BatchID,
		ProductID:         item.ProductID,
		OrderedQuantity:   item.OrderedQuantity,
		ReceivedQuantity:  item.ReceivedQuantity,
		RemainingQuantity: item.RemainingQuantity(),
		UnitCost:          item.UnitCost,
		Status:            item.Status.String(),
		Note:              item.Note,
		ExpectedDate:      item.ExpectedDate,
		ReceivedAt:        item.ReceivedAt,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

// ToBatchResponse converts a domain batch to its response form
func ToBatchResponse(batch *replenishment.Batch) BatchResponse {
	items := make([]BatchItemResponse, 0, len(batch.Items))
	for idx := range batch.Items {
		items = append(items, ToBatchItemResponse(&batch.Items[idx]))
	}
	return BatchResponse{
		ID:           batch.ID,
		BatchNumber:  batch.BatchNumber,
		SupplierID:   batch.SupplierID,
		Status:       batch.Status.String(),
		ExpectedDate: batch.ExpectedDate,
		Notes:        batch.Notes,
		Items:        items,
		CreatedAt:    batch.CreatedAt,
		UpdatedAt:    batch.UpdatedAt,
		Version:      batch.Version,
	}
}
