package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the receiving status of a single batch line
type ItemStatus string

const (
	ItemStatusPending         ItemStatus = "PENDING"
	ItemStatusPartialReceived ItemStatus = "PARTIAL_RECEIVED"
	ItemStatusCompleted       ItemStatus = "COMPLETED"
	ItemStatusCancelled       ItemStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusPartialReceived, ItemStatusCompleted, ItemStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the item can accept further receipts
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusCancelled
}

// BatchItem is one ordered line of a replenishment batch. It accumulates
// receipts until the ordered quantity is met, then freezes.
type BatchItem struct {
	shared.BaseEntity
	BatchID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderedQuantity  int64           `gorm:"not null"`
	ReceivedQuantity int64           `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status           ItemStatus      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Note             string          `gorm:"type:text"`
	ExpectedDate     *time.Time      `gorm:"index"`
	ReceivedAt       *time.Time
}

// TableName returns the table name for GORM
func (BatchItem) TableName() string {
	return "replenishment_batch_items"
}

// NewBatchItem creates a pending line for the given product
func NewBatchItem(batchID, productID uuid.UUID, orderedQty int64, unitCost decimal.Decimal, note string, expectedDate *time.Time) (*BatchItem, error) {
	if orderedQty <= 0 {
		return nil, shared.NewValidationError("ordered_quantity", "ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("unit_cost", "unit cost cannot be negative")
	}

	return &BatchItem{
		BaseEntity:      shared.NewBaseEntity(),
		BatchID:         batchID,
		ProductID:       productID,
		OrderedQuantity: orderedQty,
		UnitCost:        unitCost,
		Status:          ItemStatusPending,
		Note:            note,
		ExpectedDate:    expectedDate,
	}, nil
}

// RemainingQuantity returns the quantity still outstanding on this line
func (i *BatchItem) RemainingQuantity() int64 {
	return i.OrderedQuantity - i.ReceivedQuantity
}

// Receive records a partial or final delivery against the line. The receipt
// must not push the received total past the ordered quantity. When the line
// fills up it moves to COMPLETED and the receipt time is recorded.
func (i *BatchItem) Receive(quantity int64, at time.Time) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "receive quantity must be positive")
	}
	if i.Status.IsTerminal() {
		return shared.NewConflictError("item is not open for receiving")
	}
	if quantity > i.RemainingQuantity() {
		return shared.NewConflictError("receive quantity exceeds remaining quantity")
	}

	i.ReceivedQuantity += quantity
	if i.ReceivedQuantity == i.OrderedQuantity {
		i.Status = ItemStatusCompleted
		i.ReceivedAt = &at
	} else {
		i.Status = ItemStatusPartialReceived
	}
	i.Touch()
	return nil
}

// Cancel voids the line. Only lines with no receipts can be cancelled.
func (i *BatchItem) Cancel() error {
	if i.Status == ItemStatusCancelled {
		return shared.NewConflictError("item is already cancelled")
	}
	if i.ReceivedQuantity > 0 {
		return shared.NewConflictError("item with received stock cannot be cancelled")
	}

	i.Status = ItemStatusCancelled
	i.Touch()
	return nil
}

// UpdateOrder amends an untouched line, applying only the fields that are set.
// Nil fields keep their current values. Returns the signed quantity delta the
// product's pending counter must absorb, zero unless the ordered quantity
// changed. Lines with any receipts are frozen.
func (i *BatchItem) UpdateOrder(orderedQty *int64, unitCost *decimal.Decimal, note *string) (int64, error) {
	if i.Status != ItemStatusPending {
		return 0, shared.NewConflictError("only pending items can be edited")
	}
	if i.ReceivedQuantity > 0 {
		return 0, shared.NewConflictError("item with received stock cannot be edited")
	}
	if orderedQty == nil && unitCost == nil && note == nil {
		return 0, shared.NewValidationError("body", "nothing to update")
	}
	if orderedQty != nil && *orderedQty <= 0 {
		return 0, shared.NewValidationError("ordered_quantity", "ordered quantity must be positive")
	}
	if unitCost != nil && unitCost.IsNegative() {
		return 0, shared.NewValidationError("unit_cost", "unit cost cannot be negative")
	}

	var delta int64
	if orderedQty != nil {
		delta = *orderedQty - i.OrderedQuantity
		i.OrderedQuantity = *orderedQty
	}
	if unitCost != nil {
		i.UnitCost = *unitCost
	}
	if note != nil {
		i.Note = *note
	}
	i.Touch()
	return delta, nil
}
