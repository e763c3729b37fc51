package replenishment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// BatchStatus is the aggregated receiving status of a batch. It is never set
// directly by callers; it is recomputed from the item statuses after every
// mutation and cached on the row for listing queries.
type BatchStatus string

const (
	BatchStatusPending         BatchStatus = "PENDING"
	BatchStatusPartialReceived BatchStatus = "PARTIAL_RECEIVED"
	BatchStatusCompleted       BatchStatus = "COMPLETED"
	BatchStatusCancelled       BatchStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusPartialReceived, BatchStatusCompleted, BatchStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the batch can still change
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusCancelled
}

// Batch is a purchase order placed with a supplier. Its lines are received
// independently, possibly across several deliveries.
type Batch struct {
	shared.BaseAggregateRoot
	BatchNumber  string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID   *uuid.UUID  `gorm:"type:uuid;index"`
	Status       BatchStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ExpectedDate *time.Time  `gorm:"index"`
	Notes        string      `gorm:"type:text"`
	Items        []BatchItem `gorm:"foreignKey:BatchID"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "replenishment_batches"
}

// NewBatch creates an empty pending batch. The supplier reference is optional;
// ad-hoc restocks have none. Items are attached by the caller before the batch
// is persisted; a batch without items is not valid.
func NewBatch(batchNumber string, supplierID *uuid.UUID, expectedDate *time.Time, notes string) (*Batch, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, shared.NewValidationError("batch_number", "batch number cannot be empty")
	}
	if supplierID != nil && *supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier_id", "supplier id cannot be the zero uuid")
	}

	return &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batchNumber,
		SupplierID:        supplierID,
		Status:            BatchStatusPending,
		ExpectedDate:      expectedDate,
		Notes:             notes,
	}, nil
}

// GenerateBatchNumber builds a human-readable batch number from the current time
func GenerateBatchNumber(now time.Time) string {
	return fmt.Sprintf("RB-%s-%04d", now.Format("20060102"), now.UnixNano()%10000)
}

// FindItem returns the item with the given id, or nil if the batch has no such line
func (b *Batch) FindItem(itemID uuid.UUID) *BatchItem {
	for idx := range b.Items {
		if b.Items[idx].ID == itemID {
			return &b.Items[idx]
		}
	}
	return nil
}

// AggregateStatus derives a batch status from its item statuses:
//
//	all items cancelled                               -> CANCELLED
//	all terminal, at least one completed              -> COMPLETED
//	any received stock or completed among open lines  -> PARTIAL_RECEIVED
//	otherwise                                         -> PENDING
func AggregateStatus(items []BatchItem) BatchStatus {
	if len(items) == 0 {
		return BatchStatusPending
	}

	allCancelled := true
	allTerminal := true
	anyProgress := false

	for idx := range items {
		switch items[idx].Status {
		case ItemStatusCancelled:
		case ItemStatusCompleted:
			allCancelled = false
			anyProgress = true
		case ItemStatusPartialReceived:
			allCancelled = false
			allTerminal = false
			anyProgress = true
		default:
			allCancelled = false
			allTerminal = false
		}
	}

	switch {
	case allCancelled:
		return BatchStatusCancelled
	case allTerminal:
		return BatchStatusCompleted
	case anyProgress:
		return BatchStatusPartialReceived
	default:
		return BatchStatusPending
	}
}

// RefreshStatus recomputes the cached batch status from the loaded items and
// reports whether it changed.
func (b *Batch) RefreshStatus() bool {
	next := AggregateStatus(b.Items)
	if next == b.Status {
		return false
	}
	b.Status = next
	b.Touch()
	return true
}

// CanCancel reports whether the whole batch may still be voided. A batch with
// any received stock is part of inventory history and cannot be cancelled.
func (b *Batch) CanCancel() error {
	if b.Status.IsTerminal() {
		return shared.NewConflictError("batch is already closed")
	}
	for idx := range b.Items {
		if b.Items[idx].ReceivedQuantity > 0 {
			return shared.NewConflictError("batch with received stock cannot be cancelled")
		}
	}
	return nil
}

// Cancel voids the batch and every open line. Fails if any line has receipts.
func (b *Batch) Cancel() error {
	if err := b.CanCancel(); err != nil {
		return err
	}
	for idx := range b.Items {
		if b.Items[idx].Status != ItemStatusCancelled {
			if err := b.Items[idx].Cancel(); err != nil {
				return err
			}
		}
	}
	b.Status = BatchStatusCancelled
	b.Touch()
	return nil
}
