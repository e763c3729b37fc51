package replenishment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// BatchFilter narrows batch listing queries
type BatchFilter struct {
	shared.Filter
	Status       *BatchStatus
	SupplierID   *uuid.UUID
	ExpectedFrom *time.Time
	ExpectedTo   *time.Time
}

// BatchRepository defines persistence operations for replenishment batches
// and their items. Item rows belong to the batch aggregate but are addressed
// directly during receiving, so the repository exposes them by id.
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindByIDForUpdate loads the batch and its items under row-level write
	// locks. Receiving flows use it so concurrent receipts against sibling
	// items serialize before the status is recomputed.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindAll(ctx context.Context, filter BatchFilter) (*shared.Paginated[Batch], error)
	Save(ctx context.Context, batch *Batch) error
	Update(ctx context.Context, batch *Batch) error

	FindItemByID(ctx context.Context, itemID uuid.UUID) (*BatchItem, error)
	// FindOpenItems returns PENDING and PARTIAL_RECEIVED items across all
	// batches, soonest expected date first, items without a date last.
	FindOpenItems(ctx context.Context, filter shared.Filter) (*shared.Paginated[BatchItem], error)
	UpdateItem(ctx context.Context, item *BatchItem) error
	UpdateItems(ctx context.Context, items []BatchItem) error
}
