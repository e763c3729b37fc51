package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBatchRepository implements replenishment.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID retrieves a batch with its items
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*replenishment.Batch, error) {
	var batch replenishment.Batch
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("batch not found")
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDForUpdate retrieves a batch with its items, taking row-level write
// locks on both the batch row and every item row. Preload does not lock
// associated rows, so the items are fetched with their own locking query.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*replenishment.Batch, error) {
	var batch replenishment.Batch
	err := withRowLock(r.db.WithContext(ctx)).
		First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("batch not found")
		}
		return nil, err
	}

	err = withRowLock(r.db.WithContext(ctx)).
		Where("batch_id = ?", id).
		Order("created_at ASC").
		Find(&batch.Items).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindAll retrieves batches matching the filter
func (r *GormBatchRepository) FindAll(ctx context.Context, filter replenishment.BatchFilter) (*shared.Paginated[replenishment.Batch], error) {
	query := r.db.WithContext(ctx).Model(&replenishment.Batch{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ExpectedFrom != nil {
		query = query.Where("expected_date >= ?", *filter.ExpectedFrom)
	}
	if filter.ExpectedTo != nil {
		query = query.Where("expected_date <= ?", *filter.ExpectedTo)
	}
	if filter.Search != "" {
		query = query.Where("batch_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, BatchSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var batches []replenishment.Batch
	if err := query.Preload("Items").Find(&batches).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(batches, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save inserts a batch together with its items
func (r *GormBatchRepository) Save(ctx context.Context, batch *replenishment.Batch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// Update persists the batch header with an optimistic version check. Items
// are saved separately through UpdateItem.
func (r *GormBatchRepository) Update(ctx context.Context, batch *replenishment.Batch) error {
	result := r.db.WithContext(ctx).
		Model(&replenishment.Batch{}).
		Where("id = ? AND version = ?", batch.ID, batch.Version).
		Updates(map[string]any{
			"status":        batch.Status,
			"expected_date": batch.ExpectedDate,
			"notes":         batch.Notes,
			"version":       batch.Version + 1,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&replenishment.Batch{}).
			Where("id = ?", batch.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.NewNotFoundError("batch not found")
		}
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "the batch has been modified by another request")
	}
	batch.IncrementVersion()
	return nil
}

// FindItemByID retrieves a single batch item
func (r *GormBatchRepository) FindItemByID(ctx context.Context, itemID uuid.UUID) (*replenishment.BatchItem, error) {
	var item replenishment.BatchItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("batch item not found")
		}
		return nil, err
	}
	return &item, nil
}

// FindOpenItems retrieves items still awaiting stock across all batches. The
// default order puts the soonest expected date first with undated items last;
// a whitelisted sort field in the filter overrides it.
func (r *GormBatchRepository) FindOpenItems(ctx context.Context, filter shared.Filter) (*shared.Paginated[replenishment.BatchItem], error) {
	openStatuses := []replenishment.ItemStatus{
		replenishment.ItemStatusPending,
		replenishment.ItemStatusPartialReceived,
	}
	query := r.db.WithContext(ctx).
		Model(&replenishment.BatchItem{}).
		Where("status IN ?", openStatuses)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BatchItemSortFields, "expected_date")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("expected_date ASC NULLS LAST").Order("created_at ASC")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var items []replenishment.BatchItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateItem persists one batch item's mutable fields
func (r *GormBatchRepository) UpdateItem(ctx context.Context, item *replenishment.BatchItem) error {
	result := r.db.WithContext(ctx).
		Model(&replenishment.BatchItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"ordered_quantity":  item.OrderedQuantity,
			"received_quantity": item.ReceivedQuantity,
			"unit_cost":         item.UnitCost,
			"status":            item.Status,
			"note":              item.Note,
			"received_at":       item.ReceivedAt,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("batch item not found")
	}
	return nil
}

// UpdateItems persists a set of items, typically after a whole-batch cancel
func (r *GormBatchRepository) UpdateItems(ctx context.Context, items []replenishment.BatchItem) error {
	for idx := range items {
		if err := r.UpdateItem(ctx, &items[idx]); err != nil {
			return err
		}
	}
	return nil
}

var _ replenishment.BatchRepository = (*GormBatchRepository)(nil)
