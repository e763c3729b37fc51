package replenishment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/catalog"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
)

// BatchService handles replenishment batch lifecycle operations: creation,
// listing and whole-batch cancellation. Receipts against individual lines
// live in ReceivingService.
type BatchService struct {
	batchRepo    replenishment.BatchRepository
	supplierRepo catalog.SupplierRepository
	txScope      TransactionScope
}

// NewBatchService creates a new BatchService
func NewBatchService(
	batchRepo replenishment.BatchRepository,
	supplierRepo catalog.SupplierRepository,
	txScope TransactionScope,
) *BatchService {
	return &BatchService{
		batchRepo:    batchRepo,
		supplierRepo: supplierRepo,
		txScope:      txScope,
	}
}

// CreateBatch registers a new purchase batch and raises the pending counter
// of every ordered product. The batch rows and the counter updates commit in
// one transaction; any invalid line aborts the whole request.
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "batch must contain at least one item")
	}

	if req.SupplierID != nil {
		exists, err := s.supplierRepo.Exists(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewNotFoundError("supplier not found")
		}
	}

	batchNumber := req.BatchNumber
	if batchNumber == "" {
		batchNumber = replenishment.GenerateBatchNumber(time.Now())
	}

	batch, err := replenishment.NewBatch(batchNumber, req.SupplierID, req.ExpectedDate, req.Notes)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		expected := line.ExpectedDate
		if expected == nil {
			expected = req.ExpectedDate
		}
		item, err := replenishment.NewBatchItem(batch.ID, line.ProductID, line.OrderedQuantity, line.UnitCost, line.Note, expected)
		if err != nil {
			return nil, err
		}
		batch.Items = append(batch.Items, *item)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for idx := range batch.Items {
			product, err := repos.Products().FindByIDForUpdate(ctx, batch.Items[idx].ProductID)
			if err != nil {
				return err
			}
			if err := product.AddPending(batch.Items[idx].OrderedQuantity); err != nil {
				return err
			}
			if err := repos.Products().Update(ctx, product); err != nil {
				return err
			}
		}
		return repos.Batches().Save(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// GetBatch returns a batch with all of its items
func (s *BatchService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// ListBatches returns batches matching the filter
func (s *BatchService) ListBatches(ctx context.Context, filter BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	base.OrderBy = filter.OrderBy
	base.OrderDir = filter.OrderDir
	base.Search = filter.Search

	domainFilter := replenishment.BatchFilter{
		Filter:     base,
		SupplierID: filter.SupplierID,
	}
	if filter.Status != "" {
		status := replenishment.BatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("status", "unknown batch status")
		}
		domainFilter.Status = &status
	}
	if filter.DateFrom != "" {
		from, err := parseFilterDate(filter.DateFrom)
		if err != nil {
			return nil, shared.NewValidationError("date_from", "invalid date")
		}
		domainFilter.ExpectedFrom = &from
	}
	if filter.DateTo != "" {
		to, err := parseFilterDate(filter.DateTo)
		if err != nil {
			return nil, shared.NewValidationError("date_to", "invalid date")
		}
		domainFilter.ExpectedTo = &to
	}

	page, err := s.batchRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]BatchResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToBatchResponse(&page.Items[idx]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// CancelBatch voids a batch and all of its lines, releasing the full pending
// quantity of every open line. Refused if any line has already received stock.
func (s *BatchService) CancelBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	var batch *replenishment.Batch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		batch, err = repos.Batches().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		// release amounts per line, captured before Cancel flips the statuses
		releases := make(map[uuid.UUID]int64)
		for idx := range batch.Items {
			if batch.Items[idx].Status == replenishment.ItemStatusPending {
				releases[batch.Items[idx].ProductID] += batch.Items[idx].OrderedQuantity
			}
		}

		if err := batch.Cancel(); err != nil {
			return err
		}

		for productID, qty := range releases {
			product, err := repos.Products().FindByIDForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if err := product.AddPending(-qty); err != nil {
				return err
			}
			if err := repos.Products().Update(ctx, product); err != nil {
				return err
			}
		}

		if err := repos.Batches().UpdateItems(ctx, batch.Items); err != nil {
			return err
		}
		return repos.Batches().Update(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// parseFilterDate accepts RFC3339 timestamps or plain dates.
func parseFilterDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
