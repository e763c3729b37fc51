package replenishment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceivingService records deliveries against batch items and keeps the
// product counters and the cached batch status consistent with them. Every
// mutation runs in a single transaction with the affected rows locked.
type ReceivingService struct {
	batchRepo      replenishment.BatchRepository
	txScope        TransactionScope
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewReceivingService creates a new ReceivingService. The idempotency store
// may be nil, which disables duplicate-receipt detection.
func NewReceivingService(
	batchRepo replenishment.BatchRepository,
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingService{
		batchRepo:      batchRepo,
		txScope:        txScope,
		idempotency:    idempotency,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:         logger,
	}
}

// SetIdempotencyTTL overrides how long receive idempotency keys are remembered
func (s *ReceivingService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// ReceiveItem records a delivery of quantity units against the item. On-hand
// stock rises, pending falls, the product cost takes the receipt's unit cost,
// and the batch status is recomputed from all sibling lines. idempotencyKey
// may be empty; when set, a repeated key is rejected so a retried request
// cannot double-count stock.
func (s *ReceivingService) ReceiveItem(ctx context.Context, itemID uuid.UUID, req ReceiveItemRequest, idempotencyKey string) (*ReceiveItemResponse, error) {
	if idempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("receive:%s:%s", itemID, idempotencyKey)
		processed, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("idempotency check failed, continuing without it", zap.Error(err))
		} else if processed {
			return nil, shared.NewConflictError("duplicate receive request")
		}
	}

	located, err := s.batchRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var resp *ReceiveItemResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches().FindByIDForUpdate(ctx, located.BatchID)
		if err != nil {
			return err
		}
		item := batch.FindItem(itemID)
		if item == nil {
			return shared.NewNotFoundError("batch item not found")
		}

		now := time.Now()
		if err := item.Receive(req.Quantity, now); err != nil {
			return err
		}

		product, err := repos.Products().FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := product.ReceiveStock(req.Quantity, item.UnitCost); err != nil {
			return err
		}
		if err := repos.Products().Update(ctx, product); err != nil {
			return err
		}

		batch.RefreshStatus()

		if err := repos.Batches().UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := repos.Batches().Update(ctx, batch); err != nil {
			return err
		}

		resp = &ReceiveItemResponse{
			Item:          ToBatchItemResponse(item),
			ItemCompleted: item.Status == replenishment.ItemStatusCompleted,
			BatchStatus:   batch.Status.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("receive:%s:%s", itemID, idempotencyKey)
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.Error(err))
		}
	}

	s.logger.Info("stock received",
		zap.String("item_id", itemID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.String("batch_status", resp.BatchStatus))
	return resp, nil
}

// UpdateItem amends an untouched line. Only the request fields that are set
// are applied. When the ordered quantity changes, the product's pending
// counter absorbs the delta in the same transaction.
func (s *ReceivingService) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) (*BatchItemResponse, error) {
	located, err := s.batchRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var resp *BatchItemResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches().FindByIDForUpdate(ctx, located.BatchID)
		if err != nil {
			return err
		}
		item := batch.FindItem(itemID)
		if item == nil {
			return shared.NewNotFoundError("batch item not found")
		}

		delta, err := item.UpdateOrder(req.OrderedQuantity, req.UnitCost, req.Note)
		if err != nil {
			return err
		}

		if delta != 0 {
			product, err := repos.Products().FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := product.AddPending(delta); err != nil {
				return err
			}
			if err := repos.Products().Update(ctx, product); err != nil {
				return err
			}
		}

		if err := repos.Batches().UpdateItem(ctx, item); err != nil {
			return err
		}

		r := ToBatchItemResponse(item)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CancelItem voids a single untouched line, releasing its full ordered
// quantity from the product's pending counter and recomputing the batch
// status. Sibling lines are unaffected.
func (s *ReceivingService) CancelItem(ctx context.Context, itemID uuid.UUID) (*BatchItemResponse, error) {
	located, err := s.batchRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var resp *BatchItemResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.Batches().FindByIDForUpdate(ctx, located.BatchID)
		if err != nil {
			return err
		}
		item := batch.FindItem(itemID)
		if item == nil {
			return shared.NewNotFoundError("batch item not found")
		}

		released := item.OrderedQuantity
		if err := item.Cancel(); err != nil {
			return err
		}

		product, err := repos.Products().FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := product.AddPending(-released); err != nil {
			return err
		}
		if err := repos.Products().Update(ctx, product); err != nil {
			return err
		}

		batch.RefreshStatus()

		if err := repos.Batches().UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := repos.Batches().Update(ctx, batch); err != nil {
			return err
		}

		r := ToBatchItemResponse(item)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListOpenItems returns items still awaiting stock across all batches,
// soonest expected date first.
func (s *ReceivingService) ListOpenItems(ctx context.Context, filter shared.Filter) (*shared.Paginated[BatchItemResponse], error) {
	page, err := s.batchRepo.FindOpenItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItemResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToBatchItemResponse(&page.Items[idx]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}
