package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate loads the product under a row-level write lock so
	// that concurrent receipts serialize on the counter updates.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Product], error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Category], error)
	Save(ctx context.Context, category *Category) error
}

// SupplierRepository defines persistence operations for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Supplier], error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, supplier *Supplier) error
}
