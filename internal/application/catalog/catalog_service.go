package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/catalog"
	"github.com/retailops/backend/internal/domain/shared"
)

// CatalogService handles the catalog collaborators of the receiving flows:
// products, categories and suppliers. Inventory counters on products are
// read-only here; they change only through replenishment transactions.
type CatalogService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo catalog.SupplierRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo catalog.SupplierRepository,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// CreateProduct registers a new product with zero stock
func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Description, req.Unit, req.SellPrice)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.AssignCategory(*req.CategoryID)
	}
	if req.SupplierID != nil {
		exists, err := s.supplierRepo.Exists(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewNotFoundError("supplier not found")
		}
		product.AssignSupplier(*req.SupplierID)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns a product by id
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts returns products matching the filter
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	page, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToProductResponse(&page.Items[idx]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// CreateCategory registers a new category
func (s *CatalogService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories returns categories matching the filter
func (s *CatalogService) ListCategories(ctx context.Context, filter shared.Filter) (*shared.Paginated[CategoryResponse], error) {
	page, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CategoryResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToCategoryResponse(&page.Items[idx]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// CreateSupplier registers a new supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := catalog.NewSupplier(req.Name, req.Contact, req.Phone, req.Email, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetSupplier returns a supplier by id
func (s *CatalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// ListSuppliers returns suppliers matching the filter
func (s *CatalogService) ListSuppliers(ctx context.Context, filter shared.Filter) (*shared.Paginated[SupplierResponse], error) {
	page, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]SupplierResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToSupplierResponse(&page.Items[idx]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}
