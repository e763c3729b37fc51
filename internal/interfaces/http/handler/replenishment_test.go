package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	replapp "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/catalog"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/dto"
)

// Map-backed repository fakes. FindByIDForUpdate returns the stored pointer
// so mutations made inside the service flows stick, mirroring how locked
// rows behave inside a real transaction.

type mapBatchRepository struct {
	batches map[uuid.UUID]*replenishment.Batch
}

func newMapBatchRepository() *mapBatchRepository {
	return &mapBatchRepository{batches: make(map[uuid.UUID]*replenishment.Batch)}
}

func (m *mapBatchRepository) FindByID(_ context.Context, id uuid.UUID) (*replenishment.Batch, error) {
	if batch, ok := m.batches[id]; ok {
		return batch, nil
	}
	return nil, shared.NewNotFoundError("batch not found")
}

func (m *mapBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*replenishment.Batch, error) {
	return m.FindByID(ctx, id)
}

func (m *mapBatchRepository) FindAll(_ context.Context, filter replenishment.BatchFilter) (*shared.Paginated[replenishment.Batch], error) {
	items := make([]replenishment.Batch, 0, len(m.batches))
	for _, batch := range m.batches {
		if filter.Status != nil && batch.Status != *filter.Status {
			continue
		}
		items = append(items, *batch)
	}
	result := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &result, nil
}

func (m *mapBatchRepository) Save(_ context.Context, batch *replenishment.Batch) error {
	m.batches[batch.ID] = batch
	return nil
}

func (m *mapBatchRepository) Update(_ context.Context, batch *replenishment.Batch) error {
	if _, ok := m.batches[batch.ID]; !ok {
		return shared.NewNotFoundError("batch not found")
	}
	m.batches[batch.ID] = batch
	return nil
}

func (m *mapBatchRepository) FindItemByID(_ context.Context, itemID uuid.UUID) (*replenishment.BatchItem, error) {
	for _, batch := range m.batches {
		for idx := range batch.Items {
			if batch.Items[idx].ID == itemID {
				return &batch.Items[idx], nil
			}
		}
	}
	return nil, shared.NewNotFoundError("batch item not found")
}

func (m *mapBatchRepository) FindOpenItems(_ context.Context, filter shared.Filter) (*shared.Paginated[replenishment.BatchItem], error) {
	var items []replenishment.BatchItem
	for _, batch := range m.batches {
		for _, item := range batch.Items {
			if !item.Status.IsTerminal() {
				items = append(items, item)
			}
		}
	}
	result := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &result, nil
}

func (m *mapBatchRepository) UpdateItem(_ context.Context, item *replenishment.BatchItem) error {
	for _, batch := range m.batches {
		for idx := range batch.Items {
			if batch.Items[idx].ID == item.ID {
				batch.Items[idx] = *item
				return nil
			}
		}
	}
	return shared.NewNotFoundError("batch item not found")
}

func (m *mapBatchRepository) UpdateItems(ctx context.Context, items []replenishment.BatchItem) error {
	for idx := range items {
		if err := m.UpdateItem(ctx, &items[idx]); err != nil {
			return err
		}
	}
	return nil
}

type mapProductRepository struct {
	products map[uuid.UUID]*catalog.Product
}

func newMapProductRepository() *mapProductRepository {
	return &mapProductRepository{products: make(map[uuid.UUID]*catalog.Product)}
}

func (m *mapProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, shared.NewNotFoundError("product not found")
}

func (m *mapProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return m.FindByID(ctx, id)
}

func (m *mapProductRepository) FindAll(_ context.Context, filter shared.Filter) (*shared.Paginated[catalog.Product], error) {
	items := make([]catalog.Product, 0, len(m.products))
	for _, product := range m.products {
		items = append(items, *product)
	}
	result := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &result, nil
}

func (m *mapProductRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.products[id]
	return ok, nil
}

func (m *mapProductRepository) Save(_ context.Context, product *catalog.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mapProductRepository) Update(_ context.Context, product *catalog.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return shared.NewNotFoundError("product not found")
	}
	m.products[product.ID] = product
	return nil
}

type mapSupplierRepository struct {
	suppliers map[uuid.UUID]*catalog.Supplier
}

func newMapSupplierRepository() *mapSupplierRepository {
	return &mapSupplierRepository{suppliers: make(map[uuid.UUID]*catalog.Supplier)}
}

func (m *mapSupplierRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	if supplier, ok := m.suppliers[id]; ok {
		return supplier, nil
	}
	return nil, shared.NewNotFoundError("supplier not found")
}

func (m *mapSupplierRepository) FindAll(_ context.Context, filter shared.Filter) (*shared.Paginated[catalog.Supplier], error) {
	items := make([]catalog.Supplier, 0, len(m.suppliers))
	for _, supplier := range m.suppliers {
		items = append(items, *supplier)
	}
	result := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &result, nil
}

func (m *mapSupplierRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.suppliers[id]
	return ok, nil
}

func (m *mapSupplierRepository) Save(_ context.Context, supplier *catalog.Supplier) error {
	m.suppliers[supplier.ID] = supplier
	return nil
}

type replenishmentTestEnv struct {
	engine      *gin.Engine
	batchRepo   *mapBatchRepository
	productRepo *mapProductRepository
	supplier    *catalog.Supplier
	product     *catalog.Product
}

func setupReplenishmentTestEnv(t *testing.T) *replenishmentTestEnv {
	t.Helper()

	batchRepo := newMapBatchRepository()
	productRepo := newMapProductRepository()
	supplierRepo := newMapSupplierRepository()

	supplier, err := catalog.NewSupplier("Acme Wholesale", "Jo Fergus", "555-0101", "jo@acme.example", "12 Dock Rd")
	require.NoError(t, err)
	require.NoError(t, supplierRepo.Save(context.Background(), supplier))

	product, err := catalog.NewProduct("Espresso Beans 1kg", "", "bag", decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, productRepo.Save(context.Background(), product))

	txScope := replapp.NewNoOpTransactionScope(batchRepo, productRepo)
	batchService := replapp.NewBatchService(batchRepo, supplierRepo, txScope)
	receivingService := replapp.NewReceivingService(batchRepo, txScope, nil, nil)

	h := NewReplenishmentHandler(batchService, receivingService, nil)

	engine := gin.New()
	api := engine.Group("/api/v1/replenishment")
	api.POST("/batches", h.CreateBatch)
	api.GET("/batches", h.ListBatches)
	api.GET("/batches/:id", h.GetBatch)
	api.POST("/batches/:id/cancel", h.CancelBatch)
	api.GET("/items/open", h.ListOpenItems)
	api.POST("/items/:id/receive", h.ReceiveItem)
	api.PATCH("/items/:id", h.UpdateItem)
	api.POST("/items/:id/cancel", h.CancelItem)

	return &replenishmentTestEnv{
		engine:      engine,
		batchRepo:   batchRepo,
		productRepo: productRepo,
		supplier:    supplier,
		product:     product,
	}
}

func (env *replenishmentTestEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    T              `json:"data"`
		Error   *dto.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func (env *replenishmentTestEnv) createBatch(t *testing.T, qty int64) replapp.BatchResponse {
	t.Helper()
	w := env.doJSON(t, "POST", "/api/v1/replenishment/batches", gin.H{
		"supplier_id": env.supplier.ID,
		"items": []gin.H{
			{"product_id": env.product.ID, "ordered_quantity": qty, "unit_cost": "12.50"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[replapp.BatchResponse](t, w)
}

func TestCreateBatchEndpoint(t *testing.T) {
	env := setupReplenishmentTestEnv(t)

	batch := env.createBatch(t, 10)

	assert.NotEmpty(t, batch.BatchNumber)
	assert.Equal(t, "PENDING", batch.Status)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, int64(10), batch.Items[0].OrderedQuantity)

	// Ordering stock raises the pending counter immediately
	assert.Equal(t, int64(10), env.product.PendingQuantity)
	assert.Equal(t, int64(0), env.product.OnHandQuantity)
}

func TestCreateBatchWithoutSupplier(t *testing.T) {
	env := setupReplenishmentTestEnv(t)

	w := env.doJSON(t, "POST", "/api/v1/replenishment/batches", gin.H{
		"items": []gin.H{
			{"product_id": env.product.ID, "ordered_quantity": 4, "unit_cost": "2.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	batch := decodeData[replapp.BatchResponse](t, w)
	assert.Nil(t, batch.SupplierID)
	assert.Equal(t, int64(4), env.product.PendingQuantity)
}

func TestCreateBatchRejectsEmptyItems(t *testing.T) {
	env := setupReplenishmentTestEnv(t)

	w := env.doJSON(t, "POST", "/api/v1/replenishment/batches", gin.H{
		"supplier_id": env.supplier.ID,
		"items":       []gin.H{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBatchUnknownSupplier(t *testing.T) {
	env := setupReplenishmentTestEnv(t)

	w := env.doJSON(t, "POST", "/api/v1/replenishment/batches", gin.H{
		"supplier_id": uuid.New(),
		"items": []gin.H{
			{"product_id": env.product.ID, "ordered_quantity": 5, "unit_cost": "1.00"},
		},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBatchNotFound(t *testing.T) {
	env := setupReplenishmentTestEnv(t)

	w := env.doJSON(t, "GET", "/api/v1/replenishment/batches/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, "GET", "/api/v1/replenishment/batches/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveItemEndpoint(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 10)
	itemID := batch.Items[0].ID

	w := env.doJSON(t, "POST", "/api/v1/replenishment/items/"+itemID.String()+"/receive", gin.H{
		"quantity": 4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeData[replapp.ReceiveItemResponse](t, w)
	assert.False(t, result.ItemCompleted)
	assert.Equal(t, "PARTIAL_RECEIVED", result.BatchStatus)
	assert.Equal(t, int64(4), result.Item.ReceivedQuantity)
	assert.Equal(t, int64(6), result.Item.RemainingQuantity)

	assert.Equal(t, int64(4), env.product.OnHandQuantity)
	assert.Equal(t, int64(6), env.product.PendingQuantity)

	// Second delivery completes the line and the batch
	w = env.doJSON(t, "POST", "/api/v1/replenishment/items/"+itemID.String()+"/receive", gin.H{
		"quantity": 6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result = decodeData[replapp.ReceiveItemResponse](t, w)
	assert.True(t, result.ItemCompleted)
	assert.Equal(t, "COMPLETED", result.BatchStatus)
	assert.Equal(t, int64(10), env.product.OnHandQuantity)
	assert.Equal(t, int64(0), env.product.PendingQuantity)
}

func TestReceiveItemOverReceipt(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 5)
	itemID := batch.Items[0].ID

	w := env.doJSON(t, "POST", "/api/v1/replenishment/items/"+itemID.String()+"/receive", gin.H{
		"quantity": 6,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReceiveItemKeepsLineCost(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 10)
	itemID := batch.Items[0].ID

	// a stray unit_cost in the body has no effect on the stored line cost
	w := env.doJSON(t, "POST", "/api/v1/replenishment/items/"+itemID.String()+"/receive", gin.H{
		"quantity":  4,
		"unit_cost": "99.99",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeData[replapp.ReceiveItemResponse](t, w)
	assert.True(t, result.Item.UnitCost.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, env.product.UnitCost.Equal(decimal.RequireFromString("12.50")))
}

func TestUpdateItemPartialEdit(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 10)
	itemID := batch.Items[0].ID

	// cost-only amendment keeps the ordered quantity and pending counter
	w := env.doJSON(t, "PATCH", "/api/v1/replenishment/items/"+itemID.String(), gin.H{
		"unit_cost": "9.75",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	item := decodeData[replapp.BatchItemResponse](t, w)
	assert.Equal(t, int64(10), item.OrderedQuantity)
	assert.True(t, item.UnitCost.Equal(decimal.RequireFromString("9.75")))
	assert.Equal(t, int64(10), env.product.PendingQuantity)

	// note-only amendment
	w = env.doJSON(t, "PATCH", "/api/v1/replenishment/items/"+itemID.String(), gin.H{
		"note": "short shipped last time",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	item = decodeData[replapp.BatchItemResponse](t, w)
	assert.Equal(t, "short shipped last time", item.Note)

	// an empty amendment is rejected
	w = env.doJSON(t, "PATCH", "/api/v1/replenishment/items/"+itemID.String(), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBatchAfterReceiptRejected(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 8)
	itemID := batch.Items[0].ID

	w := env.doJSON(t, "POST", "/api/v1/replenishment/items/"+itemID.String()+"/receive", gin.H{
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, "POST", "/api/v1/replenishment/batches/"+batch.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelBatchReleasesPending(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	batch := env.createBatch(t, 8)

	w := env.doJSON(t, "POST", "/api/v1/replenishment/batches/"+batch.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeData[replapp.BatchResponse](t, w)
	assert.Equal(t, "CANCELLED", result.Status)
	assert.Equal(t, int64(0), env.product.PendingQuantity)
}

func TestListOpenItemsEndpoint(t *testing.T) {
	env := setupReplenishmentTestEnv(t)
	env.createBatch(t, 3)

	w := env.doJSON(t, "GET", "/api/v1/replenishment/items/open", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeData[[]replapp.BatchItemResponse](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "PENDING", items[0].Status)
}
