package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive         ProductStatus = "ACTIVE"
	ProductStatusLowStock       ProductStatus = "LOW_STOCK"
	ProductStatusRestockPending ProductStatus = "RESTOCK_PENDING"
	ProductStatusPricingPending ProductStatus = "PRICING_PENDING"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusLowStock, ProductStatusRestockPending, ProductStatusPricingPending:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product is the catalog entry that also carries the inventory ledger
// counters: units physically on hand and units ordered but not yet received.
// Both counters are mutated only inside replenishment transactions.
type Product struct {
	shared.BaseAggregateRoot
	Name            string          `gorm:"type:varchar(255);not null;index"`
	Description     string          `gorm:"type:text"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierID      *uuid.UUID      `gorm:"type:uuid;index"`
	Unit            string          `gorm:"type:varchar(20)"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // last received cost
	SellPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OnHandQuantity  int64           `gorm:"not null;default:0"`
	PendingQuantity int64           `gorm:"not null;default:0"`
	Status          ProductStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, description, unit string, sellPrice decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "product name cannot be empty")
	}
	if sellPrice.IsNegative() {
		return nil, shared.NewValidationError("sell_price", "sell price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Unit:              unit,
		UnitCost:          decimal.Zero,
		SellPrice:         sellPrice,
		OnHandQuantity:    0,
		PendingQuantity:   0,
		Status:            ProductStatusActive,
	}, nil
}

// AssignCategory links the product to a category
func (p *Product) AssignCategory(categoryID uuid.UUID) {
	p.CategoryID = &categoryID
	p.Touch()
}

// AssignSupplier links the product to its default supplier
func (p *Product) AssignSupplier(supplierID uuid.UUID) {
	p.SupplierID = &supplierID
	p.Touch()
}

// AddPending adjusts the pending quantity by a signed delta.
// Positive deltas come from batch item creation or ordered-quantity increases,
// negative deltas from receipts, cancellations and ordered-quantity decreases.
func (p *Product) AddPending(delta int64) error {
	next := p.PendingQuantity + delta
	if next < 0 {
		return shared.NewDomainError("PENDING_UNDERFLOW", "pending quantity cannot go negative")
	}
	p.PendingQuantity = next
	p.Touch()
	return nil
}

// ReceiveStock records the arrival of quantity units at the given cost.
// On-hand rises, pending falls by the same amount, and the product cost is
// overwritten with the receipt's unit cost (last-received-cost policy).
func (p *Product) ReceiveStock(quantity int64, unitCost decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "receive quantity must be positive")
	}
	if p.PendingQuantity < quantity {
		return shared.NewDomainError("PENDING_UNDERFLOW", "pending quantity cannot go negative")
	}

	p.OnHandQuantity += quantity
	p.PendingQuantity -= quantity
	p.UnitCost = unitCost
	p.Touch()
	return nil
}

// SetSellPrice updates the selling price
func (p *Product) SetSellPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("sell_price", "sell price cannot be negative")
	}
	p.SellPrice = price
	p.Touch()
	return nil
}
