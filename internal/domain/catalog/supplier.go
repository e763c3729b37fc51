package catalog

import (
	"strings"

	"github.com/retailops/backend/internal/domain/shared"
)

// Supplier is a vendor that replenishment batches are ordered from
type Supplier struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(255);not null;index"`
	Contact string `gorm:"type:varchar(100)"`
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(255)"`
	Address string `gorm:"type:text"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name, contact, phone, email, address string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "supplier name cannot be empty")
	}

	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Contact:    contact,
		Phone:      phone,
		Email:      email,
		Address:    address,
	}, nil
}

// UpdateContact replaces the supplier's contact details
func (s *Supplier) UpdateContact(contact, phone, email, address string) {
	s.Contact = contact
	s.Phone = phone
	s.Email = email
	s.Address = address
	s.Touch()
}
