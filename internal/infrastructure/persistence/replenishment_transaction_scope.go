package persistence

import (
	"context"

	apprepl "github.com/retailops/backend/internal/application/replenishment"
	"github.com/retailops/backend/internal/domain/catalog"
	"github.com/retailops/backend/internal/domain/replenishment"
	"gorm.io/gorm"
)

// GormTransactionScope implements the replenishment TransactionScope using
// GORM transactions, giving the receiving flows atomic batch plus counter
// updates.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apprepl.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) Batches() replenishment.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ apprepl.TransactionScope = (*GormTransactionScope)(nil)
var _ apprepl.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
