package replenishment

import (
	"context"

	"github.com/retailops/backend/internal/domain/catalog"
	"github.com/retailops/backend/internal/domain/replenishment"
)

// TransactionScope provides transactional access to the repositories the
// receiving flows mutate. Every operation that touches both a batch and the
// product counters runs inside one scope so the pair commits or rolls back
// atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// Batches returns the batch repository scoped to the current transaction
	Batches() replenishment.BatchRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a real transaction. Used in tests.
type NoOpTransactionScope struct {
	batchRepo   replenishment.BatchRepository
	productRepo catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(batchRepo replenishment.BatchRepository, productRepo catalog.ProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{batchRepo: batchRepo, productRepo: productRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Batches returns the batch repository.
func (s *NoOpTransactionScope) Batches() replenishment.BatchRepository {
	return s.batchRepo
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.productRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
