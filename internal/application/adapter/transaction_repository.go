package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// TransactionFilter defines filter options for listing ledger transactions.
type TransactionFilter struct {
	GroupID uuid.UUID
	Type    *entity.TransactionType
	Status  *entity.TransactionStatus
	UserID  string
}

// TransactionPagination defines pagination options.
type TransactionPagination struct {
	Page  int
	Limit int
}

// TransactionListResult represents one page of ledger rows.
type TransactionListResult struct {
	Transactions []*entity.Transaction
	Total        int64
	Page         int
	Limit        int
	TotalPages   int
}

// TransactionRepository defines the interface for the append-only group ledger.
type TransactionRepository interface {
	// Create appends a transaction to the group ledger.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindByID retrieves a transaction of groupID, or (nil, nil).
	FindByID(ctx context.Context, groupID, id uuid.UUID) (*entity.Transaction, error)

	// UpdateStatus persists the status and review stamps of transaction provided the stored
	// status still equals expected; otherwise it returns domainerror.ErrConcurrentModification.
	UpdateStatus(ctx context.Context, transaction *entity.Transaction, expected entity.TransactionStatus) error

	// List retrieves a filtered, paginated page of the ledger, newest first.
	List(ctx context.Context, filter TransactionFilter, pagination TransactionPagination) (*TransactionListResult, error)

	// Totals aggregates the ledger of a group.
	Totals(ctx context.Context, groupID uuid.UUID) (*entity.LedgerTotals, error)
}
