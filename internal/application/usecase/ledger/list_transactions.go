package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

const (
	// DefaultPageSize is used when no limit is given.
	DefaultPageSize = 20
	// MaxPageSize caps the page size.
	MaxPageSize = 100
)

// ListTransactionsInput represents the input for listing a group ledger.
type ListTransactionsInput struct {
	GroupID     uuid.UUID
	RequesterID string
	Type        string
	Status      string
	UserID      string
	Page        int
	Limit       int
}

// ListTransactionsOutput represents one page of the ledger.
type ListTransactionsOutput struct {
	Transactions []*entity.Transaction
	Total        int64
	Page         int
	Limit        int
	TotalPages   int
}

// ListTransactionsUseCase handles reading a group ledger. Every member may read it.
type ListTransactionsUseCase struct {
	uow adapter.UnitOfWork
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(uow adapter.UnitOfWork) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		uow: uow,
	}
}

// Execute returns the requested page, newest first.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	filter := adapter.TransactionFilter{
		GroupID: input.GroupID,
		UserID:  input.UserID,
	}
	if input.Type != "" {
		t := entity.TransactionType(input.Type)
		if !t.IsValid() {
			return nil, domainerror.NewLedgerError(
				domainerror.ErrCodeInvalidTransactionType,
				"type must be contribution, payout or fee",
				domainerror.ErrInvalidTransactionType,
			)
		}
		filter.Type = &t
	}
	if input.Status != "" {
		s := entity.TransactionStatus(input.Status)
		if !s.IsValid() {
			return nil, domainerror.NewLedgerError(
				domainerror.ErrCodeInvalidTransactionStatus,
				"unknown transaction status "+input.Status,
				domainerror.ErrInvalidTransactionStatus,
			)
		}
		filter.Status = &s
	}

	pagination := adapter.TransactionPagination{Page: input.Page, Limit: input.Limit}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.Limit < 1 {
		pagination.Limit = DefaultPageSize
	}
	if pagination.Limit > MaxPageSize {
		pagination.Limit = MaxPageSize
	}

	var result *adapter.TransactionListResult
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		if _, err := guard.Group(ctx, repos, input.GroupID); err != nil {
			return err
		}
		if _, err := guard.Member(ctx, repos, input.GroupID, input.RequesterID); err != nil {
			return err
		}
		r, err := repos.Transactions.List(ctx, filter, pagination)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ListTransactionsOutput{
		Transactions: result.Transactions,
		Total:        result.Total,
		Page:         result.Page,
		Limit:        result.Limit,
		TotalPages:   result.TotalPages,
	}, nil
}
