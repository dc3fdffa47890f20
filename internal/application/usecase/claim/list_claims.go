package claim

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/application/usecase/ledger"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// ListClaimsInput represents the input for listing contribution claims.
type ListClaimsInput struct {
	GroupID     uuid.UUID
	RequesterID string
	Status      string
	Page        int
	Limit       int
}

// ListClaimsOutput represents one page of claims.
type ListClaimsOutput struct {
	Claims     []*entity.Transaction
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListClaimsUseCase lists claims. Admins see every claim, members only their own.
type ListClaimsUseCase struct {
	uow adapter.UnitOfWork
}

// NewListClaimsUseCase creates a new ListClaimsUseCase instance.
func NewListClaimsUseCase(uow adapter.UnitOfWork) *ListClaimsUseCase {
	return &ListClaimsUseCase{
		uow: uow,
	}
}

// Execute returns the requested page, newest first.
func (uc *ListClaimsUseCase) Execute(ctx context.Context, input ListClaimsInput) (*ListClaimsOutput, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	claimType := entity.TransactionTypeContribution
	filter := adapter.TransactionFilter{
		GroupID: input.GroupID,
		Type:    &claimType,
	}
	if input.Status != "" {
		s := entity.TransactionStatus(input.Status)
		if !s.IsValid() {
			return nil, domainerror.NewLedgerError(
				domainerror.ErrCodeInvalidTransactionStatus,
				"unknown claim status "+input.Status,
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
		pagination.Limit = ledger.DefaultPageSize
	}
	if pagination.Limit > ledger.MaxPageSize {
		pagination.Limit = ledger.MaxPageSize
	}

	var result *adapter.TransactionListResult
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		if _, err := guard.Group(ctx, repos, input.GroupID); err != nil {
			return err
		}
		member, err := guard.Member(ctx, repos, input.GroupID, input.RequesterID)
		if err != nil {
			return err
		}

		scoped := filter
		if !member.IsAdmin() {
			scoped.UserID = member.UserID
		}
		r, err := repos.Transactions.List(ctx, scoped, pagination)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ListClaimsOutput{
		Claims:     result.Transactions,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	}, nil
}
