package ledger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/domain/entity"
)

// GetLedgerSummaryInput represents the input for the balance reconciliation view.
type GetLedgerSummaryInput struct {
	GroupID     uuid.UUID
	RequesterID string
}

// GetLedgerSummaryOutput reconciles the stored group balance against its sources.
type GetLedgerSummaryOutput struct {
	GroupID                  uuid.UUID
	GroupBalanceCents        int64
	MemberBalancesTotalCents int64
	Totals                   entity.LedgerTotals
	// ExpectedBalanceCents is the sum of member balances minus completed payouts.
	ExpectedBalanceCents int64
	// LedgerBalanceCents is approved contributions minus completed payouts.
	LedgerBalanceCents int64
	Consistent         bool
}

// GetLedgerSummaryUseCase handles computing the ledger summary of a group.
type GetLedgerSummaryUseCase struct {
	uow adapter.UnitOfWork
}

// NewGetLedgerSummaryUseCase creates a new GetLedgerSummaryUseCase instance.
func NewGetLedgerSummaryUseCase(uow adapter.UnitOfWork) *GetLedgerSummaryUseCase {
	return &GetLedgerSummaryUseCase{
		uow: uow,
	}
}

// Execute reads the group, member balances and ledger totals from one snapshot.
func (uc *GetLedgerSummaryUseCase) Execute(ctx context.Context, input GetLedgerSummaryInput) (*GetLedgerSummaryOutput, error) {
	if err := guard.Caller(input.RequesterID); err != nil {
		return nil, err
	}

	var out *GetLedgerSummaryOutput
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		group, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Member(ctx, repos, group.ID, input.RequesterID); err != nil {
			return err
		}

		memberTotal, err := repos.Members.SumBalances(ctx, group.ID)
		if err != nil {
			return err
		}
		totals, err := repos.Transactions.Totals(ctx, group.ID)
		if err != nil {
			return err
		}

		expected := memberTotal - totals.CompletedPayoutsCents
		fromLedger := totals.ApprovedContributionsCents - totals.CompletedPayoutsCents
		out = &GetLedgerSummaryOutput{
			GroupID:                  group.ID,
			GroupBalanceCents:        group.CurrentBalanceCents,
			MemberBalancesTotalCents: memberTotal,
			Totals:                   *totals,
			ExpectedBalanceCents:     expected,
			LedgerBalanceCents:       fromLedger,
			Consistent:               group.CurrentBalanceCents == expected && group.CurrentBalanceCents == fromLedger,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.Consistent {
		slog.Warn("Ledger summary diverges",
			"group_id", out.GroupID,
			"group_balance_cents", out.GroupBalanceCents,
			"expected_balance_cents", out.ExpectedBalanceCents,
			"ledger_balance_cents", out.LedgerBalanceCents,
		)
	}
	return out, nil
}
