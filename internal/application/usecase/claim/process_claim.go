package claim

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/application/usecase/guard"
	"github.com/savings-circle/backend/internal/application/usecase/ledger"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// Claim review actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ProcessClaimInput represents the input for an admin reviewing a claim.
type ProcessClaimInput struct {
	GroupID        uuid.UUID
	ClaimID        uuid.UUID
	ActingAdminUID string
	Action         string
}

// ProcessClaimOutput represents the result of a review.
type ProcessClaimOutput struct {
	Success bool
	Message string
	Claim   *entity.Transaction
	Group   *entity.Group
}

// ProcessClaimUseCase is the privileged entry point that approves or rejects a claim.
// The admin check, the claim check and the ledger posting share one unit of work.
type ProcessClaimUseCase struct {
	uow      adapter.UnitOfWork
	clock    adapter.Clock
	sink     adapter.EventSink
	recorder adapter.PostingRecorder
}

// NewProcessClaimUseCase creates a new ProcessClaimUseCase instance. recorder may be nil.
func NewProcessClaimUseCase(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink, recorder adapter.PostingRecorder) *ProcessClaimUseCase {
	return &ProcessClaimUseCase{
		uow:      uow,
		clock:    clock,
		sink:     sink,
		recorder: recorder,
	}
}

// Execute applies the action. Errors carry one of the taxonomy kinds; anything
// unclassified surfaces as Internal.
func (uc *ProcessClaimUseCase) Execute(ctx context.Context, input ProcessClaimInput) (*ProcessClaimOutput, error) {
	if err := guard.Caller(input.ActingAdminUID); err != nil {
		return nil, err
	}

	action := strings.ToLower(strings.TrimSpace(input.Action))
	kind := ledger.KindContribution
	switch action {
	case ActionApprove:
	case ActionReject:
		kind = ledger.KindRejection
	default:
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeInvalidClaimAction,
			"action must be approve or reject",
			domainerror.ErrInvalidClaimAction,
		)
	}

	now := uc.clock.Now()
	var posting *ledger.Posting
	err := uc.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		group, err := guard.Group(ctx, repos, input.GroupID)
		if err != nil {
			return err
		}
		if _, err := guard.Admin(ctx, repos, group.ID, input.ActingAdminUID); err != nil {
			return err
		}
		claim, err := repos.Transactions.FindByID(ctx, group.ID, input.ClaimID)
		if err != nil {
			return fmt.Errorf("failed to find claim: %w", err)
		}
		if claim == nil {
			return domainerror.NewLedgerError(
				domainerror.ErrCodeTransactionNotFound,
				"claim not found",
				domainerror.ErrTransactionNotFound,
			)
		}

		if action == ActionReject {
			posting, err = ledger.ApplyRejection(ctx, repos, ledger.PostRejectionInput{
				GroupID:       group.ID,
				TransactionID: claim.ID,
				ActorID:       input.ActingAdminUID,
			}, now)
			return err
		}

		posting, err = ledger.ApplyApprovedContribution(ctx, repos, ledger.PostApprovedContributionInput{
			GroupID:       group.ID,
			TransactionID: claim.ID,
			MemberID:      claim.UserID,
			AmountCents:   claim.AmountCents,
			ActorID:       input.ActingAdminUID,
		}, now)
		return err
	})
	if uc.recorder != nil {
		uc.recorder.RecordPosting(kind, err)
	}
	if err != nil {
		return nil, err
	}

	message := "Claim rejected"
	if action == ActionApprove {
		uc.sink.Emit(ctx, ledger.ContributionApprovedEvent(posting, input.ActingAdminUID, now))
		message = "Claim approved"
	} else {
		uc.sink.Emit(ctx, ledger.ContributionRejectedEvent(posting, input.ActingAdminUID, now))
	}

	return &ProcessClaimOutput{
		Success: true,
		Message: message,
		Claim:   posting.Transaction,
		Group:   posting.Group,
	}, nil
}
