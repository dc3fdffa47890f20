// Package ledger contains the only use cases that move money: postings of approved
// contributions, rejections and confirmed payouts, plus the ledger reads.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/domain/valueobject"
)

// Posting kinds reported to the PostingRecorder.
const (
	KindContribution = "contribution"
	KindRejection    = "rejection"
	KindPayout       = "payout"
	KindPayoutRecord = "payout_record"
)

// Posting is the committed state touched by one ledger operation.
type Posting struct {
	Group       *entity.Group
	Member      *entity.Member
	Transaction *entity.Transaction
}

// Engine runs ledger operations, each inside exactly one unit of work.
type Engine struct {
	uow      adapter.UnitOfWork
	clock    adapter.Clock
	sink     adapter.EventSink
	recorder adapter.PostingRecorder
}

// NewEngine creates a new ledger Engine. recorder may be nil.
func NewEngine(uow adapter.UnitOfWork, clock adapter.Clock, sink adapter.EventSink, recorder adapter.PostingRecorder) *Engine {
	return &Engine{
		uow:      uow,
		clock:    clock,
		sink:     sink,
		recorder: recorder,
	}
}

// run executes apply in one unit of work and reports its outcome.
func (e *Engine) run(ctx context.Context, kind string, apply func(ctx context.Context, repos adapter.Repositories) (*Posting, error)) (*Posting, error) {
	var posting *Posting
	err := e.uow.Do(ctx, func(ctx context.Context, repos adapter.Repositories) error {
		p, err := apply(ctx, repos)
		if err != nil {
			return err
		}
		posting = p
		return nil
	})
	if e.recorder != nil {
		e.recorder.RecordPosting(kind, err)
	}
	if err != nil {
		return nil, err
	}
	return posting, nil
}

// findTransaction loads a ledger row of the group or fails with NotFound.
func findTransaction(ctx context.Context, repos adapter.Repositories, groupID, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := repos.Transactions.FindByID(ctx, groupID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	if tx == nil {
		return nil, domainerror.NewLedgerError(
			domainerror.ErrCodeTransactionNotFound,
			"transaction not found",
			domainerror.ErrTransactionNotFound,
		)
	}
	return tx, nil
}

func requireType(tx *entity.Transaction, want entity.TransactionType) error {
	if tx.Type != want {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeWrongTransactionType,
			"operation requires a "+string(want)+" transaction, got "+string(tx.Type),
			domainerror.ErrWrongTransactionType,
		)
	}
	return nil
}

func invalidAmount() error {
	return domainerror.NewLedgerError(
		domainerror.ErrCodeInvalidAmount,
		"amount must be greater than zero",
		domainerror.ErrInvalidAmount,
	)
}

func balanceOverflow(amountCents int64) error {
	return domainerror.NewLedgerError(
		domainerror.ErrCodeBalanceOverflow,
		fmt.Sprintf("crediting %s would overflow the balance", valueobject.FormatCents(amountCents)),
		domainerror.ErrBalanceOverflow,
	)
}

func insufficientBalance(group *entity.Group, amountCents int64) error {
	return domainerror.NewLedgerError(
		domainerror.ErrCodeInsufficientGroupBalance,
		fmt.Sprintf("group balance %d is lower than payout %d", group.CurrentBalanceCents, amountCents),
		domainerror.ErrInsufficientGroupBalance,
	)
}
