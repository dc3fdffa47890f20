package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence"
)

func TestLedgerSummary_BalanceConservation(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "alice", "bob")
	ctx := context.Background()

	for _, c := range []struct {
		user   string
		amount int64
	}{{"alice", 5000}, {"bob", 3000}, {"alice", 2000}} {
		claim := env.fx.Claim(group.ID, c.user, c.amount)
		_, err := env.engine.PostApprovedContribution(ctx, PostApprovedContributionInput{
			GroupID: group.ID, TransactionID: claim.ID, AmountCents: c.amount, ActorID: "admin",
		})
		require.NoError(t, err)
	}
	rejected := env.fx.Claim(group.ID, "bob", 999)
	_, err := env.engine.PostRejection(ctx, PostRejectionInput{GroupID: group.ID, TransactionID: rejected.ID, ActorID: "admin"})
	require.NoError(t, err)
	env.fx.Claim(group.ID, "bob", 700)

	payout, err := env.engine.RecordPayout(ctx, RecordPayoutInput{GroupID: group.ID, RecipientID: "bob", AmountCents: 6000, ActorID: "admin"})
	require.NoError(t, err)
	_, err = env.engine.PostPayoutConfirmed(ctx, PostPayoutConfirmedInput{
		GroupID: group.ID, TransactionID: payout.Transaction.ID, AmountCents: 6000, ActorID: "bob",
	})
	require.NoError(t, err)

	uc := NewGetLedgerSummaryUseCase(persistence.NewUnitOfWork(env.db))
	summary, err := uc.Execute(ctx, GetLedgerSummaryInput{GroupID: group.ID, RequesterID: "bob"})
	require.NoError(t, err)

	assert.Equal(t, int64(4000), summary.GroupBalanceCents)
	assert.Equal(t, int64(10000), summary.MemberBalancesTotalCents)
	assert.Equal(t, int64(10000), summary.Totals.ApprovedContributionsCents)
	assert.Equal(t, int64(6000), summary.Totals.CompletedPayoutsCents)
	assert.Equal(t, int64(700), summary.Totals.PendingClaimsCents)
	assert.True(t, summary.Consistent)

	list := NewListTransactionsUseCase(persistence.NewUnitOfWork(env.db))
	page, err := list.Execute(ctx, ListTransactionsInput{GroupID: group.ID, RequesterID: "alice", Type: string(entity.TransactionTypeContribution)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)

	page, err = list.Execute(ctx, ListTransactionsInput{GroupID: group.ID, RequesterID: "alice", Status: "approved", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, 2, page.TotalPages)

	_, err = list.Execute(ctx, ListTransactionsInput{GroupID: group.ID, RequesterID: "alice", Status: "bogus"})
	assert.Equal(t, domainerror.KindInvalidArgument, domainerror.KindOf(err))

	_, err = list.Execute(ctx, ListTransactionsInput{GroupID: group.ID, RequesterID: "mallory"})
	assert.Equal(t, domainerror.KindPermissionDenied, domainerror.KindOf(err))
}

func TestLedgerSummary_ReportsDivergence(t *testing.T) {
	env := newTestEnv(t)
	group := env.fx.Group("admin", "alice")
	env.fx.SetGroupBalance(group.ID, 1234)

	uc := NewGetLedgerSummaryUseCase(persistence.NewUnitOfWork(env.db))
	summary, err := uc.Execute(context.Background(), GetLedgerSummaryInput{GroupID: group.ID, RequesterID: "admin"})
	require.NoError(t, err)
	assert.False(t, summary.Consistent)
	assert.Equal(t, int64(0), summary.ExpectedBalanceCents)
}
