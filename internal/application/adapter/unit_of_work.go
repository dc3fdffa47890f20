package adapter

import "context"

// Repositories bundles the repositories bound to one unit of work.
type Repositories struct {
	Groups       GroupRepository
	Members      MemberRepository
	Transactions TransactionRepository
	FeeRequests  FeeRequestRepository
}

// UnitOfWork runs fn atomically. Every read and write fn performs through repos commits
// together or not at all. When a write loses a concurrent compare-and-swap the whole
// function is re-run against fresh state, so fn must not keep side effects outside repos.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
