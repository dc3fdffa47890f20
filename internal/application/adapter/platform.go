package adapter

import (
	"context"
	"time"
)

// PlatformSettings exposes operator controlled settings read at call time.
type PlatformSettings interface {
	// SubscriptionFeeCents returns the fee currently charged per subscription period.
	SubscriptionFeeCents(ctx context.Context) (int64, error)

	// SetSubscriptionFeeCents changes the fee for future requests.
	SetSubscriptionFeeCents(ctx context.Context, cents int64) error
}

// OperatorDirectory tells whether a user is a platform operator.
type OperatorDirectory interface {
	IsOperator(userID string) bool
}

// Clock abstracts the current time so rules depending on "now" can be tested.
type Clock interface {
	Now() time.Time
}
