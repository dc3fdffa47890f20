package adapter

import (
	"context"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// EventSink receives events after the unit of work that produced them committed.
// Delivery is best effort and must never fail or block the caller.
type EventSink interface {
	Emit(ctx context.Context, event entity.Event)
}

// PostingRecorder observes the outcome of balance postings.
type PostingRecorder interface {
	RecordPosting(kind string, err error)
}
