package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// RecordingSink keeps every emitted event in memory.
type RecordingSink struct {
	mu     sync.Mutex
	events []entity.Event
}

// Emit records event.
func (s *RecordingSink) Emit(_ context.Context, event entity.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the recorded events.
func (s *RecordingSink) Events() []entity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Types returns the recorded event types in emission order.
func (s *RecordingSink) Types() []entity.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]entity.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

// Operators is a fixed set of platform operator ids.
type Operators []string

// IsOperator reports whether userID is in the set.
func (o Operators) IsOperator(userID string) bool {
	return slices.Contains(o, userID)
}

// StaticFee is an in-memory platform settings store.
type StaticFee struct {
	mu    sync.Mutex
	Cents int64
}

// SubscriptionFeeCents returns the configured fee.
func (f *StaticFee) SubscriptionFeeCents(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Cents, nil
}

// SetSubscriptionFeeCents replaces the fee.
func (f *StaticFee) SetSubscriptionFeeCents(_ context.Context, cents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cents = cents
	return nil
}
