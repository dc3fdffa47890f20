package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// FeeRequestFilter narrows a fee request listing. Zero values match everything.
type FeeRequestFilter struct {
	Status  *entity.FeeRequestStatus
	GroupID uuid.UUID
	UserID  string
}

// FeeRequestRepository defines the interface for subscription fee request persistence.
type FeeRequestRepository interface {
	// Create inserts a new fee request.
	Create(ctx context.Context, request *entity.FeeRequest) error

	// FindByID retrieves a fee request, or (nil, nil).
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FeeRequest, error)

	// UpdateStatus writes the review result only while the stored request is still pending.
	UpdateStatus(ctx context.Context, request *entity.FeeRequest) error

	// List retrieves fee requests, oldest first.
	List(ctx context.Context, filter FeeRequestFilter, limit int) ([]*entity.FeeRequest, error)
}
