package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// feeRequestRepository implements the adapter.FeeRequestRepository interface.
type feeRequestRepository struct {
	db *gorm.DB
}

// NewFeeRequestRepository creates a new fee request repository instance.
func NewFeeRequestRepository(db *gorm.DB) adapter.FeeRequestRepository {
	return &feeRequestRepository{
		db: db,
	}
}

// Create inserts a new fee request.
func (r *feeRequestRepository) Create(ctx context.Context, request *entity.FeeRequest) error {
	result := r.db.WithContext(ctx).Create(model.FeeRequestFromEntity(request))
	return result.Error
}

// FindByID retrieves a fee request by its ID.
func (r *feeRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FeeRequest, error) {
	var requestModel model.FeeRequestModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&requestModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return requestModel.ToEntity(), nil
}

// UpdateStatus records the review while the stored request is still pending.
func (r *feeRequestRepository) UpdateStatus(ctx context.Context, request *entity.FeeRequest) error {
	result := r.db.WithContext(ctx).
		Model(&model.FeeRequestModel{}).
		Where("id = ? AND status = ?", request.ID, string(entity.FeeRequestPending)).
		Updates(map[string]interface{}{
			"status":      string(request.Status),
			"reviewed_at": model.ToNullTime(request.ReviewedAt),
			"reviewed_by": request.ReviewedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrConcurrentModification
	}
	return nil
}

// List retrieves fee requests, oldest first.
func (r *feeRequestRepository) List(ctx context.Context, filter adapter.FeeRequestFilter, limit int) ([]*entity.FeeRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.FeeRequestModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.GroupID != uuid.Nil {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []model.FeeRequestModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	requests := make([]*entity.FeeRequest, len(models))
	for i := range models {
		requests[i] = models[i].ToEntity()
	}
	return requests, nil
}
