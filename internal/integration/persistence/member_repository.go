package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// memberRepository implements the adapter.MemberRepository interface.
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository instance.
func NewMemberRepository(db *gorm.DB) adapter.MemberRepository {
	return &memberRepository{
		db: db,
	}
}

// Create inserts a new member row. A second row for the same pair is reported as a
// lost race, so a retried unit of work sees the existing membership.
func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	memberModel := model.MemberFromEntity(member)
	result := r.db.WithContext(ctx).Create(memberModel)
	return racingInsert(result.Error)
}

// Find retrieves the membership of userID in groupID.
func (r *memberRepository) Find(ctx context.Context, groupID uuid.UUID, userID string) (*entity.Member, error) {
	var memberModel model.MemberModel
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&memberModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return memberModel.ToEntity(), nil
}

// ListByGroup retrieves all members of a group ordered by join time.
func (r *memberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*entity.Member, error) {
	var models []model.MemberModel
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC, user_id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	members := make([]*entity.Member, len(models))
	for i := range models {
		members[i] = models[i].ToEntity()
	}
	return members, nil
}

// Update writes the member if the stored version still matches.
func (r *memberRepository) Update(ctx context.Context, member *entity.Member) error {
	m := model.MemberFromEntity(member)
	result := r.db.WithContext(ctx).
		Model(&model.MemberModel{}).
		Where("group_id = ? AND user_id = ? AND version = ?", member.GroupID, member.UserID, member.Version).
		Updates(map[string]interface{}{
			"role":                       m.Role,
			"contribution_balance_cents": m.ContributionBalanceCents,
			"subscription_status":        m.SubscriptionStatus,
			"subscription_ends_at":       m.SubscriptionEndsAt,
			"display_name":               m.DisplayName,
			"email":                      m.Email,
			"phone":                      m.Phone,
			"version":                    member.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrConcurrentModification
	}
	member.Version++
	return nil
}

// Delete removes the member if the stored version still matches.
func (r *memberRepository) Delete(ctx context.Context, member *entity.Member) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND version = ?", member.GroupID, member.UserID, member.Version).
		Delete(&model.MemberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrConcurrentModification
	}
	return nil
}

// SumBalances returns the sum of contribution balances in a group.
func (r *memberRepository) SumBalances(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var total int64
	result := r.db.WithContext(ctx).
		Model(&model.MemberModel{}).
		Select("COALESCE(SUM(contribution_balance_cents), 0)").
		Where("group_id = ?", groupID).
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}
	return total, nil
}

// ListStaleActive returns members stored as active whose period ended before now.
func (r *memberRepository) ListStaleActive(ctx context.Context, now time.Time, limit int) ([]*entity.Member, error) {
	var models []model.MemberModel
	result := r.db.WithContext(ctx).
		Where("subscription_status = ?", entity.SubscriptionActive).
		Where("subscription_ends_at IS NOT NULL AND subscription_ends_at < ?", now).
		Order("subscription_ends_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	members := make([]*entity.Member, len(models))
	for i := range models {
		members[i] = models[i].ToEntity()
	}
	return members, nil
}
