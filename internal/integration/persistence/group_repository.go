// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savings-circle/backend/internal/application/adapter"
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

// groupRepository implements the adapter.GroupRepository interface.
type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository instance.
func NewGroupRepository(db *gorm.DB) adapter.GroupRepository {
	return &groupRepository{
		db: db,
	}
}

// Create inserts a new group. A taken invite code is reported as a lost race.
func (r *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	groupModel := model.GroupFromEntity(group)
	result := r.db.WithContext(ctx).Create(groupModel)
	return racingInsert(result.Error)
}

// FindByID retrieves a group by its ID.
func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	var groupModel model.GroupModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&groupModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return groupModel.ToEntity(), nil
}

// FindByInviteCode retrieves a group by its invite code.
func (r *groupRepository) FindByInviteCode(ctx context.Context, code string) (*entity.Group, error) {
	var groupModel model.GroupModel
	result := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&groupModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return groupModel.ToEntity(), nil
}

// InviteCodeExists reports whether a group already uses code.
func (r *groupRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.GroupModel{}).
		Where("invite_code = ?", code).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// ListByMember retrieves all groups a user belongs to.
func (r *groupRepository) ListByMember(ctx context.Context, userID string) ([]*entity.GroupListItem, error) {
	var results []struct {
		ID                  uuid.UUID
		Name                string
		MembersCount        int
		CurrentBalanceCents int64
		Currency            string
		Status              string
		NextPayoutDate      sql.NullTime
		Role                string
		CreatedAt           time.Time
	}

	query := `
		SELECT
			g.id,
			g.name,
			g.members_count,
			g.current_balance_cents,
			g.currency,
			g.status,
			g.next_payout_date,
			gm.role,
			g.created_at
		FROM groups g
		INNER JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC
	`

	if err := r.db.WithContext(ctx).Raw(query, userID).Scan(&results).Error; err != nil {
		return nil, err
	}

	groups := make([]*entity.GroupListItem, len(results))
	for i, res := range results {
		item := &entity.GroupListItem{
			ID:                  res.ID,
			Name:                res.Name,
			MembersCount:        res.MembersCount,
			CurrentBalanceCents: res.CurrentBalanceCents,
			Currency:            res.Currency,
			Status:              entity.GroupStatus(res.Status),
			Role:                entity.MemberRole(res.Role),
			CreatedAt:           res.CreatedAt,
		}
		if res.NextPayoutDate.Valid {
			d := res.NextPayoutDate.Time.UTC()
			item.NextPayoutDate = &d
		}
		groups[i] = item
	}

	return groups, nil
}

// Update writes every mutable column of the group if the stored version still matches.
func (r *groupRepository) Update(ctx context.Context, group *entity.Group) error {
	m := model.GroupFromEntity(group)
	result := r.db.WithContext(ctx).
		Model(&model.GroupModel{}).
		Where("id = ? AND version = ?", group.ID, group.Version).
		Updates(map[string]interface{}{
			"name":                      m.Name,
			"description":               m.Description,
			"contribution_amount_cents": m.ContributionAmountCents,
			"currency":                  m.Currency,
			"current_balance_cents":     m.CurrentBalanceCents,
			"members_count":             m.MembersCount,
			"member_ids":                m.MemberIDs,
			"invite_code":               m.InviteCode,
			"status":                    m.Status,
			"payout_schedule":           m.PayoutSchedule,
			"next_payout_date":          m.NextPayoutDate,
			"version":                   group.Version + 1,
			"updated_at":                m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrConcurrentModification
	}
	group.Version++
	return nil
}
