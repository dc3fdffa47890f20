package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// FeeRequestModel represents the fee_requests table.
type FeeRequestModel struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	GroupID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	UserID      string       `gorm:"type:varchar(128);not null;index"`
	AmountCents int64        `gorm:"not null"`
	RefNumber   string       `gorm:"type:varchar(255);not null"`
	Status      string       `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time    `gorm:"not null"`
	ReviewedAt  sql.NullTime
	ReviewedBy  string       `gorm:"type:varchar(128)"`
}

// TableName returns the table name for the FeeRequestModel.
func (FeeRequestModel) TableName() string {
	return "fee_requests"
}

// ToEntity converts a FeeRequestModel to a domain FeeRequest entity.
func (m *FeeRequestModel) ToEntity() *entity.FeeRequest {
	return &entity.FeeRequest{
		ID:          m.ID,
		GroupID:     m.GroupID,
		UserID:      m.UserID,
		AmountCents: m.AmountCents,
		RefNumber:   m.RefNumber,
		Status:      entity.FeeRequestStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		ReviewedAt:  nullTimePtr(m.ReviewedAt),
		ReviewedBy:  m.ReviewedBy,
	}
}

// FeeRequestFromEntity creates a FeeRequestModel from a domain FeeRequest entity.
func FeeRequestFromEntity(f *entity.FeeRequest) *FeeRequestModel {
	return &FeeRequestModel{
		ID:          f.ID,
		GroupID:     f.GroupID,
		UserID:      f.UserID,
		AmountCents: f.AmountCents,
		RefNumber:   f.RefNumber,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		ReviewedAt:  ToNullTime(f.ReviewedAt),
		ReviewedBy:  f.ReviewedBy,
	}
}
