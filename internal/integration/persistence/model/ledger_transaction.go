package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// LedgerTransactionModel represents the ledger_transactions table. Rows are never deleted.
type LedgerTransactionModel struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	GroupID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_ledger_group_status,priority:1"`
	Type        string       `gorm:"type:varchar(20);not null"`
	AmountCents int64        `gorm:"not null"`
	Status      string       `gorm:"type:varchar(30);not null;index:idx_ledger_group_status,priority:2"`
	UserID      string       `gorm:"type:varchar(128);not null;index"`
	Description string       `gorm:"type:varchar(500)"`
	Reference   string       `gorm:"type:varchar(255)"`
	CreatedBy   string       `gorm:"type:varchar(128);not null"`
	CreatedAt   time.Time    `gorm:"not null;index"`
	ReviewedAt  sql.NullTime
	ReviewedBy  string       `gorm:"type:varchar(128)"`
	ProcessedAt sql.NullTime
}

// TableName returns the table name for the LedgerTransactionModel.
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToEntity converts a LedgerTransactionModel to a domain Transaction entity.
func (m *LedgerTransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:          m.ID,
		GroupID:     m.GroupID,
		Type:        entity.TransactionType(m.Type),
		AmountCents: m.AmountCents,
		Status:      entity.TransactionStatus(m.Status),
		UserID:      m.UserID,
		Description: m.Description,
		Reference:   m.Reference,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		ReviewedAt:  nullTimePtr(m.ReviewedAt),
		ReviewedBy:  m.ReviewedBy,
		ProcessedAt: nullTimePtr(m.ProcessedAt),
	}
}

// LedgerTransactionFromEntity creates a LedgerTransactionModel from a domain Transaction entity.
func LedgerTransactionFromEntity(t *entity.Transaction) *LedgerTransactionModel {
	return &LedgerTransactionModel{
		ID:          t.ID,
		GroupID:     t.GroupID,
		Type:        string(t.Type),
		AmountCents: t.AmountCents,
		Status:      string(t.Status),
		UserID:      t.UserID,
		Description: t.Description,
		Reference:   t.Reference,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		ReviewedAt:  ToNullTime(t.ReviewedAt),
		ReviewedBy:  t.ReviewedBy,
		ProcessedAt: ToNullTime(t.ProcessedAt),
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// ToNullTime converts an optional time to its column representation.
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
