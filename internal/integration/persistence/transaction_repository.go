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

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create appends a transaction to the ledger.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.LedgerTransactionFromEntity(transaction)
	result := r.db.WithContext(ctx).Create(transactionModel)
	return result.Error
}

// FindByID retrieves a transaction of a group by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, groupID, id uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.LedgerTransactionModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", id, groupID).
		First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// UpdateStatus writes the new status only if the stored one still equals expected.
func (r *transactionRepository) UpdateStatus(ctx context.Context, transaction *entity.Transaction, expected entity.TransactionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.LedgerTransactionModel{}).
		Where("id = ? AND status = ?", transaction.ID, string(expected)).
		Updates(map[string]interface{}{
			"status":       string(transaction.Status),
			"reviewed_at":  model.ToNullTime(transaction.ReviewedAt),
			"reviewed_by":  transaction.ReviewedBy,
			"processed_at": model.ToNullTime(transaction.ProcessedAt),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrConcurrentModification
	}
	return nil
}

// List retrieves ledger rows based on filter criteria with pagination.
func (r *transactionRepository) List(ctx context.Context, filter adapter.TransactionFilter, pagination adapter.TransactionPagination) (*adapter.TransactionListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.LedgerTransactionModel{})

	// Apply filters
	query = query.Where("group_id = ?", filter.GroupID)

	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	// Get total count
	var total int64
	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	// Calculate pagination
	offset := (pagination.Page - 1) * pagination.Limit
	totalPages := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	if totalPages == 0 {
		totalPages = 1
	}

	var transactionModels []model.LedgerTransactionModel
	result := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(pagination.Limit).
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToEntity()
	}

	return &adapter.TransactionListResult{
		Transactions: transactions,
		Total:        total,
		Page:         pagination.Page,
		Limit:        pagination.Limit,
		TotalPages:   totalPages,
	}, nil
}

// Totals aggregates the ledger of a group by type and status.
func (r *transactionRepository) Totals(ctx context.Context, groupID uuid.UUID) (*entity.LedgerTotals, error) {
	var rows []struct {
		Type   string
		Status string
		Total  int64
	}

	result := r.db.WithContext(ctx).
		Model(&model.LedgerTransactionModel{}).
		Select("type, status, COALESCE(SUM(amount_cents), 0) as total").
		Where("group_id = ?", groupID).
		Group("type, status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	totals := &entity.LedgerTotals{}
	for _, row := range rows {
		switch {
		case row.Type == string(entity.TransactionTypeContribution) && row.Status == string(entity.TransactionStatusApproved):
			totals.ApprovedContributionsCents += row.Total
		case row.Type == string(entity.TransactionTypeContribution) && row.Status == string(entity.TransactionStatusPending):
			totals.PendingClaimsCents += row.Total
		case row.Type == string(entity.TransactionTypePayout) && row.Status == string(entity.TransactionStatusCompleted):
			totals.CompletedPayoutsCents += row.Total
		case row.Type == string(entity.TransactionTypePayout) && row.Status == string(entity.TransactionStatusPendingConfirmation):
			totals.PendingPayoutsCents += row.Total
		case row.Type == string(entity.TransactionTypeFee) && row.Status == string(entity.TransactionStatusApproved):
			totals.ApprovedFeesCents += row.Total
		}
	}
	return totals, nil
}
