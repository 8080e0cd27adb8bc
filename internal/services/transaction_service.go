package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// transactionService handles the append-only ledger.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: time.Now}
}

// CreateTransaction records an income or expense in the named category.
// The category must belong to the user and carry the same kind.
func (s *transactionService) CreateTransaction(
	userID string,
	amount decimal.Decimal,
	kind models.CategoryKind,
	categoryName string,
) (*models.Transaction, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be at least 0.01")
	}
	if amount.GreaterThanOrEqual(models.MaxAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is too large")
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("user_id = ? AND kind = ? AND name = ?", userID, kind, strings.TrimSpace(categoryName)).
			First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return err
		}

		result = &models.Transaction{
			UserID:     userID,
			CategoryID: category.ID,
			Amount:     amount,
			Kind:       kind,
			Timestamp:  s.now().UTC(),
		}
		return tx.Create(result).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetLedger returns every transaction of the user joined with its category
// name, oldest first.
func (s *transactionService) GetLedger(userID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.Table("transactions AS t").
		Select("t.id AS id, t.amount AS amount, t.kind AS kind, c.name AS category_name, t.timestamp AS timestamp").
		Joins("JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ?", userID).
		Order("t.timestamp ASC, t.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
