package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, auditService AuditServicer) BudgetServicer {
	return &budgetService{db: db, audit: auditOrNop(auditService)}
}

// SetBudget creates or replaces the monthly limit for an expense category.
// A zero amount is stored and disables alerts for the category.
func (s *budgetService) SetBudget(userID, categoryName string, amount decimal.Decimal) (*models.Budget, error) {
	amount = amount.Round(2)
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must not be negative")
	}
	if amount.GreaterThanOrEqual(models.MaxAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount is too large")
	}

	var category models.Category
	if err := s.db.Where("user_id = ? AND kind = ? AND name = ?", userID, models.CategoryKindExpense, strings.TrimSpace(categoryName)).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     amount,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// The insert may have turned into an update; read back the surviving row.
	var stored models.Budget
	if err := s.db.Where("user_id = ? AND category_id = ?", userID, category.ID).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(userID, AuditActionSetBudget, "budget", stored.ID, map[string]any{
		"category": category.Name,
		"amount":   stored.Amount.StringFixed(2),
	})
	return &stored, nil
}

// GetUserBudgets returns all budgets of the user with their category names.
func (s *budgetService) GetUserBudgets(userID string) ([]BudgetView, error) {
	var views []BudgetView
	err := s.db.Table("budgets AS b").
		Select("b.id AS budget_id, b.category_id AS category_id, c.name AS category_name, b.amount AS amount").
		Joins("JOIN categories AS c ON c.id = b.category_id").
		Where("b.user_id = ?", userID).
		Order("c.name ASC").
		Scan(&views).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return views, nil
}
