package services

import (
	"time"

	"github.com/shopspring/decimal"

	"finbot/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	GetOrCreateUser(externalID int64) (*models.User, error)
	GetUserByExternalID(externalID int64) (*models.User, error)
	ListUsers() ([]models.User, error)
	SetCurrency(userID, currency string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	AddCategory(userID, name string, kind models.CategoryKind) (*models.Category, error)
	DeleteCategory(userID, name string) error
	GetUserCategories(userID string) ([]models.Category, error)
	GetUserCategoriesByKind(userID string, kind models.CategoryKind) ([]models.Category, error)
	GetCategoryByName(userID, name string) (*models.Category, error)
}

// TransactionServicer defines the contract for the append-only ledger.
type TransactionServicer interface {
	CreateTransaction(userID string, amount decimal.Decimal, kind models.CategoryKind, categoryName string) (*models.Transaction, error)
	GetLedger(userID string) ([]models.LedgerEntry, error)
}

// BudgetView is a budget together with the name of its category.
type BudgetView struct {
	BudgetID     string
	CategoryID   string
	CategoryName string
	Amount       decimal.Decimal
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(userID, categoryName string, amount decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(userID string) ([]BudgetView, error)
}

// Balance is the month-to-date summary of a user's ledger.
type Balance struct {
	Net     decimal.Decimal
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryTotal is the amount spent in one category over a period.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Total      decimal.Decimal
}

// TrendPoint is one day of a windowed cumulative balance trend.
type TrendPoint struct {
	Date       time.Time
	Cumulative decimal.Decimal
}

// AnalyticsServicer defines the read-only aggregation queries.
type AnalyticsServicer interface {
	GetBalance(userID string) (*Balance, error)
	GetMonthlyExpensesByCategory(userID string) ([]CategoryTotal, error)
	GetTodayExpensesByCategory(userID string) ([]CategoryTotal, error)
	GetTodayExpenseTotal(userID string) (decimal.Decimal, error)
	GetBalanceTrend(userID string, days int) ([]TrendPoint, error)
	GetCategorySpent(userID, categoryID string) (decimal.Decimal, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID string, changes map[string]any)
}
