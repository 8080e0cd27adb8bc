package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending ceiling for one expense category. There is at
// most one budget per (user, category); a non-positive amount disables it.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
}

// BudgetAlert records that a threshold alert was delivered for a budget in a
// given month ("2006-01"). Only written when alerts are deduplicated monthly.
type BudgetAlert struct {
	Base
	BudgetID string `gorm:"type:uuid;not null;uniqueIndex:uq_budget_alerts_budget_period" json:"budget_id"`
	Period   string `gorm:"size:7;not null;uniqueIndex:uq_budget_alerts_budget_period" json:"period"`
}
