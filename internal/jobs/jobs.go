// Package jobs holds the scheduled background work: the daily expense
// summary, the budget monitor and housekeeping. Every run opens its own
// store session bound to the run's context.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finbot/internal/config"
	"finbot/internal/logger"
	"finbot/internal/models"
	"finbot/internal/services"
)

// Notifier pushes a text message to a chat user.
type Notifier interface {
	Notify(ctx context.Context, externalID int64, text string) error
}

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// budgetAlertPercent is the share of the limit at which an alert fires.
var budgetAlertPercent = decimal.NewFromInt(80)

// DailySummary reports each user's expense total for the current day.
type DailySummary struct {
	db       *gorm.DB
	loc      *time.Location
	notifier Notifier
}

// NewDailySummary creates the daily summary job. Days start at midnight in loc.
func NewDailySummary(db *gorm.DB, loc *time.Location, notifier Notifier) *DailySummary {
	return &DailySummary{db: db, loc: loc, notifier: notifier}
}

// Name returns the job name.
func (j *DailySummary) Name() string { return "daily_summary" }

// Run sends one summary per user. A failure for one user does not stop the others.
func (j *DailySummary) Run(ctx context.Context) error {
	db := j.db.WithContext(ctx)
	users := services.NewUserService(db, nil, "")
	analytics := services.NewAnalyticsService(db, j.loc)

	all, err := users.ListUsers()
	if err != nil {
		return err
	}

	sent := 0
	for _, u := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		total, err := analytics.GetTodayExpenseTotal(u.ID)
		if err != nil {
			logger.Get().Errorw("daily summary aggregation failed", "user_id", u.ID, "error", err)
			continue
		}
		text := fmt.Sprintf("📊 Ежедневная сводка: %s %s", total.StringFixed(2), u.Currency)
		if err := j.notifier.Notify(ctx, u.ExternalID, text); err != nil {
			logger.Get().Warnw("daily summary delivery failed", "user_id", u.ID, "error", err)
			continue
		}
		sent++
	}

	logger.Get().Infow("daily summary finished", "users", len(all), "sent", sent)
	return nil
}

// BudgetMonitor alerts users whose month-to-date spend in a budgeted
// category reached 80% of the limit.
type BudgetMonitor struct {
	db       *gorm.DB
	loc      *time.Location
	mode     config.BudgetAlertMode
	notifier Notifier
	now      func() time.Time
}

// NewBudgetMonitor creates the budget monitor. In monthly mode an alert is
// delivered at most once per budget per calendar month; in daily mode every
// run re-evaluates and re-alerts.
func NewBudgetMonitor(db *gorm.DB, loc *time.Location, mode config.BudgetAlertMode, notifier Notifier) *BudgetMonitor {
	return &BudgetMonitor{db: db, loc: loc, mode: mode, notifier: notifier, now: time.Now}
}

// Name returns the job name.
func (j *BudgetMonitor) Name() string { return "budget_check" }

// Run checks every budget of every user.
func (j *BudgetMonitor) Run(ctx context.Context) error {
	db := j.db.WithContext(ctx)
	users := services.NewUserService(db, nil, "")
	budgets := services.NewBudgetService(db, nil)
	analytics := services.NewAnalyticsService(db, j.loc)
	period := j.now().In(j.loc).Format("2006-01")

	all, err := users.ListUsers()
	if err != nil {
		return err
	}

	alerts := 0
	for _, u := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		views, err := budgets.GetUserBudgets(u.ID)
		if err != nil {
			logger.Get().Errorw("loading budgets failed", "user_id", u.ID, "error", err)
			continue
		}

		for _, b := range views {
			if !b.Amount.IsPositive() {
				continue
			}
			spent, err := analytics.GetCategorySpent(u.ID, b.CategoryID)
			if err != nil {
				logger.Get().Errorw("budget aggregation failed", "user_id", u.ID, "budget_id", b.BudgetID, "error", err)
				continue
			}
			if !ThresholdReached(spent, b.Amount) {
				continue
			}

			if j.mode == config.BudgetAlertMonthly {
				already, err := j.alreadyAlerted(db, b.BudgetID, period)
				if err != nil {
					logger.Get().Errorw("budget alert lookup failed", "budget_id", b.BudgetID, "error", err)
					continue
				}
				if already {
					continue
				}
			}

			if err := j.notifier.Notify(ctx, u.ExternalID, AlertText(b.CategoryName, spent, b.Amount, u.Currency)); err != nil {
				logger.Get().Warnw("budget alert delivery failed", "user_id", u.ID, "budget_id", b.BudgetID, "error", err)
				continue
			}
			alerts++

			if j.mode == config.BudgetAlertMonthly {
				if err := j.recordAlert(db, b.BudgetID, period); err != nil {
					logger.Get().Errorw("recording budget alert failed", "budget_id", b.BudgetID, "error", err)
				}
			}
		}
	}

	logger.Get().Infow("budget check finished", "users", len(all), "alerts", alerts, "mode", string(j.mode))
	return nil
}

func (j *BudgetMonitor) alreadyAlerted(db *gorm.DB, budgetID, period string) (bool, error) {
	var count int64
	err := db.Model(&models.BudgetAlert{}).
		Where("budget_id = ? AND period = ?", budgetID, period).
		Count(&count).Error
	return count > 0, err
}

func (j *BudgetMonitor) recordAlert(db *gorm.DB, budgetID, period string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BudgetAlert{BudgetID: budgetID, Period: period}).Error
}

// ThresholdReached reports whether spent is at least 80% of a positive limit.
func ThresholdReached(spent, limit decimal.Decimal) bool {
	if !limit.IsPositive() {
		return false
	}
	return spent.Mul(decimal.NewFromInt(100)).GreaterThanOrEqual(limit.Mul(budgetAlertPercent))
}

// AlertText formats a budget alert, e.g. "⚠️ Бюджет «Еда»: 80.00/100.00 RUB (80%)".
func AlertText(category string, spent, limit decimal.Decimal, currency string) string {
	pct := spent.Mul(decimal.NewFromInt(100)).Div(limit).Round(0)
	return fmt.Sprintf("⚠️ Бюджет «%s»: %s/%s %s (%s%%)",
		category, spent.StringFixed(2), limit.StringFixed(2), currency, pct.String())
}

// SessionSweeper drops expired conversation sessions.
type SessionSweeper struct {
	store interface{ CleanExpired() int }
}

// NewSessionSweeper creates a sweeper for store.
func NewSessionSweeper(store interface{ CleanExpired() int }) *SessionSweeper {
	return &SessionSweeper{store: store}
}

// Name returns the job name.
func (j *SessionSweeper) Name() string { return "session_sweep" }

// Run removes expired sessions.
func (j *SessionSweeper) Run(_ context.Context) error {
	if removed := j.store.CleanExpired(); removed > 0 {
		logger.Get().Debugw("expired sessions removed", "count", removed)
	}
	return nil
}
