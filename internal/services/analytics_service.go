package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

const trendDateLayout = "2006-01-02"

// analyticsService answers read-only aggregation queries over the ledger.
// Day and month boundaries are taken in loc.
type analyticsService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewAnalyticsService creates a new AnalyticsServicer. A nil location means UTC.
func NewAnalyticsService(db *gorm.DB, loc *time.Location) AnalyticsServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &analyticsService{db: db, loc: loc, now: time.Now}
}

func (s *analyticsService) dayStart() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

func (s *analyticsService) monthStart() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, s.loc)
}

// sum adds up the amounts of one kind between since and now.
// An empty categoryID sums across all categories.
func (s *analyticsService) sum(userID string, kind models.CategoryKind, since time.Time, categoryID string) (decimal.Decimal, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND kind = ? AND timestamp >= ? AND timestamp <= ?", userID, kind, since.UTC(), s.now().UTC())
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total.Round(2), nil
}

// GetBalance returns month-to-date income, expense and their difference.
func (s *analyticsService) GetBalance(userID string) (*Balance, error) {
	since := s.monthStart()

	income, err := s.sum(userID, models.CategoryKindIncome, since, "")
	if err != nil {
		return nil, err
	}
	expense, err := s.sum(userID, models.CategoryKindExpense, since, "")
	if err != nil {
		return nil, err
	}

	return &Balance{
		Net:     income.Sub(expense),
		Income:  income,
		Expense: expense,
	}, nil
}

// GetMonthlyExpensesByCategory returns month-to-date spend for every expense
// category of the user, including categories with no spend.
func (s *analyticsService) GetMonthlyExpensesByCategory(userID string) ([]CategoryTotal, error) {
	return s.expensesByCategory(userID, s.monthStart())
}

// GetTodayExpensesByCategory is GetMonthlyExpensesByCategory for the current day.
func (s *analyticsService) GetTodayExpensesByCategory(userID string) ([]CategoryTotal, error) {
	return s.expensesByCategory(userID, s.dayStart())
}

func (s *analyticsService) expensesByCategory(userID string, since time.Time) ([]CategoryTotal, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ? AND kind = ?", userID, models.CategoryKindExpense).
		Order("created_at ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows, err := s.db.Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND kind = ? AND timestamp >= ? AND timestamp <= ?",
			userID, models.CategoryKindExpense, since.UTC(), s.now().UTC()).
		Group("category_id").
		Rows()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer rows.Close()

	spent := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			categoryID string
			total      decimal.Decimal
		)
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		spent[categoryID] = total.Round(2)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make([]CategoryTotal, 0, len(categories))
	for _, c := range categories {
		total, ok := spent[c.ID]
		if !ok {
			total = decimal.Zero
		}
		totals = append(totals, CategoryTotal{CategoryID: c.ID, Name: c.Name, Total: total})
	}
	return totals, nil
}

// GetTodayExpenseTotal returns the total spent since the start of the day.
func (s *analyticsService) GetTodayExpenseTotal(userID string) (decimal.Decimal, error) {
	return s.sum(userID, models.CategoryKindExpense, s.dayStart(), "")
}

// GetBalanceTrend returns one point per day for the last days days, today
// included. Each point is the running sum of signed amounts from the start
// of the window through the end of that day.
func (s *analyticsService) GetBalanceTrend(userID string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be positive")
	}

	start := s.dayStart().AddDate(0, 0, -(days - 1))

	var txns []models.Transaction
	if err := s.db.Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start.UTC(), s.now().UTC()).
		Order("timestamp ASC").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	daily := make(map[string]decimal.Decimal)
	for _, t := range txns {
		key := t.Timestamp.In(s.loc).Format(trendDateLayout)
		delta := t.Amount
		if t.Kind == models.CategoryKindExpense {
			delta = delta.Neg()
		}
		daily[key] = daily[key].Add(delta)
	}

	points := make([]TrendPoint, 0, days)
	cumulative := decimal.Zero
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		cumulative = cumulative.Add(daily[day.Format(trendDateLayout)])
		points = append(points, TrendPoint{Date: day, Cumulative: cumulative})
	}
	return points, nil
}

// GetCategorySpent returns month-to-date spend in a single category.
func (s *analyticsService) GetCategorySpent(userID, categoryID string) (decimal.Decimal, error) {
	return s.sum(userID, models.CategoryKindExpense, s.monthStart(), categoryID)
}
