package services

import (
	"testing"
	"time"

	"finbot/internal/models"
	"finbot/internal/testutil"
)

// fixedNow is mid-afternoon on the 15th so that month and day windows both
// have room on either side.
var fixedNow = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)

func newFixedAnalytics(t *testing.T, svc AnalyticsServicer) *analyticsService {
	t.Helper()
	s, ok := svc.(*analyticsService)
	if !ok {
		t.Fatalf("unexpected analytics implementation %T", svc)
	}
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestGetBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newFixedAnalytics(t, NewAnalyticsService(db, nil))
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Еда", models.CategoryKindExpense)
	salary := testutil.CreateTestCategoryWithName(t, db, user.ID, "Зарплата", models.CategoryKindIncome)

	testutil.CreateTestTransactionAt(t, db, salary, "1000", fixedNow.AddDate(0, 0, -10))
	testutil.CreateTestTransactionAt(t, db, food, "150.50", fixedNow.Add(-time.Hour))
	// Previous month and the future are both outside the window.
	testutil.CreateTestTransactionAt(t, db, food, "999", time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC))
	testutil.CreateTestTransactionAt(t, db, food, "999", fixedNow.Add(time.Hour))

	balance, err := svc.GetBalance(user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, balance.Income, "1000")
	testutil.AssertDecimal(t, balance.Expense, "150.50")
	testutil.AssertDecimal(t, balance.Net, "849.50")
}

func TestExpensesByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newFixedAnalytics(t, NewAnalyticsService(db, nil))
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Еда", models.CategoryKindExpense)
	fun := testutil.CreateTestCategoryWithName(t, db, user.ID, "Развлечения", models.CategoryKindExpense)
	testutil.CreateTestCategoryWithName(t, db, user.ID, "Зарплата", models.CategoryKindIncome)

	testutil.CreateTestTransactionAt(t, db, food, "40", fixedNow.AddDate(0, 0, -3))
	testutil.CreateTestTransactionAt(t, db, food, "10", fixedNow.Add(-2*time.Hour))
	testutil.CreateTestTransactionAt(t, db, food, "5.25", fixedNow.Add(-time.Hour))

	t.Run("monthly", func(t *testing.T) {
		totals, err := svc.GetMonthlyExpensesByCategory(user.ID)
		testutil.AssertNoError(t, err)
		if len(totals) != 2 {
			t.Fatalf("expected 2 expense categories, got %d", len(totals))
		}
		byName := map[string]CategoryTotal{}
		for _, ct := range totals {
			byName[ct.Name] = ct
		}
		testutil.AssertDecimal(t, byName["Еда"].Total, "55.25")
		testutil.AssertDecimal(t, byName["Развлечения"].Total, "0")
		if byName["Развлечения"].CategoryID != fun.ID {
			t.Errorf("expected zero-filled row to carry category id")
		}
	})

	t.Run("today", func(t *testing.T) {
		totals, err := svc.GetTodayExpensesByCategory(user.ID)
		testutil.AssertNoError(t, err)
		for _, ct := range totals {
			if ct.Name == "Еда" {
				testutil.AssertDecimal(t, ct.Total, "15.25")
			}
		}

		total, err := svc.GetTodayExpenseTotal(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, total, "15.25")
	})

	t.Run("category_spent", func(t *testing.T) {
		spent, err := svc.GetCategorySpent(user.ID, food.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, spent, "55.25")
	})
}

func TestGetTodayExpenseTotal_Location(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	moscow := time.FixedZone("MSK", 3*60*60)
	svc := newFixedAnalytics(t, NewAnalyticsService(db, moscow))
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Еда", models.CategoryKindExpense)

	// 22:30 UTC on the 14th is already the 15th in Moscow.
	testutil.CreateTestTransactionAt(t, db, food, "30", time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC))
	testutil.CreateTestTransactionAt(t, db, food, "70", time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))

	total, err := svc.GetTodayExpenseTotal(user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, total, "30")
}

func TestGetBalanceTrend(t *testing.T) {
	t.Run("seven_days_cumulative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newFixedAnalytics(t, NewAnalyticsService(db, nil))
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Еда", models.CategoryKindExpense)
		salary := testutil.CreateTestCategoryWithName(t, db, user.ID, "Зарплата", models.CategoryKindIncome)

		// Before the window; must not seed the running sum.
		testutil.CreateTestTransactionAt(t, db, salary, "5000", fixedNow.AddDate(0, 0, -7))
		// Day 0 of the window is the 9th.
		testutil.CreateTestTransactionAt(t, db, salary, "100", time.Date(2026, 10, 9, 10, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionAt(t, db, food, "30", time.Date(2026, 10, 11, 12, 0, 0, 0, time.UTC))
		testutil.CreateTestTransactionAt(t, db, food, "20", time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))

		points, err := svc.GetBalanceTrend(user.ID, 7)
		testutil.AssertNoError(t, err)
		if len(points) != 7 {
			t.Fatalf("expected 7 points, got %d", len(points))
		}

		want := []string{"100", "100", "70", "70", "70", "70", "50"}
		for i, p := range points {
			testutil.AssertDecimal(t, p.Cumulative, want[i])
			wantDate := time.Date(2026, 10, 9+i, 0, 0, 0, 0, time.UTC)
			if !p.Date.Equal(wantDate) {
				t.Errorf("point %d: expected date %v, got %v", i, wantDate, p.Date)
			}
		}
	})

	t.Run("empty_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newFixedAnalytics(t, NewAnalyticsService(db, nil))
		user := testutil.CreateTestUser(t, db)

		points, err := svc.GetBalanceTrend(user.ID, 7)
		testutil.AssertNoError(t, err)
		if len(points) != 7 {
			t.Fatalf("expected 7 points, got %d", len(points))
		}
		for _, p := range points {
			testutil.AssertDecimal(t, p.Cumulative, "0")
		}
	})

	t.Run("invalid_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newFixedAnalytics(t, NewAnalyticsService(db, nil))

		_, err := svc.GetBalanceTrend("any", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
