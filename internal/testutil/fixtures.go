package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finbot/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique external id and no categories.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID: 1_000_000 + nextID(),
		Currency:   models.DefaultCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given kind with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, kind models.CategoryKind) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, userID, fmt.Sprintf("Test Category %d", nextID()), kind)
}

// CreateTestCategoryWithName creates a category with an explicit name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, userID, name string, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Kind:   kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction records a transaction in the category at the current time.
func CreateTestTransaction(t *testing.T, db *gorm.DB, category *models.Category, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, category, amount, time.Now().UTC())
}

// CreateTestTransactionAt records a transaction in the category at the given time.
// The transaction kind follows the category.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, category *models.Category, amount string, at time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     category.UserID,
		CategoryID: category.ID,
		Amount:     decimal.RequireFromString(amount),
		Kind:       category.Kind,
		Timestamp:  at.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget with the given monthly limit for the category.
func CreateTestBudget(t *testing.T, db *gorm.DB, category *models.Category, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     category.UserID,
		CategoryID: category.ID,
		Amount:     decimal.RequireFromString(amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
