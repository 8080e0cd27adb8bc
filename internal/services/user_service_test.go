package services

import (
	"testing"

	"finbot/internal/models"
	"finbot/internal/testutil"
)

func TestGetOrCreateUser(t *testing.T) {
	t.Run("creates_with_default_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")

		user, err := svc.GetOrCreateUser(42)
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be set")
		}
		if user.ExternalID != 42 {
			t.Errorf("expected external id 42, got %d", user.ExternalID)
		}
		if user.Currency != "RUB" {
			t.Errorf("expected currency RUB, got %s", user.Currency)
		}

		var categories []models.Category
		testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).Find(&categories).Error)
		if len(categories) != len(models.DefaultCategories) {
			t.Fatalf("expected %d default categories, got %d", len(models.DefaultCategories), len(categories))
		}

		kinds := map[string]models.CategoryKind{}
		for _, c := range categories {
			kinds[c.Name] = c.Kind
		}
		for _, def := range models.DefaultCategories {
			if kinds[def.Name] != def.Kind {
				t.Errorf("expected category %s of kind %s, got %q", def.Name, def.Kind, kinds[def.Name])
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")

		first, err := svc.GetOrCreateUser(7)
		testutil.AssertNoError(t, err)
		second, err := svc.GetOrCreateUser(7)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected the same user, got %s and %s", first.ID, second.ID)
		}

		var users, categories int64
		db.Model(&models.User{}).Count(&users)
		db.Model(&models.Category{}).Count(&categories)
		if users != 1 {
			t.Errorf("expected 1 user, got %d", users)
		}
		if categories != 5 {
			t.Errorf("expected 5 categories, got %d", categories)
		}
	})

	t.Run("configured_default_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "eur")

		user, err := svc.GetOrCreateUser(8)
		testutil.AssertNoError(t, err)
		if user.Currency != "EUR" {
			t.Errorf("expected currency EUR, got %s", user.Currency)
		}
	})
}

func TestGetUserByExternalID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")
		created := testutil.CreateTestUser(t, db)

		user, err := svc.GetUserByExternalID(created.ExternalID)
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")

		_, err := svc.GetUserByExternalID(999)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, nil, "")

	testutil.CreateTestUser(t, db)
	testutil.CreateTestUser(t, db)

	users, err := svc.ListUsers()
	testutil.AssertNoError(t, err)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestSetCurrency(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db), "")
		user := testutil.CreateTestUser(t, db)

		updated, err := svc.SetCurrency(user.ID, "usd")
		testutil.AssertNoError(t, err)
		if updated.Currency != "USD" {
			t.Errorf("expected USD, got %s", updated.Currency)
		}

		var audit models.AuditLog
		testutil.AssertNoError(t, db.Where("user_id = ? AND action = ?", user.ID, AuditActionSetCurrency).First(&audit).Error)
	})

	t.Run("unknown_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SetCurrency(user.ID, "ABCD")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, nil, "")

		_, err := svc.SetCurrency("00000000-0000-0000-0000-000000000000", "USD")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
