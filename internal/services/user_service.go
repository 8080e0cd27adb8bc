package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
	"finbot/internal/validator"
)

// userService handles user-related business logic.
type userService struct {
	db              *gorm.DB
	audit           AuditServicer
	defaultCurrency string
}

// NewUserService creates a new UserServicer. New users get defaultCurrency,
// or RUB when it is empty.
func NewUserService(db *gorm.DB, auditService AuditServicer, defaultCurrency string) UserServicer {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &userService{
		db:              db,
		audit:           auditOrNop(auditService),
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// GetOrCreateUser returns the user with the given external id, creating it
// together with the default categories on first contact. Seeding happens in
// the same database transaction as the user insert, and only for the caller
// that actually inserted the row.
func (s *userService) GetOrCreateUser(externalID int64) (*models.User, error) {
	user, err := s.GetUserByExternalID(externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{ExternalID: externalID, Currency: s.defaultCurrency}
	created := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).Create(user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		categories := make([]models.Category, 0, len(models.DefaultCategories))
		for _, def := range models.DefaultCategories {
			categories = append(categories, models.Category{UserID: user.ID, Name: def.Name, Kind: def.Kind})
		}
		return tx.Create(&categories).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !created {
		// Lost a race with a concurrent insert; the winner seeded the categories.
		return s.GetUserByExternalID(externalID)
	}
	return user, nil
}

// GetUserByExternalID retrieves a user by chat identifier
func (s *userService) GetUserByExternalID(externalID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListUsers returns every registered user.
func (s *userService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// SetCurrency changes the user's preferred ISO 4217 currency.
func (s *userService) SetCurrency(userID, currency string) (*models.User, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if !validator.IsCurrency(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown currency code")
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	previous := user.Currency
	if err := s.db.Model(&user).Update("currency", code).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(user.ID, AuditActionSetCurrency, "user", user.ID, map[string]any{
		"from": previous,
		"to":   code,
	})
	return &user, nil
}
