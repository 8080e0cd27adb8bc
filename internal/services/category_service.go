package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

// maxCategoryNameLength matches the size of categories.name.
const maxCategoryNameLength = 50

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, auditService AuditServicer) CategoryServicer {
	return &categoryService{db: db, audit: auditOrNop(auditService)}
}

// AddCategory creates a new category. Names are unique per user across both kinds.
func (s *categoryService) AddCategory(userID, name string, kind models.CategoryKind) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is too long")
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category kind must be income or expense")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrCategoryExists
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Kind:   kind,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(userID, AuditActionAddCategory, "category", category.ID, map[string]any{
		"name": category.Name,
		"kind": string(category.Kind),
	})
	return category, nil
}

// DeleteCategory removes a category together with its transactions, its
// budget and that budget's alert history. Either all of it goes or nothing does.
func (s *categoryService) DeleteCategory(userID, name string) error {
	var deleted models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND name = ?", userID, strings.TrimSpace(name)).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return err
		}

		budgetIDs := tx.Model(&models.Budget{}).Select("id").Where("category_id = ?", deleted.ID)
		if err := tx.Where("budget_id IN (?)", budgetIDs).Delete(&models.BudgetAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", deleted.ID).Delete(&models.Budget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", deleted.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&deleted).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.audit.Log(userID, AuditActionDeleteCategory, "category", deleted.ID, map[string]any{
		"name": deleted.Name,
		"kind": string(deleted.Kind),
	})
	return nil
}

// GetUserCategories retrieves all categories of a user in creation order.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetUserCategoriesByKind retrieves the categories of one kind for a user.
func (s *categoryService) GetUserCategoriesByKind(userID string, kind models.CategoryKind) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByName retrieves a category by its exact name for a specific user
func (s *categoryService) GetCategoryByName(userID, name string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("user_id = ? AND name = ?", userID, strings.TrimSpace(name)).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
