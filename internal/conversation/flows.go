package conversation

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

const maxCategoryNameLength = 50

func (e *Engine) start(t *turn) ([]Reply, error) {
	return menuReply(msgWelcome), nil
}

// Transaction entry: amount, then category.

func (e *Engine) startAmount(t *turn) ([]Reply, error) {
	kind, prompt := models.CategoryKindExpense, msgEnterExpense
	if t.text == btnAddIncome {
		kind, prompt = models.CategoryKindIncome, msgEnterIncome
	}
	t.session = &Session{Kind: kind}
	e.advance(t, StateAwaitingAmount)
	return []Reply{{Text: prompt, RemoveKeyboard: true}}, nil
}

func (e *Engine) onAmount(t *turn) ([]Reply, error) {
	amount, ok := parseAmount(t.text)
	if !ok {
		e.stay(t)
		return []Reply{{Text: msgNotNumber}}, nil
	}
	if !amount.IsPositive() {
		e.stay(t)
		return []Reply{{Text: msgNotPositive}}, nil
	}
	if amount.GreaterThanOrEqual(models.MaxAmount) {
		e.stay(t)
		return []Reply{{Text: msgTooLarge}}, nil
	}

	cats, err := e.categories.GetUserCategoriesByKind(t.user.ID, t.session.Kind)
	if err != nil {
		return nil, err
	}

	t.session.Amount = amount
	e.advance(t, StateAwaitingCategory)
	return []Reply{{Text: msgChooseCategory, Keyboard: categoryKeyboard(categoryNames(cats))}}, nil
}

func (e *Engine) onCategory(t *turn) ([]Reply, error) {
	s := *t.session
	e.end(t)

	txn, err := e.transactions.CreateTransaction(t.user.ID, s.Amount, s.Kind, t.text)
	if errors.Is(err, apperrors.ErrCategoryNotFound) {
		return menuReply(msgCatNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	label := "Расход"
	if s.Kind == models.CategoryKindIncome {
		label = "Доход"
	}
	return menuReply(fmt.Sprintf("✅ %s %s %s в категории «%s» сохранён.",
		label, txn.Amount.StringFixed(2), t.user.Currency, t.text)), nil
}

// Settings.

func (e *Engine) startSettings(t *turn) ([]Reply, error) {
	e.advance(t, StateAwaitingSettings)
	return []Reply{{Text: msgSettings, Keyboard: settingsMenu}}, nil
}

func (e *Engine) onSettingsChoice(t *turn) ([]Reply, error) {
	switch t.text {
	case btnCurrency:
		e.advance(t, StateAwaitingCurrency)
		return []Reply{{Text: msgChooseCurrency, Keyboard: currencyMenu}}, nil

	case btnCategories:
		e.advance(t, StateAwaitingCategoryMenu)
		return []Reply{{Text: msgCategoryMenu, Keyboard: categoryMenu}}, nil

	case btnBudget:
		cats, err := e.categories.GetUserCategoriesByKind(t.user.ID, models.CategoryKindExpense)
		if err != nil {
			return nil, err
		}
		if len(cats) == 0 {
			e.end(t)
			return menuReply(msgNoExpenseCats), nil
		}
		e.advance(t, StateAwaitingBudgetCat)
		return []Reply{{Text: msgBudgetCategory, Keyboard: categoryKeyboard(categoryNames(cats))}}, nil
	}

	e.end(t)
	return menuReply(msgCancelled), nil
}

func (e *Engine) onCurrency(t *turn) ([]Reply, error) {
	user, err := e.users.SetCurrency(t.user.ID, t.text)
	if errors.Is(err, apperrors.ErrInvalidInput) {
		e.stay(t)
		return []Reply{{Text: msgBadCurrency, Keyboard: currencyMenu}}, nil
	}
	if err != nil {
		return nil, err
	}

	e.end(t)
	return menuReply("✅ Валюта установлена: " + user.Currency), nil
}

func (e *Engine) onCategoryMenu(t *turn) ([]Reply, error) {
	switch t.text {
	case btnAddCategory:
		e.advance(t, StateAwaitingNewCatName)
		return []Reply{{Text: msgEnterCatName, RemoveKeyboard: true}}, nil

	case btnDelCategory:
		cats, err := e.categories.GetUserCategories(t.user.ID)
		if err != nil {
			return nil, err
		}
		if len(cats) == 0 {
			e.end(t)
			return menuReply(msgNoCategories), nil
		}
		e.advance(t, StateAwaitingDeleteSelect)
		return []Reply{{Text: msgDeleteCategory, Keyboard: categoryKeyboard(categoryNames(cats))}}, nil
	}

	e.stay(t)
	return []Reply{{Text: msgCategoryMenu, Keyboard: categoryMenu}}, nil
}

// Category creation: name, then kind.

func (e *Engine) onNewCategoryName(t *turn) ([]Reply, error) {
	if t.text == "" {
		e.stay(t)
		return []Reply{{Text: msgEmptyCatName}}, nil
	}
	if utf8.RuneCountInString(t.text) > maxCategoryNameLength {
		e.stay(t)
		return []Reply{{Text: msgCatNameTooLong}}, nil
	}

	t.session.NewCategoryName = t.text
	e.advance(t, StateAwaitingNewCatType)
	return []Reply{{Text: msgChooseKind, Keyboard: kindMenu}}, nil
}

func (e *Engine) onNewCategoryType(t *turn) ([]Reply, error) {
	var kind models.CategoryKind
	switch t.text {
	case btnKindExpense:
		kind = models.CategoryKindExpense
	case btnKindIncome:
		kind = models.CategoryKindIncome
	default:
		e.stay(t)
		return []Reply{{Text: msgBadKind, Keyboard: kindMenu}}, nil
	}

	name := t.session.NewCategoryName
	e.end(t)

	cat, err := e.categories.AddCategory(t.user.ID, name, kind)
	if errors.Is(err, apperrors.ErrCategoryExists) {
		return menuReply(msgCatExists), nil
	}
	if err != nil {
		return nil, err
	}
	return menuReply(fmt.Sprintf("✅ Категория «%s» добавлена.", cat.Name)), nil
}

// Budget: expense category, then monthly limit.

func (e *Engine) onBudgetCategory(t *turn) ([]Reply, error) {
	cat, err := e.categories.GetCategoryByName(t.user.ID, t.text)
	if errors.Is(err, apperrors.ErrCategoryNotFound) || (err == nil && cat.Kind != models.CategoryKindExpense) {
		e.end(t)
		return menuReply(msgCatNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	t.session.BudgetCategory = cat.Name
	e.advance(t, StateAwaitingBudgetAmount)
	return []Reply{{
		Text:           fmt.Sprintf("💰 Введите месячный лимит для «%s» (%s):", cat.Name, t.user.Currency),
		RemoveKeyboard: true,
	}}, nil
}

func (e *Engine) onBudgetAmount(t *turn) ([]Reply, error) {
	amount, ok := parseAmount(t.text)
	if !ok {
		e.stay(t)
		return []Reply{{Text: msgNotNumber}}, nil
	}
	if amount.GreaterThanOrEqual(models.MaxAmount) {
		e.stay(t)
		return []Reply{{Text: msgTooLarge}}, nil
	}

	name := t.session.BudgetCategory
	e.end(t)

	budget, err := e.budgets.SetBudget(t.user.ID, name, amount)
	if errors.Is(err, apperrors.ErrCategoryNotFound) {
		return menuReply(msgCatNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	return menuReply(fmt.Sprintf("✅ Бюджет для «%s» установлен: %s %s",
		name, budget.Amount.StringFixed(2), t.user.Currency)), nil
}

// Category deletion: pick, then confirm.

func (e *Engine) onDeleteSelect(t *turn) ([]Reply, error) {
	cat, err := e.categories.GetCategoryByName(t.user.ID, t.text)
	if errors.Is(err, apperrors.ErrCategoryNotFound) {
		e.end(t)
		return menuReply(msgCatNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	t.session.DeleteTarget = cat.Name
	e.advance(t, StateAwaitingDeleteConf)
	return []Reply{{
		Text:     fmt.Sprintf("❓ Удалить категорию «%s»? Её операции и бюджет тоже будут удалены.", cat.Name),
		Keyboard: confirmMenu,
	}}, nil
}

func (e *Engine) onDeleteConfirm(t *turn) ([]Reply, error) {
	target := t.session.DeleteTarget
	e.end(t)

	if t.text != btnYes || target == "" {
		return menuReply(msgCancelled), nil
	}

	err := e.categories.DeleteCategory(t.user.ID, target)
	if errors.Is(err, apperrors.ErrCategoryNotFound) {
		return menuReply(msgCatNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	return menuReply(fmt.Sprintf("✅ Категория «%s» удалена.", target)), nil
}

func parseAmount(s string) (decimal.Decimal, bool) {
	if !amountPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	// Amounts are kept in cents; "0.001" reads as zero.
	return d.Round(2), true
}

func categoryNames(cats []models.Category) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}
