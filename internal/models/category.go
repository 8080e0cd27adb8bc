package models

// CategoryKind is the closed set of ledger directions a category, a
// transaction or a budget can carry.
type CategoryKind string

const (
	CategoryKindExpense CategoryKind = "expense"
	CategoryKindIncome  CategoryKind = "income"
)

// Valid reports whether k is one of the known kinds.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindExpense || k == CategoryKindIncome
}

// Category represents a named bucket for transactions. Names are unique per
// user regardless of kind.
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;uniqueIndex:uq_categories_user_name" json:"user_id"`
	Name   string       `gorm:"size:50;not null;uniqueIndex:uq_categories_user_name" json:"name"`
	Kind   CategoryKind `gorm:"size:16;not null" json:"kind"`
}

// DefaultCategories are seeded once, when a user is first created.
var DefaultCategories = []struct {
	Name string
	Kind CategoryKind
}{
	{"Еда", CategoryKindExpense},
	{"Транспорт", CategoryKindExpense},
	{"Развлечения", CategoryKindExpense},
	{"Зарплата", CategoryKindIncome},
	{"Бонус", CategoryKindIncome},
}
