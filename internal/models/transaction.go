package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the exclusive upper bound of a stored amount; amount columns
// are numeric(14,2).
var MaxAmount = decimal.New(1, 12)

// Transaction is an immutable ledger row. Kind always equals the kind of the
// referenced category; Timestamp is set once, in UTC, at creation.
type Transaction struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Kind       CategoryKind    `gorm:"size:16;not null" json:"kind"`
	Timestamp  time.Time       `gorm:"not null;index" json:"timestamp"`
}

// LedgerEntry is a transaction joined with its category name, as used by
// exports. It is a read model and has no table of its own.
type LedgerEntry struct {
	ID           string
	Amount       decimal.Decimal
	Kind         CategoryKind
	CategoryName string
	Timestamp    time.Time
}
