package models

// DefaultCurrency is assigned to users created without an explicit preference.
const DefaultCurrency = "RUB"

// User is a chat participant owning one ledger. ExternalID is the chat
// platform's user identifier and never changes.
type User struct {
	Base
	ExternalID int64  `gorm:"uniqueIndex;not null" json:"external_id"`
	Currency   string `gorm:"size:3;not null;default:'RUB'" json:"currency"`
}
