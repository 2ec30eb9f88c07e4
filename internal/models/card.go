package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ControlKind identifies which restriction a card control enforces.
type ControlKind string

const (
	ControlCategory  ControlKind = "category"
	ControlMerchant  ControlKind = "merchant"
	ControlMaxAmount ControlKind = "max_amount"
	ControlMinAmount ControlKind = "min_amount"
)

// Valid reports whether the kind is one of the four supported control types.
func (k ControlKind) Valid() bool {
	switch k {
	case ControlCategory, ControlMerchant, ControlMaxAmount, ControlMinAmount:
		return true
	}
	return false
}

// IsAmountKind reports whether the kind carries an amount threshold rather
// than a detail string.
func (k ControlKind) IsAmountKind() bool {
	return k == ControlMaxAmount || k == ControlMinAmount
}

// Card represents a payment card and its spending balance
type Card struct {
	ID             int64           `json:"id" db:"id"`
	CardNumber     string          `json:"card_number" db:"card_number"`
	CardholderName string          `json:"cardholder_name" db:"cardholder_name"`
	ExpirationDate time.Time       `json:"expiration_date" db:"expiration_date"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// CardControl is a per-card authorization rule. Detail is set for
// category/merchant kinds, Amount for max_amount/min_amount kinds.
// Controls are read-only during evaluation.
type CardControl struct {
	ID     int64               `json:"id" db:"id"`
	CardID int64               `json:"card_id" db:"card_id"`
	Kind   ControlKind         `json:"control_type" db:"control_type"`
	Detail string              `json:"detail,omitempty" db:"detail"`
	Amount decimal.NullDecimal `json:"amount,omitempty" db:"amount"`
}
