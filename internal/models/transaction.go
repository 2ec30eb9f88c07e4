package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable audit record of one authorization attempt.
// Once written it is never updated or deleted.
type Transaction struct {
	ID               int64           `json:"id" db:"id"`
	TransactionID    string          `json:"transaction_id" db:"transaction_id"`
	CardID           int64           `json:"card_id" db:"card_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Merchant         string          `json:"merchant" db:"merchant"`
	MerchantCategory string          `json:"merchant_category" db:"merchant_category"`
	Approved         bool            `json:"approved" db:"approved"`
	ReasonDeclined   *string         `json:"reason_declined" db:"reason_declined"`
	CreatedAt        time.Time       `json:"timestamp" db:"created_at"`
}
