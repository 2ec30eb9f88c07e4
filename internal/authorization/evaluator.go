// Package authorization implements the card authorization decision core:
// pure control evaluation and the engine that folds balance, status and
// control checks into a single decision. It has no I/O; callers supply the
// card snapshot and control list and persist the outcome themselves.
package authorization

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cardguard/backend/internal/models"
)

// Attempt is the proposed transaction under evaluation.
type Attempt struct {
	Amount           decimal.Decimal
	Merchant         string
	MerchantCategory string
}

// Evaluate applies a single control to an attempt. It is pure and
// deterministic: the same (control, attempt) pair always yields the same
// result, and controls carry no ordering dependency between each other.
func Evaluate(ctl models.CardControl, attempt Attempt) (passed bool, reason string) {
	switch ctl.Kind {
	case models.ControlCategory:
		if attempt.MerchantCategory == ctl.Detail {
			return true, ""
		}
		return false, fmt.Sprintf("Transaction category '%s' does not match required category '%s'.",
			attempt.MerchantCategory, ctl.Detail)

	case models.ControlMerchant:
		if attempt.Merchant == ctl.Detail {
			return true, ""
		}
		return false, fmt.Sprintf("Transaction merchant '%s' does not match required merchant '%s'.",
			attempt.Merchant, ctl.Detail)

	case models.ControlMaxAmount:
		if attempt.Amount.LessThanOrEqual(ctl.Amount.Decimal) {
			return true, ""
		}
		return false, fmt.Sprintf("Transaction amount '%s' exceeds the maximum allowed amount of '%s'.",
			attempt.Amount, ctl.Amount.Decimal)

	case models.ControlMinAmount:
		if attempt.Amount.GreaterThanOrEqual(ctl.Amount.Decimal) {
			return true, ""
		}
		return false, fmt.Sprintf("Transaction amount '%s' is less than the minimum required amount of '%s'.",
			attempt.Amount, ctl.Amount.Decimal)
	}

	// Unsupported kinds fail without a reason. Creation-time validation
	// rejects them, so this only fires for legacy rows.
	return false, ""
}
