package authorization

import "github.com/cardguard/backend/internal/models"

// Reasons appended by the balance and status checks.
const (
	ReasonInsufficientFunds = "Insufficient funds"
	ReasonCardNotActive     = "Card is not active"
)

// Decision is the engine's output: the approval flag and the ordered list of
// failure reasons. Approved is true iff Reasons is empty.
type Decision struct {
	Approved bool
	Reasons  []string
}

// Authorize runs every check against the attempt and accumulates all
// failures; it never short-circuits, so a decline carries the full set of
// reasons. Order is deterministic: balance first, then card status, then the
// controls in their stored order. A single failing check declines the
// transaction regardless of how many others pass.
//
// Authorize does not mutate the card. The balance check is the single source
// of truth for the no-overdraft invariant: the recorder debits on approval
// without clamping at zero.
func Authorize(card models.Card, controls []models.CardControl, attempt Attempt) Decision {
	var reasons []string

	if card.Balance.LessThan(attempt.Amount) || card.Balance.IsZero() {
		reasons = append(reasons, ReasonInsufficientFunds)
	}

	if !card.IsActive {
		reasons = append(reasons, ReasonCardNotActive)
	}

	for _, ctl := range controls {
		if passed, reason := Evaluate(ctl, attempt); !passed {
			reasons = append(reasons, reason)
		}
	}

	return Decision{
		Approved: len(reasons) == 0,
		Reasons:  reasons,
	}
}
