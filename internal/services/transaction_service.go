package services

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cardguard/backend/internal/authorization"
	"github.com/cardguard/backend/internal/models"
)

type TransactionService struct {
	db         *sql.DB
	settlement *SettlementService
	validator  *ValidationHelper
}

// AuthorizationRequest is the transaction submission payload. The amount is
// a decimal string; it is parsed exactly, never through a float.
type AuthorizationRequest struct {
	Card             int64  `json:"card" validate:"required,gt=0"`
	Amount           string `json:"amount" validate:"required"`
	Merchant         string `json:"merchant" validate:"required,max=100"`
	MerchantCategory string `json:"merchant_category" validate:"required,max=50"`
}

func NewTransactionService(db *sql.DB, settlement *SettlementService) *TransactionService {
	return &TransactionService{
		db:         db,
		settlement: settlement,
		validator:  NewValidationHelper(),
	}
}

// SubmitTransaction authorizes and records a transaction
// @Summary Submit a transaction for authorization
// @Description Evaluate the card's balance, status and controls, record the attempt, and debit the balance on approval
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body AuthorizationRequest true "Transaction data"
// @Success 200 {object} object{status=string,message=string,transaction_id=string}
// @Failure 400 {object} DeclinedResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [post]
func (ts *TransactionService) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req AuthorizationRequest
	if err := dec.Decode(&req); err != nil {
		SendDeclinedResponse(w, "Invalid request body", http.StatusBadRequest, []string{"Invalid request body"})
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendDeclinedResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest,
			[]string{"Request body must only contain a single JSON object"})
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendDeclinedResponse(w, "Validation failed", http.StatusBadRequest, []string{err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		SendDeclinedResponse(w, "Invalid amount", http.StatusBadRequest, []string{"Invalid amount"})
		return
	}

	attempt := authorization.Attempt{
		Amount:           amount,
		Merchant:         req.Merchant,
		MerchantCategory: req.MerchantCategory,
	}

	// One SQL transaction spans read-balance, decide and write. The FOR
	// UPDATE lock on the card row serializes concurrent authorizations
	// against the same card and pins a consistent control snapshot.
	dbTx, err := ts.db.Begin()
	if err != nil {
		logrus.WithError(err).Error("Failed to begin transaction")
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}
	defer dbTx.Rollback()

	card, err := ts.lockCard(dbTx, req.Card)
	if err != nil {
		if err == sql.ErrNoRows {
			// No audit record for unknown cards; evaluation never ran.
			SendDeclinedResponse(w, "Card not found", http.StatusBadRequest, []string{"Card not found"})
			return
		}
		logrus.WithError(err).Error("Failed to load card")
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}

	controls, err := ts.fetchControls(dbTx, card.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to load card controls")
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}

	decision := authorization.Authorize(card, controls, attempt)

	txn, err := ts.record(dbTx, card, attempt, decision)
	if err != nil {
		logrus.WithError(err).Error("Failed to record transaction")
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}

	if err := dbTx.Commit(); err != nil {
		logrus.WithError(err).Error("Failed to commit transaction")
		SendErrorResponse(w, "Failed to process transaction", http.StatusInternalServerError, nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": txn.TransactionID,
		"card_id":        card.ID,
		"approved":       decision.Approved,
	}).Info("Transaction recorded")

	if decision.Approved {
		// Post-commit export; a queue failure never unwinds the
		// authorization.
		if err := ts.settlement.Enqueue(r.Context(), txn, card); err != nil {
			logrus.WithError(err).WithField("transaction_id", txn.TransactionID).
				Warn("Failed to queue transaction for settlement")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "approved",
			"message":        "Transaction approved",
			"transaction_id": txn.TransactionID,
		})
		return
	}

	SendDeclinedResponse(w, "Transaction declined", http.StatusBadRequest, decision.Reasons)
}

// ListTransactions returns the full audit trail
// @Summary List transactions
// @Description Retrieve all recorded authorization attempts, approved and declined
// @Tags transactions
// @Produce json
// @Success 200 {object} object{transactions=[]models.Transaction}
// @Failure 500 {object} ErrorResponse
// @Router /transactions [get]
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	rows, err := ts.db.Query(`
		SELECT id, transaction_id, card_id, amount, merchant, merchant_category,
		       approved, reason_declined, created_at
		FROM transactions
		ORDER BY id
	`)
	if err != nil {
		logrus.WithError(err).Error("Failed to list transactions")
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	transactions := []map[string]interface{}{}
	for rows.Next() {
		var (
			txn    models.Transaction
			reason sql.NullString
		)
		if err := rows.Scan(&txn.ID, &txn.TransactionID, &txn.CardID, &txn.Amount,
			&txn.Merchant, &txn.MerchantCategory, &txn.Approved, &reason, &txn.CreatedAt); err != nil {
			SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
			return
		}

		view := map[string]interface{}{
			"id":                txn.ID,
			"transaction_id":    txn.TransactionID,
			"card_id":           txn.CardID,
			"amount":            txn.Amount,
			"merchant":          txn.Merchant,
			"merchant_category": txn.MerchantCategory,
			"approved":          txn.Approved,
			"reason_declined":   nil,
			"timestamp":         txn.CreatedAt.Format(time.RFC3339),
		}
		if !txn.Approved && reason.Valid {
			view["reason_declined"] = reason.String
		}
		transactions = append(transactions, view)
	}

	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"transactions": transactions})
}

// lockCard reads the card row under FOR UPDATE, holding the lock until the
// surrounding transaction commits or rolls back.
func (ts *TransactionService) lockCard(dbTx *sql.Tx, cardID int64) (models.Card, error) {
	var card models.Card
	err := dbTx.QueryRow(`
		SELECT id, card_number, cardholder_name, expiration_date, is_active, balance
		FROM cards
		WHERE id = $1
		FOR UPDATE
	`, cardID).Scan(&card.ID, &card.CardNumber, &card.CardholderName,
		&card.ExpirationDate, &card.IsActive, &card.Balance)
	return card, err
}

func (ts *TransactionService) fetchControls(dbTx *sql.Tx, cardID int64) ([]models.CardControl, error) {
	rows, err := dbTx.Query(`
		SELECT id, card_id, control_type, detail, amount
		FROM card_controls
		WHERE card_id = $1
		ORDER BY id
	`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var controls []models.CardControl
	for rows.Next() {
		var (
			ctl    models.CardControl
			detail sql.NullString
		)
		if err := rows.Scan(&ctl.ID, &ctl.CardID, &ctl.Kind, &detail, &ctl.Amount); err != nil {
			return nil, err
		}
		ctl.Detail = detail.String
		controls = append(controls, ctl)
	}

	return controls, rows.Err()
}

// record writes the audit row and, on approval only, debits the card
// balance. Both writes ride the caller's transaction: either both land or
// neither does. The transaction row is written for declines too.
func (ts *TransactionService) record(dbTx *sql.Tx, card models.Card, attempt authorization.Attempt, decision authorization.Decision) (models.Transaction, error) {
	txn := models.Transaction{
		TransactionID:    uuid.New().String(),
		CardID:           card.ID,
		Amount:           attempt.Amount,
		Merchant:         attempt.Merchant,
		MerchantCategory: attempt.MerchantCategory,
		Approved:         decision.Approved,
	}

	reason := sql.NullString{}
	if !decision.Approved {
		joined := strings.Join(decision.Reasons, ", ")
		reason = sql.NullString{String: joined, Valid: true}
		txn.ReasonDeclined = &joined
	}

	err := dbTx.QueryRow(`
		INSERT INTO transactions (transaction_id, card_id, amount, merchant, merchant_category, approved, reason_declined)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, txn.TransactionID, txn.CardID, txn.Amount, txn.Merchant, txn.MerchantCategory,
		txn.Approved, reason).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return models.Transaction{}, err
	}

	if decision.Approved {
		// The insufficient-funds check already ruled out overdraft, so
		// the debit is unconditional here.
		_, err = dbTx.Exec(`
			UPDATE cards
			SET balance = balance - $1, updated_at = NOW()
			WHERE id = $2
		`, txn.Amount, card.ID)
		if err != nil {
			return models.Transaction{}, err
		}
	}

	return txn, nil
}
