package services

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardguard/backend/internal/config"
)

func newTransactionService(t *testing.T) (*TransactionService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	settlement := NewSettlementService(nil, config.LoadSettlementConfig())
	return NewTransactionService(db, settlement), mock, db
}

func cardColumns() []string {
	return []string{"id", "card_number", "cardholder_name", "expiration_date", "is_active", "balance"}
}

func controlColumns() []string {
	return []string{"id", "card_id", "control_type", "detail", "amount"}
}

func TestTransactionService_SubmitTransaction_Approved(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	expiry := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, card_number, cardholder_name, expiration_date, is_active, balance FROM cards WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cardColumns()).
			AddRow(int64(1), "1111111111111111", "Alice Smith", expiry, true, "150.00"))
	mock.ExpectQuery("SELECT id, card_id, control_type, detail, amount FROM card_controls WHERE card_id = \\$1 ORDER BY id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(controlColumns()).
			AddRow(int64(1), int64(1), "category", "food", nil))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(sqlmock.AnyArg(), int64(1), sqlmock.AnyArg(), "Acme Grocers", "food", true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectExec("UPDATE cards SET balance = balance - \\$1").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"card": 1, "amount": "50", "merchant": "Acme Grocers", "merchant_category": "food"}`
	r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	service.SubmitTransaction(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "approved", response["status"])
	assert.Equal(t, "Transaction approved", response["message"])
	assert.NotEmpty(t, response["transaction_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_SubmitTransaction_DeclinedByControl(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	expiry := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cards WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cardColumns()).
			AddRow(int64(1), "1111111111111111", "Alice Smith", expiry, true, "500.00"))
	mock.ExpectQuery("FROM card_controls WHERE card_id = \\$1 ORDER BY id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(controlColumns()).
			AddRow(int64(1), int64(1), "max_amount", nil, "150"))
	// The audit record is written for declines too; no balance update follows.
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(sqlmock.AnyArg(), int64(1), sqlmock.AnyArg(), "Acme Grocers", "food", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), time.Now()))
	mock.ExpectCommit()

	body := `{"card": 1, "amount": "200", "merchant": "Acme Grocers", "merchant_category": "food"}`
	r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	service.SubmitTransaction(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response DeclinedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "declined", response.Status)
	assert.Equal(t, "Transaction declined", response.Error)
	require.Len(t, response.Reasons, 1)
	assert.Equal(t, "Transaction amount '200' exceeds the maximum allowed amount of '150'.", response.Reasons[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_SubmitTransaction_AccumulatesAllReasons(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	expiry := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cards WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cardColumns()).
			AddRow(int64(1), "1111111111111111", "Alice Smith", expiry, false, "0"))
	mock.ExpectQuery("FROM card_controls WHERE card_id = \\$1 ORDER BY id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(controlColumns()).
			AddRow(int64(1), int64(1), "category", "food", nil))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(sqlmock.AnyArg(), int64(1), sqlmock.AnyArg(), "Acme Grocers", "travel", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), time.Now()))
	mock.ExpectCommit()

	body := `{"card": 1, "amount": "50", "merchant": "Acme Grocers", "merchant_category": "travel"}`
	r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	service.SubmitTransaction(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response DeclinedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{
		"Insufficient funds",
		"Card is not active",
		"Transaction category 'travel' does not match required category 'food'.",
	}, response.Reasons)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_SubmitTransaction_CardNotFound(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cards WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	body := `{"card": 42, "amount": "50", "merchant": "Acme", "merchant_category": "food"}`
	r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	service.SubmitTransaction(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response DeclinedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "declined", response.Status)
	assert.Equal(t, []string{"Card not found"}, response.Reasons)

	// Unknown card never produces an audit record.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_SubmitTransaction_InvalidInput(t *testing.T) {
	service, _, db := newTransactionService(t)
	defer db.Close()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `not json`},
		{"missing fields", `{"card": 1}`},
		{"unknown fields", `{"card": 1, "amount": "50", "merchant": "A", "merchant_category": "food", "extra": true}`},
		{"non-numeric amount", `{"card": 1, "amount": "abc", "merchant": "A", "merchant_category": "food"}`},
		{"negative amount", `{"card": 1, "amount": "-5", "merchant": "A", "merchant_category": "food"}`},
		{"zero amount", `{"card": 1, "amount": "0", "merchant": "A", "merchant_category": "food"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			service.SubmitTransaction(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response DeclinedResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "declined", response.Status)
			assert.Len(t, response.Reasons, 1)
		})
	}
}

func TestTransactionService_SubmitTransaction_PersistenceFailure(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	expiry := time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM cards WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cardColumns()).
			AddRow(int64(1), "1111111111111111", "Alice Smith", expiry, true, "150.00"))
	mock.ExpectQuery("FROM card_controls WHERE card_id = \\$1 ORDER BY id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(controlColumns()))
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	body := `{"card": 1, "amount": "50", "merchant": "Acme", "merchant_category": "food"}`
	r := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	service.SubmitTransaction(w, r)

	// A failed write must surface as an internal error, never as approval.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "approved")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionService_ListTransactions(t *testing.T) {
	service, mock, db := newTransactionService(t)
	defer db.Close()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "transaction_id", "card_id", "amount", "merchant",
		"merchant_category", "approved", "reason_declined", "created_at"}

	mock.ExpectQuery("SELECT id, transaction_id, card_id, amount, merchant, merchant_category, approved, reason_declined, created_at FROM transactions ORDER BY id").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), "0d06ba9a-3d7d-4f6a-9f3a-0a4c8f4a2b11", int64(1), "50", "Acme Grocers", "food", true, nil, now).
			AddRow(int64(2), "5e3f5c83-bc19-4d5f-93ff-9a1f34f87a22", int64(1), "200", "Acme Grocers", "food", false, "Insufficient funds", now))

	r := httptest.NewRequest("GET", "/transactions", nil)
	w := httptest.NewRecorder()

	service.ListTransactions(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Transactions []map[string]interface{} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Transactions, 2)

	assert.Equal(t, true, response.Transactions[0]["approved"])
	assert.Nil(t, response.Transactions[0]["reason_declined"])
	assert.Equal(t, "2026-08-01T12:00:00Z", response.Transactions[0]["timestamp"])

	assert.Equal(t, false, response.Transactions[1]["approved"])
	assert.Equal(t, "Insufficient funds", response.Transactions[1]["reason_declined"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
