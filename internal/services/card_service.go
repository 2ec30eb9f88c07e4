package services

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cardguard/backend/internal/models"
)

type CardService struct {
	db        *sql.DB
	validator *ValidationHelper
}

// CardCreateRequest represents a card issuance request. is_active defaults
// to true and balance to 0 when omitted.
type CardCreateRequest struct {
	CardholderName string           `json:"cardholder_name" validate:"required,max=100"`
	ExpirationDate string           `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	IsActive       *bool            `json:"is_active"`
	Balance        *decimal.Decimal `json:"balance"`
}

func NewCardService(db *sql.DB) *CardService {
	return &CardService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// CreateCard issues a new card
// @Summary Issue a new card
// @Description Create a card; the card number is assigned from a monotonic sequence
// @Tags cards
// @Accept json
// @Produce json
// @Param card body CardCreateRequest true "Card data"
// @Success 201 {object} object{message=string,card_id=int}
// @Failure 400 {object} ErrorResponse
// @Router /cards [post]
func (cs *CardService) CreateCard(w http.ResponseWriter, r *http.Request) {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CardCreateRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := cs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		SendErrorResponse(w, "Invalid expiration date", http.StatusBadRequest, nil)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}
	if balance.IsNegative() {
		SendErrorResponse(w, "Balance must not be negative", http.StatusBadRequest, nil)
		return
	}

	var cardID int64
	var cardNumber string
	err = cs.db.QueryRow(`
		INSERT INTO cards (card_number, cardholder_name, expiration_date, is_active, balance)
		VALUES (nextval('card_number_seq')::text, $1, $2, $3, $4)
		RETURNING id, card_number
	`, req.CardholderName, expiration, isActive, balance).Scan(&cardID, &cardNumber)

	if err != nil {
		logrus.WithError(err).Error("Failed to create card")
		SendErrorResponse(w, "Failed to create card", http.StatusInternalServerError, nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"card_id":     cardID,
		"card_number": cardNumber,
	}).Info("Card created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Card created successfully",
		"card_id": cardID,
	})
}

// ListCards returns all cards
// @Summary List cards
// @Description Retrieve all issued cards
// @Tags cards
// @Produce json
// @Success 200 {object} object{cards=[]models.Card}
// @Failure 500 {object} ErrorResponse
// @Router /cards [get]
func (cs *CardService) ListCards(w http.ResponseWriter, r *http.Request) {
	rows, err := cs.db.Query(`
		SELECT id, card_number, cardholder_name, expiration_date, is_active, balance
		FROM cards
		ORDER BY id
	`)
	if err != nil {
		logrus.WithError(err).Error("Failed to list cards")
		SendErrorResponse(w, "Failed to fetch cards", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	cards := []map[string]interface{}{}
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.CardNumber, &card.CardholderName,
			&card.ExpirationDate, &card.IsActive, &card.Balance); err != nil {
			SendErrorResponse(w, "Failed to fetch cards", http.StatusInternalServerError, nil)
			return
		}
		cards = append(cards, cardView(card))
	}

	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch cards", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"cards": cards})
}

// GetCard retrieves a single card
// @Summary Get card details
// @Description Retrieve one card by its id
// @Tags cards
// @Produce json
// @Param cardID path int true "Card ID"
// @Success 200 {object} models.Card
// @Failure 404 {object} ErrorResponse
// @Router /cards/{cardID} [get]
func (cs *CardService) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		SendErrorResponse(w, "Invalid card id", http.StatusBadRequest, nil)
		return
	}

	var card models.Card
	err = cs.db.QueryRow(`
		SELECT id, card_number, cardholder_name, expiration_date, is_active, balance
		FROM cards
		WHERE id = $1
	`, cardID).Scan(&card.ID, &card.CardNumber, &card.CardholderName,
		&card.ExpirationDate, &card.IsActive, &card.Balance)

	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Card not found", http.StatusNotFound, nil)
		} else {
			logrus.WithError(err).Error("Failed to fetch card")
			SendErrorResponse(w, "Failed to fetch card", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cardView(card))
}

func cardView(card models.Card) map[string]interface{} {
	return map[string]interface{}{
		"id":              card.ID,
		"card_number":     card.CardNumber,
		"cardholder_name": card.CardholderName,
		"expiration_date": card.ExpirationDate.Format("2006-01-02"),
		"is_active":       card.IsActive,
		"balance":         card.Balance,
	}
}
