package services

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cardguard/backend/internal/models"
)

type ControlService struct {
	db        *sql.DB
	validator *ValidationHelper
}

// ControlCreateRequest represents a card control creation request. Detail is
// required for category/merchant controls, amount for the amount bounds.
type ControlCreateRequest struct {
	CardID      int64            `json:"card_id" validate:"required,gt=0"`
	ControlType string           `json:"control_type" validate:"required"`
	Detail      string           `json:"detail,omitempty" validate:"max=100"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

func NewControlService(db *sql.DB) *ControlService {
	return &ControlService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// CreateControl attaches a control to a card
// @Summary Create a card control
// @Description Attach a spending control to a card; the control payload is validated per control type
// @Tags card-controls
// @Accept json
// @Produce json
// @Param control body ControlCreateRequest true "Control data"
// @Success 201 {object} object{message=string,control_id=int}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /card-controls [post]
func (ctls *ControlService) CreateControl(w http.ResponseWriter, r *http.Request) {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ControlCreateRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := ctls.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	kind := models.ControlKind(req.ControlType)
	if !kind.Valid() {
		SendErrorResponse(w, "Unsupported control type", http.StatusBadRequest, nil)
		return
	}

	// Per-kind payload checks. Rejecting bad payloads here keeps the
	// evaluator's silent-decline default unreachable for new rows.
	if kind.IsAmountKind() {
		if req.Amount == nil {
			SendErrorResponse(w, "Amount is required for amount controls", http.StatusBadRequest, nil)
			return
		}
		if req.Amount.IsNegative() {
			SendErrorResponse(w, "Amount must not be negative", http.StatusBadRequest, nil)
			return
		}
	} else if req.Detail == "" {
		SendErrorResponse(w, "Detail is required for category and merchant controls", http.StatusBadRequest, nil)
		return
	}

	var exists bool
	if err := ctls.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM cards WHERE id = $1)`, req.CardID).Scan(&exists); err != nil {
		logrus.WithError(err).Error("Failed to look up card")
		SendErrorResponse(w, "Failed to create card control", http.StatusInternalServerError, nil)
		return
	}
	if !exists {
		SendErrorResponse(w, "Card not found", http.StatusNotFound, nil)
		return
	}

	detail := sql.NullString{String: req.Detail, Valid: req.Detail != ""}
	amount := decimal.NullDecimal{}
	if req.Amount != nil {
		amount = decimal.NullDecimal{Decimal: *req.Amount, Valid: true}
	}

	var controlID int64
	err := ctls.db.QueryRow(`
		INSERT INTO card_controls (card_id, control_type, detail, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.CardID, string(kind), detail, amount).Scan(&controlID)

	if err != nil {
		logrus.WithError(err).Error("Failed to create card control")
		SendErrorResponse(w, "Failed to create card control", http.StatusInternalServerError, nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"control_id":   controlID,
		"card_id":      req.CardID,
		"control_type": kind,
	}).Info("Card control created")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Card control created successfully",
		"control_id": controlID,
	})
}

// ListControls returns all card controls
// @Summary List card controls
// @Description Retrieve all controls across cards
// @Tags card-controls
// @Produce json
// @Success 200 {object} object{card_controls=[]models.CardControl}
// @Failure 500 {object} ErrorResponse
// @Router /card-controls [get]
func (ctls *ControlService) ListControls(w http.ResponseWriter, r *http.Request) {
	rows, err := ctls.db.Query(`
		SELECT id, card_id, control_type, detail, amount
		FROM card_controls
		ORDER BY id
	`)
	if err != nil {
		logrus.WithError(err).Error("Failed to list card controls")
		SendErrorResponse(w, "Failed to fetch card controls", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	controls := []map[string]interface{}{}
	for rows.Next() {
		var (
			ctl    models.CardControl
			detail sql.NullString
		)
		if err := rows.Scan(&ctl.ID, &ctl.CardID, &ctl.Kind, &detail, &ctl.Amount); err != nil {
			SendErrorResponse(w, "Failed to fetch card controls", http.StatusInternalServerError, nil)
			return
		}

		view := map[string]interface{}{
			"id":           ctl.ID,
			"card_id":      ctl.CardID,
			"control_type": ctl.Kind,
			"detail":       nil,
			"amount":       nil,
		}
		if detail.Valid {
			view["detail"] = detail.String
		}
		if ctl.Amount.Valid {
			view["amount"] = ctl.Amount.Decimal
		}
		controls = append(controls, view)
	}

	if err := rows.Err(); err != nil {
		SendErrorResponse(w, "Failed to fetch card controls", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"card_controls": controls})
}

// DeleteControl removes a card control
// @Summary Delete a card control
// @Description Delete one control by its id
// @Tags card-controls
// @Produce json
// @Param controlID path int true "Control ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} ErrorResponse
// @Router /card-controls/{controlID} [delete]
func (ctls *ControlService) DeleteControl(w http.ResponseWriter, r *http.Request) {
	controlID, err := strconv.ParseInt(chi.URLParam(r, "controlID"), 10, 64)
	if err != nil {
		SendErrorResponse(w, "Invalid control id", http.StatusBadRequest, nil)
		return
	}

	result, err := ctls.db.Exec(`DELETE FROM card_controls WHERE id = $1`, controlID)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete card control")
		SendErrorResponse(w, "Failed to delete card control", http.StatusInternalServerError, nil)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		SendErrorResponse(w, "Failed to delete card control", http.StatusInternalServerError, nil)
		return
	}
	if affected == 0 {
		SendErrorResponse(w, "Card control not found", http.StatusNotFound, nil)
		return
	}

	logrus.WithField("control_id", controlID).Info("Card control deleted")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Card control deleted successfully"})
}
