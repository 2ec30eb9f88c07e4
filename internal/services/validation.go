package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// DeclinedResponse is the declined-shaped envelope used by the transaction
// submission path. Validation failures and unknown cards reuse it with a
// single-element reasons list.
type DeclinedResponse struct {
	Status  string   `json:"status"`
	Error   string   `json:"error"`
	Reasons []string `json:"reasons"`
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		for _, err := range validationErr.(validator.ValidationErrors) {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendDeclinedResponse sends the declined envelope with the given reasons.
func SendDeclinedResponse(w http.ResponseWriter, message string, statusCode int, reasons []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if len(reasons) == 0 {
		reasons = []string{"Unknown reason"}
	}

	json.NewEncoder(w).Encode(DeclinedResponse{
		Status:  "declined",
		Error:   message,
		Reasons: reasons,
	})
}
