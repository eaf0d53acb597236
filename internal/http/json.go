package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/atelierweb/atelier-api/internal/errors"
)

// apiError is the error half of the response envelope. Details carries
// per-field validation messages when present.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// envelope is the uniform response shape for every JSON endpoint.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_payload",
			Message: "Requête invalide.",
		})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteSuccess writes the success envelope around the given data.
func WriteSuccess(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, envelope{Success: true, Data: data})
}

// ErrorParams groups parameters for WriteError to adhere to the ≤3 params guideline.
// Message is the user-facing text; internal error detail never travels in it.
type ErrorParams struct {
	Code    int
	ErrCode string
	Message string
	Details map[string]string
}

// WriteError writes the error envelope using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, envelope{
		Success: false,
		Error: &apiError{
			Code:    p.ErrCode,
			Message: p.Message,
			Details: p.Details,
		},
	})
}

// WriteDBError classifies a data-layer failure and writes the closest HTTP
// shape. Constraint violations surface as client errors with their French
// message; anything unrecognized falls back to a generic 500.
func WriteDBError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(apperrors.MapDBError(err), &appErr) {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Message: "Une erreur est survenue. Merci de réessayer plus tard.",
		})
		return
	}

	params := ErrorParams{
		ErrCode: string(appErr.Code),
		Message: appErr.Message,
	}
	if appErr.Field != "" {
		params.Details = map[string]string{appErr.Field: appErr.Message}
	}

	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		params.Code = http.StatusNotFound
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		params.Code = http.StatusConflict
	case apperrors.ErrCodeValidation:
		params.Code = http.StatusBadRequest
	case apperrors.ErrCodeTimeout:
		params.Code = http.StatusGatewayTimeout
	default:
		params.Code = http.StatusInternalServerError
		params.ErrCode = "internal_error"
		params.Message = "Une erreur est survenue. Merci de réessayer plus tard."
	}

	WriteError(w, params)
}
