package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pedidos-api/internal/entities"
)

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeBodyStrict rejects bodies that carry fields the target does not know.
func DecodeBodyStrict(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ErrorResponse is the error body every endpoint produces.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// StatusFromCode is the single place a domain error code turns into an HTTP
// status. Unknown codes fall through to 500.
func StatusFromCode(code entities.ErrorCode) int {
	switch code {
	case entities.CodeNotFound:
		return http.StatusNotFound
	case entities.CodeDuplicateOrder:
		return http.StatusConflict
	case entities.CodeValidation, entities.CodeInvalidItemID:
		return http.StatusBadRequest
	case entities.CodeUnauthorized:
		return http.StatusUnauthorized
	case entities.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteDomainError renders err. Domain errors keep their code and message,
// anything else is masked as an internal error.
func WriteDomainError(w http.ResponseWriter, err error) error {
	var domainErr *entities.Error
	if errors.As(err, &domainErr) {
		return WriteJSON(w, ErrorResponse{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, StatusFromCode(domainErr.Code))
	}
	return WriteJSON(w, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	}, http.StatusInternalServerError)
}
