package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/medtour-leads/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError renders the use case error taxonomy. Storage details
// were already logged by the use case and are not exposed.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "internal error, please retry")
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "invalid JSON body")
		return false
	}
	return true
}
