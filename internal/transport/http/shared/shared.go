// Package shared holds the JSON envelope helpers every handler uses, so error
// translation stays consistent across the transport layer.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "escolar/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the JSON error envelope. Unknown
// errors collapse to a 500 with no detail leaked.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(dErrors.CodeInternal)

	var derr *dErrors.Error
	if errors.As(err, &derr) {
		status = dErrors.ToHTTPStatus(derr.Code)
		code = string(derr.Code)
	}

	WriteJSON(w, status, map[string]string{"error": code})
}
