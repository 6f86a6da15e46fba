package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appErrors "github.com/unclebandit/crm-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *appErrors.ValidationError
	switch {
	case errors.As(err, &ve), appErrors.IsImport(err):
		return http.StatusBadRequest
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// errorMessage returns what the client is shown for err.
func errorMessage(err error) string {
	var ve *appErrors.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, appErrors.ErrEmptyImport):
		return "File is empty"
	case statusFor(err) == http.StatusInternalServerError:
		return "internal error"
	}
	return err.Error()
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
