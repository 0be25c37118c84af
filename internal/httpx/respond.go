package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/campuskart/api/internal/market"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrStatus maps domain sentinels onto HTTP statuses.
func ErrStatus(err error) int {
	switch {
	case errors.Is(err, market.ErrItemNotFound),
		errors.Is(err, market.ErrLineNotFound),
		errors.Is(err, market.ErrOrderNotFound),
		errors.Is(err, market.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrEmptyCart),
		errors.Is(err, market.ErrInvalidRating),
		errors.Is(err, market.ErrInvalidQuantity),
		errors.Is(err, market.ErrInvalidItem),
		errors.Is(err, market.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrNotBuyer):
		return http.StatusForbidden
	case errors.Is(err, market.ErrInsufficientStock),
		errors.Is(err, market.ErrInvalidCode):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code := ErrStatus(err)
	if code == http.StatusInternalServerError {
		// storage faults are logged, never silently swallowed or leaked
		log.Printf("internal error: %v", err)
		writeJSON(w, code, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
