package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cafe-storefront/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithJSON sends data as a JSON response.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func statusFor(code services.Code) int {
	switch code {
	case services.CodeInvalidArgument:
		return http.StatusBadRequest
	case services.CodeFailedPrecondition:
		return http.StatusConflict
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondErr maps a service error to its status. Internal errors are
// logged and hidden from the client.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	code := services.ErrorCode(err)
	msg := err.Error()
	switch {
	case code == services.CodeInternal:
		s.log.Error("request failed", zap.Error(err))
		msg = "Something went wrong. Please try again."
	case errors.Is(err, services.ErrNotFound):
		msg = "Not found"
	}
	RespondWithError(w, statusFor(code), msg)
}

const (
	maxBodyBytes  = 10 << 20
	maxSessionLen = 128
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// session returns the caller's session id, issuing one when absent.
func session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" || len(id) > maxSessionLen {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return id
}
