package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies. Uploads use their own limit.
const maxBodyBytes = 1 << 20

// writeJSON writes data as a JSON response.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err to a status and writes {"error": message}. Server-side
// failures are logged and their details hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		message = http.StatusText(status)
	case status == http.StatusBadGateway:
		logger.Warn("upstream failure",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, logger, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON body into v and runs struct validation. Both
// failures are reported as *ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("must be at most %d bytes", maxErr.Limit)}
		case errors.Is(err, io.EOF):
			return &ErrValidation{Field: "body", Message: "is required"}
		default:
			return &ErrValidation{Field: "body", Message: "invalid JSON"}
		}
	}
	if err := types.Validate(v); err != nil {
		return validationError(err)
	}
	return nil
}
