package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

type errorResponse struct {
	Error   bool          `json:"error"`
	Code    cgerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func respondJSON(w http.ResponseWriter, logger *log.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "err", err)
	}
}

// respondError writes err as JSON with a status derived from its code.
func respondError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	code := cgerrors.GetCode(err)
	if code == "" {
		code = cgerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "err", err)
	}
	respondJSON(w, logger, status, errorResponse{
		Error:   true,
		Code:    code,
		Message: cgerrors.UserMessage(err),
	})
}

func statusFor(err error) int {
	if errors.Is(err, errSessionLimit) {
		return http.StatusServiceUnavailable
	}
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeNotFound, cgerrors.ErrCodeUnknownCommand:
		return http.StatusNotFound
	case cgerrors.ErrCodeDanglingLink, cgerrors.ErrCodeMissingNode:
		return http.StatusUnprocessableEntity
	case cgerrors.ErrCodeInvalidInput, cgerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
