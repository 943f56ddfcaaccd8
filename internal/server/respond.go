package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.respondJSON(w, statusFor(err), errorResponse{
		Code:    errors.GetCode(err),
		Message: err.Error(),
	})
}

// statusFor maps ledger and engine error codes to HTTP status codes.
// Anything unmapped is a server fault.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInsufficientFunds, errors.ErrCodeInsufficientShares:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnknownUser, errors.ErrCodeUnknownPortfolio,
		errors.ErrCodeUnknownTicker, errors.ErrCodePositionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateUsername, errors.ErrCodeDuplicatePortfolioName,
		errors.ErrCodeDuplicateTicker:
		return http.StatusConflict
	case errors.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case errors.ErrCodeInvalidAmount, errors.ErrCodeInvalidAction,
		errors.ErrCodeInvalidTradeRequest, errors.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	case errors.ErrCodePriceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "malformed request body", err)
	}

	return nil
}
