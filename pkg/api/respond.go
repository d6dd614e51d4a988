package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/go-chi/chi/v5"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// DecodeJSON reads the request body into v and answers 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteJSON(w, http.StatusBadRequest, Error{
			Error: fmt.Sprintf("Invalid request body: %v", err),
			Kind:  string(apperr.KindValidation),
			Code:  "invalid_body",
		})
		return false
	}
	return true
}

// ParamErrorHandler answers parameter binding failures with an Error body.
// It is passed as ChiServerOptions.ErrorHandlerFunc.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	WriteJSON(w, http.StatusBadRequest, Error{
		Error: err.Error(),
		Kind:  string(apperr.KindValidation),
		Code:  "invalid_parameter",
	})
}

// NewHandler mounts every route of si on r with JSON parameter errors.
func NewHandler(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: ParamErrorHandler,
	})
}

// StatusOf maps an error kind onto an HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInsufficientFunds, apperr.KindInactiveCampaign:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the status and body of err. The cause of a system
// error is never sent to the client.
func WriteError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	WriteJSON(w, status, body)
}

// WriteOutcomeError is WriteError for calls whose responses carry a success
// flag.
func WriteOutcomeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	WriteJSON(w, status, OutcomeError{
		Success: false,
		Error:   body.Error,
		Kind:    body.Kind,
		Code:    body.Code,
	})
}

func errorBody(err error) (int, Error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, Error{
			Error: "Internal error",
			Kind:  string(apperr.KindSystem),
			Code:  apperr.CodeSystemError,
		}
	}
	return StatusOf(appErr.Kind), Error{
		Error: appErr.Message,
		Kind:  string(appErr.Kind),
		Code:  appErr.Code,
	}
}
