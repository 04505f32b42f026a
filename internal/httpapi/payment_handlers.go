package httpapi

import (
	"errors"
	"net/http"
	"time"

	"givechain.org/internal/chain"
	"givechain.org/internal/identity"
	"givechain.org/internal/trigger"
)

type historyResponse struct {
	Items any       `json:"items"`
	AsOf  time.Time `json:"as_of"`
}

func (a *API) triggerRule(w http.ResponseWriter, r *http.Request, userID, ruleID int64) {
	if a.trigger == nil {
		writeError(w, r, http.StatusServiceUnavailable, "payment execution disabled")
		return
	}

	p, err := a.trigger.Trigger(r.Context(), userID, ruleID)
	if err != nil {
		handleTriggerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func handleTriggerError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *chain.RejectedError
	switch {
	case errors.Is(err, trigger.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &rejected):
		writeError(w, r, http.StatusBadGateway, rejected.Error())
	case errors.Is(err, chain.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, chain.ErrInvalidKey), errors.Is(err, chain.ErrInvalidAmount), errors.Is(err, chain.ErrSubWeiAmount):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	items, err := a.payments.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}
