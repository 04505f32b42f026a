package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"givechain.org/internal/identity"
	"givechain.org/internal/registry"
)

type createMethodRequest struct {
	Type       string `json:"type"`
	PrivateKey string `json:"private_key"`
}

type methodView struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type createFoundationRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PaymentAddress string `json:"payment_address"`
}

type createRuleRequest struct {
	PaymentMethodID int64  `json:"payment_method_id"`
	FoundationID    int64  `json:"foundation_id"`
	Amount          string `json:"amount"`
}

// methodToView projects a payment method for API output, deriving the
// sending address from the stored key. Key material itself never leaves
// the service.
func (a *API) methodToView(m registry.PaymentMethod) methodView {
	v := methodView{
		ID:        m.ID,
		Type:      string(m.Type),
		CreatedAt: m.CreatedAt,
	}
	if a.gateway != nil {
		if account, err := a.gateway.DeriveAccount(m.Key); err == nil {
			v.Address = account.Address
		}
	}
	return v
}

func (a *API) handleMethodsCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.listMethods(w, r, userID)
	case http.MethodPost:
		a.createMethod(w, r, userID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createMethod(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createMethodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := a.registry.CreatePaymentMethod(r.Context(), userID, registry.MethodType(strings.ToUpper(strings.TrimSpace(req.Type))), req.PrivateKey)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	a.audit(r.Context(), "registry.method.create", map[string]any{
		"method_id": m.ID,
		"type":      string(m.Type),
	})

	w.Header().Set("Location", "/v1/payments/methods/"+strconv.FormatInt(m.ID, 10))
	writeJSON(w, http.StatusCreated, a.methodToView(m))
}

func (a *API) listMethods(w http.ResponseWriter, r *http.Request, userID int64) {
	list, err := a.registry.ListPaymentMethods(r.Context(), userID)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	views := make([]methodView, 0, len(list))
	for _, m := range list {
		views = append(views, a.methodToView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (a *API) handleMethodResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(strings.TrimPrefix(r.URL.Path, "/v1/payments/methods/"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := a.registry.GetPaymentMethod(r.Context(), userID, id)
		if err != nil {
			handleRegistryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a.methodToView(m))
	case http.MethodDelete:
		if err := a.registry.DeletePaymentMethod(r.Context(), userID, id); err != nil {
			handleRegistryError(w, r, err)
			return
		}
		a.audit(r.Context(), "registry.method.delete", map[string]any{"method_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleFoundationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := a.registry.ListFoundations(r.Context())
		if err != nil {
			handleRegistryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	case http.MethodPost:
		a.createFoundation(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createFoundation(w http.ResponseWriter, r *http.Request) {
	var req createFoundationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	f, err := a.registry.CreateFoundation(r.Context(), req.Name, req.Description, req.PaymentAddress)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	a.audit(r.Context(), "registry.foundation.create", map[string]any{
		"foundation_id": f.ID,
		"name":          f.Name,
	})

	w.Header().Set("Location", "/v1/foundations/"+strconv.FormatInt(f.ID, 10))
	writeJSON(w, http.StatusCreated, f)
}

func (a *API) handleFoundationResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(strings.TrimPrefix(r.URL.Path, "/v1/foundations/"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	f, err := a.registry.GetFoundation(r.Context(), id)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (a *API) handleRulesCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := a.registry.ListPaymentRules(r.Context(), userID)
		if err != nil {
			handleRegistryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	case http.MethodPost:
		a.createRule(w, r, userID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) createRule(w http.ResponseWriter, r *http.Request, userID int64) {
	var req createRuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := a.registry.CreatePaymentRule(r.Context(), userID, req.PaymentMethodID, req.FoundationID, req.Amount)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	a.audit(r.Context(), "registry.rule.create", map[string]any{
		"rule_id":       rule.ID,
		"method_id":     rule.PaymentMethodID,
		"foundation_id": rule.FoundationID,
		"amount":        rule.Amount,
	})

	w.Header().Set("Location", "/v1/payments/rules/"+strconv.FormatInt(rule.ID, 10))
	writeJSON(w, http.StatusCreated, rule)
}

func (a *API) handleRuleResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/payments/rules/")
	if raw, found := strings.CutSuffix(path, "/trigger"); found {
		id, ok := pathID(raw)
		if !ok {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.triggerRule(w, r, userID, id)
		return
	}

	id, ok := pathID(path)
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, err := a.registry.GetPaymentRule(r.Context(), userID, id)
		if err != nil {
			handleRegistryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	case http.MethodDelete:
		if err := a.registry.DeletePaymentRule(r.Context(), userID, id); err != nil {
			handleRegistryError(w, r, err)
			return
		}
		a.audit(r.Context(), "registry.rule.delete", map[string]any{"rule_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func pathID(raw string) (int64, bool) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func handleRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidType),
		errors.Is(err, registry.ErrInvalidKeyMaterial),
		errors.Is(err, registry.ErrInvalidAddress),
		errors.Is(err, registry.ErrInvalidAmount),
		errors.Is(err, registry.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, registry.ErrPaymentMethodNotFound),
		errors.Is(err, registry.ErrFoundationNotFound),
		errors.Is(err, registry.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrInUse):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
