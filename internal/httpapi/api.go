// Package httpapi exposes the service over HTTP: identity, payment
// configuration, rule triggering and the live payment stream.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"givechain.org/internal/audit"
	"givechain.org/internal/chain"
	"givechain.org/internal/identity"
	"givechain.org/internal/obs"
	"givechain.org/internal/payments"
	"givechain.org/internal/registry"
	"givechain.org/internal/stream"
	"givechain.org/internal/trigger"
)

// ReadyProbe reports readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	identity *identity.Service
	registry *registry.Service
	payments *payments.Service
	trigger  *trigger.Engine
	gateway  chain.Gateway
	stream   *stream.Stream
}

// Deps carries the services the API fronts. Stream may be nil, which
// disables the SSE endpoint.
type Deps struct {
	Identity *identity.Service
	Registry *registry.Service
	Payments *payments.Service
	Trigger  *trigger.Engine
	Gateway  chain.Gateway
	Stream   *stream.Stream
}

func New(rp ReadyProbe, version string, deps Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		identity:   deps.Identity,
		registry:   deps.Registry,
		payments:   deps.Payments,
		trigger:    deps.Trigger,
		gateway:    deps.Gateway,
		stream:     deps.Stream,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/users", a.handleUsers)
	a.mux.HandleFunc("/v1/auth/token", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)

	a.mux.HandleFunc("/v1/payments/methods", a.handleMethodsCollection)
	a.mux.HandleFunc("/v1/payments/methods/", a.handleMethodResource)
	a.mux.HandleFunc("/v1/payments/rules", a.handleRulesCollection)
	a.mux.HandleFunc("/v1/payments/rules/", a.handleRuleResource)
	a.mux.HandleFunc("/v1/payments/history", a.handleHistory)
	a.mux.HandleFunc("/v1/payments/stream", a.Stream)

	a.mux.HandleFunc("/v1/foundations", a.handleFoundationsCollection)
	a.mux.HandleFunc("/v1/foundations/", a.handleFoundationResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "givechain-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "givechain-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) audit(ctx context.Context, event string, fields map[string]any) {
	if err := audit.LogEvent(ctx, event, fields); err != nil {
		obs.Logger().Printf("audit log failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
