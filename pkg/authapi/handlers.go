// Package authapi is the HTTP surface of the auth service: login and the
// public JWKS document.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusd/professor-trust/pkg/httputil"
	"github.com/campusd/professor-trust/pkg/issuer"
	"github.com/campusd/professor-trust/pkg/jwks"
	"github.com/campusd/professor-trust/pkg/store"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/gorilla/mux"
)

// Handlers holds the auth service dependencies.
type Handlers struct {
	issuer    *issuer.Issuer
	publisher *jwks.Publisher
	directory Directory
}

// NewHandlers wires the login flow and the JWKS endpoint.
func NewHandlers(iss *issuer.Issuer, pub *jwks.Publisher, dir Directory) *Handlers {
	return &Handlers{issuer: iss, publisher: pub, directory: dir}
}

// Routes registers the auth service routes on r.
func (h *Handlers) Routes(r *mux.Router) {
	r.HandleFunc("/.well-known/jwks.json", h.publisher.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// login verifies credentials against the professor directory and issues an
// access token. Bad credentials always answer 401 with the same message,
// whether the identifier was unknown or the password wrong.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Identifier == "" || req.Password == "" {
		httputil.WriteValidationError(w, "identifier and password are required")
		return
	}

	cred, err := h.directory.Lookup(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, ErrIdentifierUnknown) {
			httputil.WriteUnauthorized(w, "invalid credentials")
			return
		}
		slog.Error("Credential lookup failed", slog.String("error", err.Error()))
		httputil.WriteInternalError(w, errors.New("login temporarily unavailable"))
		return
	}

	if !store.CheckHash(cred.PasswordHash, req.Password) {
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}

	token, err := h.issuer.Issue(cred.ID, types.RoleProfessor)
	if err != nil {
		slog.Error("Token issuance failed", slog.String("error", err.Error()))
		httputil.WriteInternalError(w, errors.New("login temporarily unavailable"))
		return
	}

	slog.Info("Login succeeded", slog.String("subject", cred.ID))
	httputil.WriteJSONOrError(w, http.StatusOK, loginResponse{Token: token}, "failed to write login response")
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSONOrError(w, http.StatusOK, map[string]string{"status": "ok"}, "failed to write health response")
}
