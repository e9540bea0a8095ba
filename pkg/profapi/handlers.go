// Package profapi is the HTTP surface of the professor service: role and
// ownership gated CRUD over professor records.
package profapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusd/professor-trust/pkg/authz"
	"github.com/campusd/professor-trust/pkg/httputil"
	"github.com/campusd/professor-trust/pkg/store"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/gorilla/mux"
)

// Handlers holds the professor service dependencies.
type Handlers struct {
	store *store.Store
	mw    *authz.Middleware
}

// NewHandlers wires the record handlers to their store and gates.
func NewHandlers(s *store.Store, mw *authz.Middleware) *Handlers {
	return &Handlers{store: s, mw: mw}
}

// Routes registers all professor routes with their gate chains. Every route
// resolves authentication and authorization before any store I/O; 404 is only
// reachable once the caller is authorized for the id in the path.
func (h *Handlers) Routes(r *mux.Router) {
	admin := h.mw.RequireRoles(types.RoleAdmin)
	adminOrProfessor := h.mw.RequireRoles(types.RoleAdmin, types.RoleProfessor)
	internal := h.mw.RequireRoles(types.RoleAuthService)
	ownRecord := h.mw.RequireOwnership("id")

	r.Handle("/api/professors", chain(h.create, admin)).Methods(http.MethodPost)
	r.Handle("/api/professors", chain(h.list, adminOrProfessor)).Methods(http.MethodGet)
	r.Handle("/api/professors/internal/all", chain(h.listFull, internal)).Methods(http.MethodGet)
	r.Handle("/api/professors/{id}", chain(h.get, adminOrProfessor, ownRecord)).Methods(http.MethodGet)
	r.Handle("/api/professors/{id}", chain(h.update, adminOrProfessor, ownRecord)).Methods(http.MethodPut)
	r.Handle("/api/professors/{id}", chain(h.delete, adminOrProfessor, ownRecord)).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
}

// chain applies middleware left to right around handler.
func chain(handler http.HandlerFunc, mws ...mux.MiddlewareFunc) http.Handler {
	var h http.Handler = handler
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// create handles POST /api/professors. ADMIN only.
func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		httputil.WriteValidationError(w, "please provide name, email, phone, and password")
		return
	}

	professor := &store.Professor{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := professor.SetPassword(req.Password); err != nil {
		slog.Error("Failed to hash password", slog.String("error", err.Error()))
		httputil.WriteInternalError(w, errors.New("failed to create professor"))
		return
	}

	if err := h.store.Create(r.Context(), professor); err != nil {
		h.writeStoreError(w, err, "failed to create professor")
		return
	}

	slog.Info("Professor created", slog.String("id", professor.ID))
	httputil.WriteJSONOrError(w, http.StatusCreated, professor, "failed to write professor")
}

// list handles GET /api/professors. Passwords are never included.
func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	professors, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "failed to list professors")
		return
	}
	if professors == nil {
		professors = []*store.Professor{}
	}
	httputil.WriteJSONOrError(w, http.StatusOK, professors, "failed to write professors")
}

// listFull handles GET /api/professors/internal/all, the AUTH_SERVICE-only
// view that includes password hashes for credential verification at login.
func (h *Handlers) listFull(w http.ResponseWriter, r *http.Request) {
	professors, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "failed to list professors")
		return
	}

	full := make([]store.FullRecord, 0, len(professors))
	for _, p := range professors {
		full = append(full, p.Full())
	}
	httputil.WriteJSONOrError(w, http.StatusOK, full, "failed to write professors")
}

// get handles GET /api/professors/{id}.
func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	professor, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "failed to fetch professor")
		return
	}
	httputil.WriteJSONOrError(w, http.StatusOK, professor, "failed to write professor")
}

type updateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// update handles PUT /api/professors/{id}. Partial updates only; password
// changes are rejected here so credential updates go through a dedicated
// flow.
func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Password != nil {
		httputil.WriteValidationError(w, "password updates are not allowed through this route")
		return
	}

	upd := store.Update{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if upd.Empty() {
		httputil.WriteValidationError(w, "no valid update data provided")
		return
	}

	professor, err := h.store.Update(r.Context(), id, upd)
	if err != nil {
		h.writeStoreError(w, err, "failed to update professor")
		return
	}

	slog.Info("Professor updated", slog.String("id", professor.ID))
	httputil.WriteJSONOrError(w, http.StatusOK, professor, "failed to write professor")
}

type deleteResponse struct {
	Message          string           `json:"message"`
	DeletedProfessor *store.Professor `json:"deletedProfessor"`
}

// delete handles DELETE /api/professors/{id} and returns the removed record.
func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	professor, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "failed to delete professor")
		return
	}

	slog.Info("Professor deleted", slog.String("id", professor.ID))
	httputil.WriteJSONOrError(w, http.StatusOK, deleteResponse{
		Message:          "professor deleted successfully",
		DeletedProfessor: professor,
	}, "failed to write professor")
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSONOrError(w, http.StatusOK, map[string]string{"status": "ok"}, "failed to write health response")
}

// writeStoreError maps store errors onto the HTTP taxonomy: duplicates are
// client errors (matching the original service's contract of 400, not 409),
// a missing record is 404, anything else is a 500 with a generic message.
func (h *Handlers) writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail), errors.Is(err, store.ErrDuplicatePhone):
		httputil.WriteValidationError(w, err.Error())
	case errors.Is(err, store.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	default:
		slog.Error("Store operation failed", slog.String("error", err.Error()))
		httputil.WriteInternalError(w, errors.New(fallback))
	}
}
