package employees

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// Handler exposes the admin listing; the richer HR CRUD surface is out of
// scope for this service.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	authMW auth.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository, authMW auth.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, authMW: authMW}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth, h.authMW.RequireRole(auth.RoleAdmin))
		r.Get("/", h.list)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Employee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": list})
}
