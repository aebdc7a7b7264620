package tickets

import (
	"github.com/go-chi/chi/v5"

	"github.com/meridian-hq/meridian/internal/auth"
)

// MountRoutes registers ticket routes. The file endpoint deliberately skips
// the role middleware: the service performs its own admin check before any
// lookup so the response is 403 for every non-admin caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth, h.authMW.RequireRole(auth.RoleWorker))
		r.Post("/", h.submit)
		r.Get("/my", h.listMine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth, h.authMW.RequireRole(auth.RoleAdmin))
		r.Get("/all", h.listAll)
		r.Patch("/{id}/approve", h.approve)
		r.Patch("/{id}/reject", h.reject)
	})
	r.Get("/{id}/file", h.fetchFile)
}
