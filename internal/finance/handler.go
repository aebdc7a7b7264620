package finance

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// Handler exposes the finance module over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authMW   auth.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, authMW auth.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authMW:   authMW,
	}
}

// MountRoutes registers finance routes. The country list is readable by any
// authenticated user; everything else is admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth)
		r.Get("/countries", h.listCountries)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth, h.authMW.RequireRole(auth.RoleAdmin))
		r.Post("/countries", h.createCountry)
		r.Post("/entry", h.createEntry)
		r.Get("/entries", h.listEntries)
		r.Get("/summary", h.summary)
		r.Post("/reset", h.reset)
	})
}

func (h *Handler) listCountries(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Countries(r.Context())
	if err != nil {
		h.logger.Error("list countries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Country{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"countries": list})
}

func (h *Handler) createCountry(w http.ResponseWriter, r *http.Request) {
	var req CreateCountryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.CreateCountry(r.Context(), req); err != nil {
		h.logger.Warn("create country", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	receipt, err := h.service.CreateEntry(r.Context(), req)
	if err != nil {
		h.logger.Warn("create finance entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipt)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Entries(r.Context())
	if err != nil {
		h.logger.Error("list finance entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": list})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("build finance summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.logger.Error("reset finance data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
