package invoices

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// Handler exposes invoice management over HTTP. Every route is admin only.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	validate       *validator.Validate
	authMW         auth.Middleware
	maxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, authMW auth.Middleware, maxUploadBytes int64) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		validate:       validator.New(),
		authMW:         authMW,
		maxUploadBytes: maxUploadBytes,
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authMW.RequireAuth, h.authMW.RequireRole(auth.RoleAdmin))
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}/file", h.fetchFile)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "multipart upload required or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "file required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httpx.RespondError(w, httpx.ErrStorage)
		return
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid amount")
		return
	}

	req := CreateRequest{
		ClientName: r.FormValue("client_name"),
		Amount:     amount,
		Month:      r.FormValue("month"),
		FileName:   header.Filename,
		FileMime:   header.Header.Get("Content-Type"),
		Content:    content,
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": list})
}

func (h *Handler) fetchFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}

	payload, err := h.service.FetchFile(r.Context(), id)
	if err != nil {
		h.logger.Warn("fetch invoice file", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", payload.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload.Content)
}
