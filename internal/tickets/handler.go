package tickets

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/shared"
)

// Handler exposes the ticket workflow over HTTP.
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

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

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

	req := SubmitRequest{
		Category: r.FormValue("category"),
		FileName: header.Filename,
		FileMime: header.Header.Get("Content-Type"),
		Content:  content,
	}
	if raw := r.FormValue("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid amount")
			return
		}
		req.Amount = &amount
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ticket, err := h.service.Submit(r.Context(), sess.UserID(), req)
	if err != nil {
		h.logger.Warn("submit ticket", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ticket)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	list, err := h.service.ListMine(r.Context(), sess.UserID())
	if err != nil {
		h.logger.Error("list own tickets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Ticket{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tickets": list})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		h.logger.Error("list tickets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []ListedTicket{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tickets": list})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid ticket id")
		return
	}
	if err := h.service.Approve(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid ticket id")
		return
	}
	var req RejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Reject(r.Context(), id, req.Reason); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) fetchFile(w http.ResponseWriter, r *http.Request) {
	// Authorization first: non-admins get 403 before the id is even parsed,
	// so ticket existence never leaks.
	sess := shared.SessionFromContext(r.Context())
	role := sess.Role()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		if role != auth.RoleAdmin {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid ticket id")
		return
	}

	payload, err := h.service.FetchFile(r.Context(), id, role)
	if err != nil {
		h.logger.Warn("fetch ticket file", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", payload.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload.Content)
}
