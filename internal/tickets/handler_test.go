package tickets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/shared"
)

type fakeAuthRepo struct{}

func (fakeAuthRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, httpx.ErrNotFound
}

func (fakeAuthRepo) IsActive(context.Context, int64) (bool, error) { return true, nil }

// injectSession loads a fresh session for every request and, when role is
// set, logs a fake user into it.
func injectSession(t *testing.T, sm *shared.SessionManager, userID int64, role string) func(http.Handler) http.Handler {
	t.Helper()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sm.Load(r.Context(), r)
			require.NoError(t, err)
			if role != "" {
				sess.SetUser(userID, "test@x.com", role)
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
		})
	}
}

func newTestRouter(t *testing.T, userID int64, role string) (http.Handler, *Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "sid", time.Hour, false)

	svc, _, _, _ := newTestService(t)
	authMW := auth.Middleware{Service: auth.NewService(fakeAuthRepo{}), Logger: slog.New(slog.DiscardHandler)}
	handler := NewHandler(slog.New(slog.DiscardHandler), svc, authMW, 10<<20)

	r := chi.NewRouter()
	r.Use(injectSession(t, sm, userID, role))
	r.Route("/api/tickets", handler.MountRoutes)
	return r, svc
}

func multipartBody(t *testing.T, category string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if category != "" {
		require.NoError(t, mw.WriteField("category", category))
	}
	require.NoError(t, mw.WriteField("amount", "12.50"))

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="receipt.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSubmitEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, 1, auth.RoleWorker)

	body, contentType := multipartBody(t, "DIETAS")
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"status":"PENDIENTE"`)
}

func TestSubmitEndpointUnknownCategoryForbidden(t *testing.T) {
	router, _ := newTestRouter(t, 1, auth.RoleWorker)

	body, contentType := multipartBody(t, "VIAJES")
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestSubmitEndpointAdminForbidden(t *testing.T) {
	router, _ := newTestRouter(t, 1, auth.RoleAdmin)

	body, contentType := multipartBody(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitEndpointAnonymous(t *testing.T) {
	router, _ := newTestRouter(t, 0, "")

	body, contentType := multipartBody(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileEndpointForbiddenBeforeNotFound(t *testing.T) {
	router, _ := newTestRouter(t, 1, auth.RoleWorker)

	// Unknown id and even an unparsable id respond 403 for non-admins.
	for _, path := range []string{"/api/tickets/99/file", "/api/tickets/abc/file"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestFileEndpointAdminNotFound(t *testing.T) {
	router, _ := newTestRouter(t, 1, auth.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/99/file", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileEndpointServesDecrypted(t *testing.T) {
	adminRouter, svc := newTestRouter(t, 1, auth.RoleAdmin)

	ticket, err := svc.Submit(context.Background(), 1, receiptRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tickets/%d/file", ticket.ID), nil)
	rec := httptest.NewRecorder()
	adminRouter.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	require.Equal(t, []byte("jpeg bytes"), rec.Body.Bytes())
}
