package invoices

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

type fakeRepo struct {
	rows   map[int64]Invoice
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]Invoice{}, nextID: 1}
}

func (f *fakeRepo) Insert(_ context.Context, inv Invoice) (int64, error) {
	id := f.nextID
	f.nextID++
	inv.ID = id
	f.rows[id] = inv
	return id, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := f.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &inv, nil
}

func (f *fakeRepo) List(_ context.Context) ([]Invoice, error) {
	var list []Invoice
	for id := f.nextID - 1; id >= 1; id-- {
		if inv, ok := f.rows[id]; ok {
			list = append(list, inv)
		}
	}
	return list, nil
}

type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Path(name string) string { return "mem/" + name }

func (m *memStore) Write(path string, data []byte) error {
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Read(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Remove(path string) error {
	delete(m.files, path)
	return nil
}

func (m *memStore) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

func newTestService(t *testing.T) (*Service, *fakeRepo, *memStore, *countingInvalidator) {
	t.Helper()
	repo := newFakeRepo()
	store := newMemStore()
	inval := &countingInvalidator{}
	svc := NewService(repo, store, slog.New(slog.DiscardHandler), inval)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc, repo, store, inval
}

func pdfRequest() CreateRequest {
	return CreateRequest{
		ClientName: "ACME Corp",
		Amount:     1250.50,
		Month:      "2024-03",
		FileName:   "invoice march.pdf",
		FileMime:   "application/pdf",
		Content:    []byte("%PDF-1.4 fake"),
	}
}

func TestCreateStoresFileAndRow(t *testing.T) {
	svc, repo, store, inval := newTestService(t)

	inv, err := svc.Create(context.Background(), pdfRequest())
	require.NoError(t, err)
	require.Equal(t, int64(1), inv.ID)
	require.Equal(t, "ACME Corp", inv.ClientName)
	require.True(t, store.Exists(inv.FilePath))
	require.NotContains(t, inv.FilePath, " ", "unsafe filename characters must be replaced")
	require.Len(t, repo.rows, 1)
	require.Equal(t, 1, inval.calls)
}

func TestCreateRejectsNonPDF(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	req := pdfRequest()
	req.FileMime = "image/png"
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, store.files, "rejected uploads must not be stored")
}

func TestCreateValidatesMonth(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, month := range []string{"2024-13", "2024-0", "24-01", "2024/01", "2024-1"} {
		req := pdfRequest()
		req.Month = month
		_, err := svc.Create(context.Background(), req)
		require.ErrorIs(t, err, httpx.ErrValidation, "month %q must be rejected", month)
	}
}

func TestCreateRejectsBlankClient(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := pdfRequest()
	req.ClientName = "   "
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestFetchFileRoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), pdfRequest())
	require.NoError(t, err)

	payload, err := svc.FetchFile(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 fake"), payload.Content)
	require.Equal(t, "application/pdf", payload.Mime)
}

func TestFetchFileMissingRow(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.FetchFile(context.Background(), 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestFetchFileMissingBlob(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	inv, err := svc.Create(context.Background(), pdfRequest())
	require.NoError(t, err)
	require.NoError(t, store.Remove(inv.FilePath))

	_, err = svc.FetchFile(context.Background(), inv.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestValidMonth(t *testing.T) {
	require.True(t, ValidMonth("2024-01"))
	require.True(t, ValidMonth("1999-12"))
	require.False(t, ValidMonth("2024-00"))
	require.False(t, ValidMonth("2024-13"))
	require.False(t, ValidMonth("2024-1"))
	require.False(t, ValidMonth(""))
}
