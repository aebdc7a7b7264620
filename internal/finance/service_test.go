package finance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/employees"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

type fakeRepo struct {
	countries map[string]Country
	entries   []Entry
	tickets   map[string]float64
	invoices  map[string]float64
	sheets    []TimesheetRow

	buildQueries int
	resetCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		countries: map[string]Country{},
		tickets:   map[string]float64{},
		invoices:  map[string]float64{},
	}
}

func (f *fakeRepo) ListCountries(context.Context) ([]Country, error) {
	var list []Country
	for _, c := range f.countries {
		list = append(list, c)
	}
	return list, nil
}

func (f *fakeRepo) GetCountry(_ context.Context, code string) (*Country, error) {
	c, ok := f.countries[code]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (f *fakeRepo) InsertCountry(_ context.Context, c Country) error {
	if _, exists := f.countries[c.Code]; exists {
		return httpx.ErrValidation
	}
	f.countries[c.Code] = c
	return nil
}

func (f *fakeRepo) InsertEntry(_ context.Context, e Entry) (int64, error) {
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return e.ID, nil
}

func (f *fakeRepo) ListEntries(context.Context) ([]Entry, error) {
	return f.entries, nil
}

func (f *fakeRepo) EntryTotalsByMonth(context.Context) (map[string]EntryTotals, error) {
	f.buildQueries++
	totals := map[string]EntryTotals{}
	for _, e := range f.entries {
		t := totals[e.Month]
		t.Incomes += e.Incomes
		t.Expenses += e.Expenses
		t.Salaries += e.Salaries
		totals[e.Month] = t
	}
	return totals, nil
}

func (f *fakeRepo) ApprovedTicketTotalsByMonth(context.Context) (map[string]float64, error) {
	return f.tickets, nil
}

func (f *fakeRepo) InvoiceTotalsByMonth(context.Context) (map[string]float64, error) {
	return f.invoices, nil
}

func (f *fakeRepo) ListTimesheets(context.Context) ([]TimesheetRow, error) {
	return f.sheets, nil
}

func (f *fakeRepo) LatestEntryTaxRate(context.Context) (float64, bool, error) {
	if len(f.entries) == 0 {
		return 0, false, nil
	}
	last := f.entries[len(f.entries)-1]
	c, ok := f.countries[last.CountryCode]
	if !ok {
		return 0, false, nil
	}
	return c.CorporateTax, true, nil
}

func (f *fakeRepo) Reset(context.Context) error {
	f.resetCalls++
	f.entries = nil
	f.invoices = map[string]float64{}
	f.tickets = map[string]float64{}
	return nil
}

type fakeEmployees struct {
	active float64
	all    float64
}

func (f *fakeEmployees) GetByUserID(context.Context, int64) (*employees.Employee, error) {
	return nil, httpx.ErrNotFound
}

func (f *fakeEmployees) List(context.Context) ([]employees.Employee, error) { return nil, nil }

func (f *fakeEmployees) ActiveSalaryTotal(context.Context) (float64, error) { return f.active, nil }

func (f *fakeEmployees) AllSalaryTotal(context.Context) (float64, error) { return f.all, nil }

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	repo.countries["ES"] = Country{Code: "ES", Name: "España", CorporateTax: 0.25, SocialRate: 0.3}
	svc := NewService(repo, &fakeEmployees{active: 4000, all: 5000}, nil, slog.New(slog.DiscardHandler))
	return svc, repo
}

func TestCreateEntryReceipt(t *testing.T) {
	svc, repo := newTestService(t)

	receipt, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-01", CountryCode: "ES",
		Incomes: 10000, Expenses: 2000, Salaries: 3000,
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	require.Equal(t, 5000.0, receipt.Computed.GrossProfit)
	require.Equal(t, 1250.0, receipt.Computed.CorporateTax)
	require.Equal(t, 900.0, receipt.Computed.SocialCosts)
	require.Equal(t, 2850.0, receipt.Computed.NetResult)
	require.NotEmpty(t, receipt.LegalNotice)
}

func TestCreateEntryNegativeGrossSkipsTax(t *testing.T) {
	svc, _ := newTestService(t)

	receipt, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-01", CountryCode: "ES",
		Incomes: 1000, Expenses: 2000, Salaries: 0,
	})
	require.NoError(t, err)
	require.Equal(t, -1000.0, receipt.Computed.GrossProfit)
	require.Equal(t, 0.0, receipt.Computed.CorporateTax)
}

func TestCreateEntryUnknownCountry(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-01", CountryCode: "XX", Incomes: 1,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.entries)
}

func TestSummaryUsesLatestEntryCountryRate(t *testing.T) {
	svc, repo := newTestService(t)
	repo.countries["IE"] = Country{Code: "IE", Name: "Ireland", CorporateTax: 0.125, SocialRate: 0.1}

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-01", CountryCode: "ES", Incomes: 1000,
	})
	require.NoError(t, err)
	_, err = svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-02", CountryCode: "IE", Incomes: 1000,
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float64{125, 125}, summary.Series.Taxes)
}

func TestSummaryFallbackRateWithoutEntries(t *testing.T) {
	svc, repo := newTestService(t)
	repo.tickets["2024-06"] = 100 // keeps one month on the axis

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2024-06"}, summary.Months)
	require.Equal(t, []float64{-100}, summary.Series.Gross)
	require.Equal(t, []float64{0}, summary.Series.Taxes)
}

func TestResetClearsStateAndReopens(t *testing.T) {
	svc, repo := newTestService(t)
	repo.tickets["2024-01"] = 50
	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-01", CountryCode: "ES", Incomes: 100,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background()))
	require.Equal(t, 1, repo.resetCalls)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Empty(t, summary.Months)
}

func newCachedService(t *testing.T) (*Service, *fakeRepo, *SummaryCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	repo.countries["ES"] = Country{Code: "ES", Name: "España", CorporateTax: 0.25, SocialRate: 0.3}
	cache := NewSummaryCache(client, time.Minute, slog.New(slog.DiscardHandler))
	svc := NewService(repo, &fakeEmployees{}, cache, slog.New(slog.DiscardHandler))
	return svc, repo, cache
}

func TestSummaryCacheHit(t *testing.T) {
	svc, repo, _ := newCachedService(t)
	repo.tickets["2024-01"] = 10

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.buildQueries, "second read must come from the cache")
}

func TestSummaryCacheInvalidation(t *testing.T) {
	svc, repo, cache := newCachedService(t)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Empty(t, first.Months)

	repo.tickets["2024-02"] = 25
	cache.Invalidate(context.Background())

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2024-02"}, second.Months)
	require.Equal(t, 2, repo.buildQueries)
}

func TestEntryCreateInvalidatesCache(t *testing.T) {
	svc, repo, _ := newCachedService(t)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Empty(t, first.Months)

	_, err = svc.CreateEntry(context.Background(), CreateEntryRequest{
		Month: "2024-03", CountryCode: "ES", Incomes: 500,
	})
	require.NoError(t, err)

	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"2024-03"}, second.Months)
	require.Equal(t, 2, repo.buildQueries)
}
