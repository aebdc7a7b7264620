package finance

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/meridian-hq/meridian/internal/employees"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// legalNotice accompanies every entry receipt; the figures are advisory,
// not tax counsel.
const legalNotice = "Los cálculos mostrados son orientativos y no sustituyen el asesoramiento fiscal profesional."

// Service implements countries, manual entries, the monthly summary and the
// demo reset.
type Service struct {
	repo      Repository
	employees employees.Repository
	cache     *SummaryCache
	logger    *slog.Logger
}

// NewService constructs a Service. cache may be nil, in which case every
// summary request builds from scratch.
func NewService(repo Repository, emps employees.Repository, cache *SummaryCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, employees: emps, cache: cache, logger: logger}
}

// Countries lists all registered countries.
func (s *Service) Countries(ctx context.Context) ([]Country, error) {
	return s.repo.ListCountries(ctx)
}

// CreateCountry registers a country. Duplicate codes fail validation.
func (s *Service) CreateCountry(ctx context.Context, req CreateCountryRequest) error {
	if !isFinite(req.CorporateTax) || !isFinite(req.SocialRate) {
		return fmt.Errorf("%w: invalid tax rates", httpx.ErrValidation)
	}
	return s.repo.InsertCountry(ctx, Country{
		Code:         req.Code,
		Name:         req.Name,
		CorporateTax: req.CorporateTax,
		SocialRate:   req.SocialRate,
	})
}

// CreateEntry records a manual month and returns the advisory receipt.
func (s *Service) CreateEntry(ctx context.Context, req CreateEntryRequest) (*EntryReceipt, error) {
	if !isFinite(req.Incomes) || !isFinite(req.Expenses) || !isFinite(req.Salaries) {
		return nil, fmt.Errorf("%w: invalid numeric values", httpx.ErrValidation)
	}
	country, err := s.repo.GetCountry(ctx, req.CountryCode)
	if err != nil {
		// Unknown country is a caller mistake, not a missing resource.
		return nil, fmt.Errorf("%w: unsupported country %q", httpx.ErrValidation, req.CountryCode)
	}

	gross := req.Incomes - req.Expenses - req.Salaries
	var corporateTax float64
	if gross > 0 {
		corporateTax = gross * country.CorporateTax
	}
	socialCosts := req.Salaries * country.SocialRate
	net := gross - corporateTax - socialCosts

	if _, err := s.repo.InsertEntry(ctx, Entry{
		Month:       req.Month,
		CountryCode: req.CountryCode,
		Incomes:     req.Incomes,
		Expenses:    req.Expenses,
		Salaries:    req.Salaries,
	}); err != nil {
		return nil, err
	}
	s.bumpCache(ctx)

	return &EntryReceipt{
		Month:       req.Month,
		CountryCode: req.CountryCode,
		Inputs:      EntryInputs{Incomes: req.Incomes, Expenses: req.Expenses, Salaries: req.Salaries},
		Computed: EntryComputed{
			GrossProfit:  Round2(gross),
			CorporateTax: Round2(corporateTax),
			SocialCosts:  Round2(socialCosts),
			NetResult:    Round2(net),
		},
		LegalNotice: legalNotice,
	}, nil
}

// Entries lists all manual entries ordered by month.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	return s.repo.ListEntries(ctx)
}

// Summary serves the monthly rollup, through the cache when one is wired.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache == nil {
		return s.buildSummary(ctx)
	}
	return s.cache.Get(ctx, s.buildSummary)
}

func (s *Service) buildSummary(ctx context.Context) (*Summary, error) {
	entries, err := s.repo.EntryTotalsByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary entry totals: %w", err)
	}
	tickets, err := s.repo.ApprovedTicketTotalsByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary ticket totals: %w", err)
	}
	invoices, err := s.repo.InvoiceTotalsByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary invoice totals: %w", err)
	}
	timesheets, err := s.repo.ListTimesheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary timesheets: %w", err)
	}
	activeSalaries, err := s.employees.ActiveSalaryTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary active salaries: %w", err)
	}
	allSalaries, err := s.employees.AllSalaryTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary salaries: %w", err)
	}

	rate := DefaultTaxRate
	if r, ok, err := s.repo.LatestEntryTaxRate(ctx); err != nil {
		return nil, fmt.Errorf("summary tax rate: %w", err)
	} else if ok {
		rate = r
	}

	summary := BuildSummary(SummaryInput{
		Entries:        entries,
		Tickets:        tickets,
		Invoices:       invoices,
		Overtime:       OvertimeFromTimesheets(timesheets),
		ActiveSalaries: activeSalaries,
		AllSalaries:    allSalaries,
		TaxRate:        rate,
	})
	return &summary, nil
}

// Reset wipes entries and invoices and reopens resolved tickets. Demo use
// only; there is deliberately no confirmation below the HTTP layer.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.bumpCache(ctx)
	return nil
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
