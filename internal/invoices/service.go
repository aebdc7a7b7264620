package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-hq/meridian/internal/platform/blob"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

// SummaryInvalidator drops cached finance summaries after an invoice lands.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements invoice registration and retrieval.
type Service struct {
	repo       Repository
	files      blob.Store
	logger     *slog.Logger
	invalidate SummaryInvalidator
	now        func() time.Time
}

// NewService constructs a Service. invalidate may be nil.
func NewService(repo Repository, files blob.Store, logger *slog.Logger, invalidate SummaryInvalidator) *Service {
	return &Service{
		repo:       repo,
		files:      files,
		logger:     logger,
		invalidate: invalidate,
		now:        time.Now,
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Create stores the invoice document and records the row. Only PDF uploads
// are accepted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	if strings.TrimSpace(req.ClientName) == "" {
		return nil, fmt.Errorf("%w: client name required", httpx.ErrValidation)
	}
	if !ValidMonth(req.Month) {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", httpx.ErrValidation)
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, fmt.Errorf("%w: invalid amount", httpx.ErrValidation)
	}
	if req.FileMime != "application/pdf" {
		return nil, fmt.Errorf("%w: invoices must be PDF", httpx.ErrValidation)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: file required", httpx.ErrValidation)
	}

	name := uuid.NewString() + "_" + unsafeNameChars.ReplaceAllString(req.FileName, "_")
	path := s.files.Path(name)
	if err := s.files.Write(path, req.Content); err != nil {
		return nil, fmt.Errorf("%w: store invoice file: %v", httpx.ErrStorage, err)
	}

	inv := Invoice{
		ClientName: strings.TrimSpace(req.ClientName),
		Amount:     req.Amount,
		Month:      req.Month,
		FilePath:   path,
		FileMime:   req.FileMime,
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.repo.Insert(ctx, inv)
	if err != nil {
		return nil, err
	}
	inv.ID = id

	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx)
	}
	return &inv, nil
}

// List returns all invoices, newest first.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.repo.List(ctx)
}

// FetchFile serves a stored invoice document.
func (s *Service) FetchFile(ctx context.Context, id int64) (*FilePayload, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.files.Exists(inv.FilePath) {
		return nil, fmt.Errorf("%w: invoice file missing", httpx.ErrNotFound)
	}
	content, err := s.files.Read(inv.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read invoice file: %v", httpx.ErrStorage, err)
	}
	return &FilePayload{Content: content, Mime: inv.FileMime}, nil
}
