package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/employees"
	"github.com/meridian-hq/meridian/internal/platform/blob"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/vault"
)

// AllowedMimeTypes is the upload allow-list; anything else is rejected
// before storage.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// SummaryInvalidator drops cached finance summaries after a state change
// that feeds the monthly rollup.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements the ticket workflow.
type Service struct {
	repo       Repository
	employees  employees.Repository
	files      blob.Store
	keys       *vault.Keystore
	logger     *slog.Logger
	invalidate SummaryInvalidator
	now        func() time.Time
}

// NewService constructs a Service. invalidate may be nil.
func NewService(repo Repository, emps employees.Repository, files blob.Store, keys *vault.Keystore, logger *slog.Logger, invalidate SummaryInvalidator) *Service {
	return &Service{
		repo:       repo,
		employees:  emps,
		files:      files,
		keys:       keys,
		logger:     logger,
		invalidate: invalidate,
		now:        time.Now,
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Submit validates the upload, encrypts it at rest, and records the ticket
// as PENDIENTE.
func (s *Service) Submit(ctx context.Context, ownerID int64, req SubmitRequest) (*Ticket, error) {
	if !AllowedMimeTypes[req.FileMime] {
		return nil, fmt.Errorf("%w: file type %q not allowed", httpx.ErrValidation, req.FileMime)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: file required", httpx.ErrValidation)
	}
	if req.Amount != nil && (math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0)) {
		return nil, fmt.Errorf("%w: invalid amount", httpx.ErrValidation)
	}

	category, err := s.authorizeCategory(ctx, ownerID, req.Category)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + "_" + unsafeNameChars.ReplaceAllString(req.FileName, "_")
	plainPath := s.files.Path(name)

	if err := s.files.Write(plainPath, req.Content); err != nil {
		return nil, fmt.Errorf("%w: store upload: %v", httpx.ErrStorage, err)
	}

	envelope, err := vault.Seal(req.Content, s.keys.Key())
	if err != nil {
		_ = s.files.Remove(plainPath)
		return nil, fmt.Errorf("encrypt upload: %w", err)
	}
	ref := vault.NewEncryptedRef(plainPath)
	if err := s.files.Write(ref.Path, envelope); err != nil {
		_ = s.files.Remove(plainPath)
		return nil, fmt.Errorf("%w: store envelope: %v", httpx.ErrStorage, err)
	}
	// Only the envelope is retained. The removal and the insert below are
	// separate effects with no rollback if the process dies between them;
	// an orphaned envelope is an accepted risk for this tool.
	if err := s.files.Remove(plainPath); err != nil {
		s.logger.Warn("remove plaintext upload", slog.Any("error", err))
	}

	ticket := Ticket{
		UserID:    ownerID,
		CreatedAt: s.now().UTC(),
		Category:  category,
		Amount:    req.Amount,
		Status:    StatusPending,
		File:      ref,
		FileMime:  req.FileMime,
	}
	id, err := s.repo.Insert(ctx, ticket)
	if err != nil {
		return nil, err
	}
	ticket.ID = id
	return &ticket, nil
}

func (s *Service) authorizeCategory(ctx context.Context, ownerID int64, raw string) (Category, error) {
	if raw == "" {
		return "", nil
	}
	category := Category(raw)
	if category != CategoryDiets && category != CategoryTransport {
		return "", fmt.Errorf("%w: unknown category %q", httpx.ErrForbidden, raw)
	}

	emp, err := s.employees.GetByUserID(ctx, ownerID)
	if err != nil {
		// No employee record means no category permissions at all.
		return "", fmt.Errorf("%w: not authorized for %s", httpx.ErrForbidden, category)
	}
	if category == CategoryDiets && !emp.AllowDiets {
		return "", fmt.Errorf("%w: not authorized for DIETAS", httpx.ErrForbidden)
	}
	if category == CategoryTransport && !emp.AllowTransport {
		return "", fmt.Errorf("%w: not authorized for TRANSPORTE", httpx.ErrForbidden)
	}
	return category, nil
}

// Approve marks the ticket APROBADO and clears any prior rejection reason.
// Approving an already approved ticket is a no-op in effect.
func (s *Service) Approve(ctx context.Context, id int64) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusApproved, nil); err != nil {
		return err
	}
	s.bumpSummary(ctx)
	return nil
}

// Reject marks the ticket RECHAZADO with a mandatory reason.
func (s *Service) Reject(ctx context.Context, id int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: rejection reason required", httpx.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusRejected, &reason); err != nil {
		return err
	}
	s.bumpSummary(ctx)
	return nil
}

// ListMine returns the owner's tickets, newest first.
func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]Ticket, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListAll returns every ticket with the owner's email, optionally filtered
// by status.
func (s *Service) ListAll(ctx context.Context, status Status) ([]ListedTicket, error) {
	return s.repo.ListAll(ctx, status)
}

// FetchFile serves a ticket receipt. The requester's role is checked before
// any lookup so unauthorized callers cannot probe for ticket existence.
func (s *Service) FetchFile(ctx context.Context, id int64, requesterRole string) (*FilePayload, error) {
	if requesterRole != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: ticket files are admin only", httpx.ErrForbidden)
	}

	ticket, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.files.Exists(ticket.File.Path) {
		return nil, fmt.Errorf("%w: receipt file missing", httpx.ErrNotFound)
	}

	raw, err := s.files.Read(ticket.File.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read receipt: %v", httpx.ErrStorage, err)
	}

	if !ticket.File.Encrypted {
		// Legacy plaintext file stored before encryption was introduced.
		return &FilePayload{Content: raw, Mime: ticket.FileMime}, nil
	}

	plaintext, err := vault.Open(raw, s.keys.Key())
	if err != nil {
		return nil, err
	}
	return &FilePayload{Content: plaintext, Mime: ticket.FileMime}, nil
}

func (s *Service) bumpSummary(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate.Invalidate(ctx)
	}
}
