package matches

import (
	"context"
	"math"
	"strings"
	"time"

	perr "findmypet-search/internal/platform/errors"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Service struct {
	repo    Repository
	parents ParentLookup
	now     func() time.Time
}

type Option func(*Service)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, parents ParentLookup, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		parents: parents,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type AppendInput struct {
	PetID          string
	SourcePlatform string
	Confidence     float64
	ScrapedAt      time.Time // zero = ahora

	PostURL  string
	ImageURL string
	Snippet  string
}

// Append es la entrada de los workers. No pasa por ownership: el caller es el worker.
func (s *Service) Append(ctx context.Context, in AppendInput) (Match, error) {
	var fields []perr.FieldError
	petID := strings.TrimSpace(in.PetID)
	if petID == "" {
		fields = append(fields, perr.FieldError{Field: "pet_id", Message: "pet_id is required"})
	}
	source := strings.ToLower(strings.TrimSpace(in.SourcePlatform))
	if source == "" {
		fields = append(fields, perr.FieldError{Field: "source_platform", Message: "source_platform is required"})
	}
	if math.IsNaN(in.Confidence) || in.Confidence < 0 || in.Confidence > 100 {
		fields = append(fields, perr.FieldError{Field: "confidence", Message: "confidence must be between 0 and 100"})
	}
	if len(fields) > 0 {
		return Match{}, perr.Validation(fields...)
	}

	now := s.now().UTC()
	scrapedAt := in.ScrapedAt.UTC()
	if in.ScrapedAt.IsZero() {
		scrapedAt = now
	}

	m := Match{
		ID:             uuid.NewString(),
		PetID:          petID,
		SourcePlatform: source,
		Confidence:     in.Confidence,
		ScrapedAt:      scrapedAt,
		PostURL:        strings.TrimSpace(in.PostURL),
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Snippet:        strings.TrimSpace(in.Snippet),
		Status:         StatusPending,
		CreatedAt:      now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if perr.IsKind(err, perr.KindNotFound) {
			return Match{}, perr.InvalidField("pet_id", "unknown pet id")
		}
		return Match{}, perr.Store(err, "create match")
	}
	return m, nil
}

type ListQuery struct {
	Status Status
	Limit  int
	Offset int
}

type Page struct {
	Items  []Match
	Limit  int
	Offset int
	Total  int
}

func (s *Service) List(ctx context.Context, petID, callerID string, q ListQuery) (Page, error) {
	if q.Status != "" && !q.Status.Valid() {
		return Page{}, perr.InvalidField("status", "status must be one of pending, confirmed, rejected")
	}
	if err := s.authorize(ctx, petID, callerID); err != nil {
		return Page{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.ListByPet(ctx, petID, ListFilter{Status: q.Status, Limit: limit, Offset: offset})
	if err != nil {
		return Page{}, perr.Store(err, "list matches")
	}
	return Page{Items: items, Limit: limit, Offset: offset, Total: total}, nil
}

// Review confirma o rechaza un match pending. Padre y match se bloquean en el repo,
// así que ownership y estado se evalúan sobre la versión vigente.
func (s *Service) Review(ctx context.Context, matchID, callerID string, status Status, notes *string) (Match, error) {
	if status != StatusConfirmed && status != StatusRejected {
		return Match{}, perr.InvalidField("status", `status must be "confirmed" or "rejected"`)
	}
	if strings.TrimSpace(callerID) == "" {
		return Match{}, perr.New(perr.KindUnauthorized, "unauthorized")
	}

	updated, err := s.repo.Review(ctx, matchID, func(parent ParentRef, current Match) (Match, error) {
		if parent.OwnerUserID != callerID {
			return Match{}, perr.ErrForbidden
		}
		if current.Status.Terminal() {
			return Match{}, perr.Newf(perr.KindInvalidTransition, "match already %s", current.Status)
		}

		now := s.now().UTC()
		current.Status = status
		current.ReviewedAt = &now
		current.ReviewedBy = callerID
		if notes != nil {
			current.ReviewNotes = strings.TrimSpace(*notes)
		}
		return current, nil
	})
	if err != nil {
		return Match{}, perr.Store(err, "review match")
	}
	return updated, nil
}

func (s *Service) Stats(ctx context.Context, petID, callerID string) (Stats, error) {
	if err := s.authorize(ctx, petID, callerID); err != nil {
		return Stats{}, err
	}
	items, err := s.repo.AllByPet(ctx, petID)
	if err != nil {
		return Stats{}, perr.Store(err, "load matches")
	}
	return ComputeStats(items), nil
}

func (s *Service) authorize(ctx context.Context, petID, callerID string) error {
	if strings.TrimSpace(callerID) == "" {
		return perr.New(perr.KindUnauthorized, "unauthorized")
	}
	owner, err := s.parents.OwnerOf(ctx, petID)
	if err != nil {
		return perr.Store(err, "load pet")
	}
	if owner != callerID {
		return perr.ErrForbidden
	}
	return nil
}
