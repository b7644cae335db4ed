package searches

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/logger"
	"findmypet-search/internal/ports/workers"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	// RecentMatches es cuántos matches trae Get junto con la búsqueda.
	RecentMatches = 5
)

type Service struct {
	repo     Repository
	matches  MatchReader
	notifier workers.Notifier
	now      func() time.Time
}

type Option func(*Service)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, matches MatchReader, notifier workers.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = workers.Nop{}
	}
	s := &Service{
		repo:     repo,
		matches:  matches,
		notifier: notifier,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type LastSeenInput struct {
	Location    string
	Coordinates *Coordinates
	Date        string // RFC3339 o YYYY-MM-DD
}

type SearchConfigInput struct {
	RadiusKm *float64
	Sources  []string
}

type CreateInput struct {
	Name         string
	Species      string
	Breed        string
	Age          *int
	Description  string
	Images       []string
	LastSeen     LastSeenInput
	SearchConfig *SearchConfigInput
}

// Create persiste la búsqueda en searching y después avisa a los workers.
// Lo que pase con los workers no cambia el resultado.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Search, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Search{}, perr.New(perr.KindUnauthorized, "unauthorized")
	}

	var v fieldErrors
	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.add("name", "name is required")
	}
	species := Species(strings.ToLower(strings.TrimSpace(in.Species)))
	if !species.Valid() {
		v.add("species", `species must be "dog" or "cat"`)
	}
	checkAge(&v, in.Age)
	description := strings.TrimSpace(in.Description)
	if description == "" {
		v.add("description", "description is required")
	}
	images := checkImages(&v, in.Images)
	lastSeen := checkLastSeen(&v, in.LastSeen)
	cfg := SearchConfig{RadiusKm: DefaultRadiusKm, Sources: slices.Clone(DefaultSources)}
	if in.SearchConfig != nil {
		cfg = checkSearchConfig(&v, *in.SearchConfig, cfg)
	}
	if err := v.err(); err != nil {
		return Search{}, err
	}

	now := s.now().UTC()
	rec := Search{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Subject: Subject{
			Name:    name,
			Species: species,
			Breed:   strings.TrimSpace(in.Breed),
			Age:     in.Age,
		},
		Description:  description,
		Images:       images,
		LastSeen:     lastSeen,
		Status:       StatusSearching,
		SearchConfig: cfg,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Search{}, perr.Store(err, "create pet")
	}

	logger.From(ctx).Info().Str("pet_id", rec.ID).Str("owner_user_id", ownerUserID).Msg("search created")

	s.notifier.NotifyFeatureExtraction(rec.ID, slices.Clone(rec.Images))
	s.notifier.NotifyScrapingStart(rec.ID, string(rec.Subject.Species), rec.LastSeen.Location, slices.Clone(rec.SearchConfig.Sources))

	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Search, error) {
	if strings.TrimSpace(id) == "" {
		return Search{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Search{}, perr.Store(err, "load pet")
	}
	return p, nil
}

// Get es la lectura del dueño: búsqueda + últimos matches por scraped_at.
func (s *Service) Get(ctx context.Context, id, callerID string) (Detail, error) {
	p, err := s.Authorize(ctx, id, callerID)
	if err != nil {
		return Detail{}, err
	}
	recent, err := s.matches.Recent(ctx, id, RecentMatches)
	if err != nil {
		return Detail{}, perr.Store(err, "load recent matches")
	}
	return Detail{Search: p, RecentMatches: recent}, nil
}

type ListQuery struct {
	Status Status
	Limit  int
	Offset int
}

type Page struct {
	Items  []Summary
	Limit  int
	Offset int
	Total  int
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string, q ListQuery) (Page, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Page{}, perr.New(perr.KindUnauthorized, "unauthorized")
	}
	if q.Status != "" && !q.Status.Valid() {
		return Page{}, perr.InvalidField("status", "status must be one of searching, found, cancelled")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(q.Offset, 0)

	items, total, err := s.repo.ListByOwner(ctx, ownerUserID, ListFilter{Status: q.Status, Limit: limit, Offset: offset})
	if err != nil {
		return Page{}, perr.Store(err, "list pets")
	}

	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	counts, err := s.matches.CountsByPets(ctx, ids)
	if err != nil {
		return Page{}, perr.Store(err, "count matches")
	}

	out := make([]Summary, 0, len(items))
	for _, p := range items {
		out = append(out, Summary{Search: p, Matches: counts[p.ID]})
	}
	return Page{Items: out, Limit: limit, Offset: offset, Total: total}, nil
}

// Patch es el allow-list de campos editables. owner, created_at y status no se pueden expresar.
// nil = no tocar.
type Patch struct {
	Name         *string
	Breed        *string
	Age          *int
	Description  *string
	Images       []string
	LastSeen     *LastSeenInput
	SearchConfig *SearchConfigInput
}

// Update aplica el patch. Existencia y ownership se resuelven antes de validar los campos.
func (s *Service) Update(ctx context.Context, id, callerID string, p Patch) (Search, error) {
	id = strings.TrimSpace(id)
	if _, err := s.Authorize(ctx, id, callerID); err != nil {
		return Search{}, err
	}

	var v fieldErrors
	var name, description string
	if p.Name != nil {
		if name = strings.TrimSpace(*p.Name); name == "" {
			v.add("name", "name cannot be empty")
		}
	}
	checkAge(&v, p.Age)
	if p.Description != nil {
		if description = strings.TrimSpace(*p.Description); description == "" {
			v.add("description", "description cannot be empty")
		}
	}
	var images []string
	if p.Images != nil {
		images = checkImages(&v, p.Images)
	}
	var lastSeen LastSeen
	if p.LastSeen != nil {
		lastSeen = checkLastSeen(&v, *p.LastSeen)
	}
	if err := v.err(); err != nil {
		return Search{}, err
	}

	// ensureOwner otra vez sobre la versión bloqueada
	updated, err := s.repo.Mutate(ctx, id, func(cur *Search) error {
		if err := ensureOwner(*cur, callerID); err != nil {
			return err
		}
		if p.Name != nil {
			cur.Subject.Name = name
		}
		if p.Breed != nil {
			cur.Subject.Breed = strings.TrimSpace(*p.Breed)
		}
		if p.Age != nil {
			cur.Subject.Age = p.Age
		}
		if p.Description != nil {
			cur.Description = description
		}
		if p.Images != nil {
			cur.Images = images
		}
		if p.LastSeen != nil {
			cur.LastSeen = lastSeen
		}
		if p.SearchConfig != nil {
			var cv fieldErrors
			cur.SearchConfig = checkSearchConfig(&cv, *p.SearchConfig, cur.SearchConfig)
			if err := cv.err(); err != nil {
				return err
			}
		}
		cur.UpdatedAt = s.stamp(cur.UpdatedAt)
		return nil
	})
	if err != nil {
		return Search{}, perr.Store(err, "update pet")
	}
	return updated, nil
}

// TransitionStatus cambia el estado. Entrar en found setea found_at; cualquier otro estado lo limpia.
// Salir de searching frena el scraping; volver a searching lo re-arma.
func (s *Service) TransitionStatus(ctx context.Context, id, callerID string, status Status, notes *string) (Search, error) {
	id = strings.TrimSpace(id)
	if _, err := s.Authorize(ctx, id, callerID); err != nil {
		return Search{}, err
	}
	if !status.Valid() {
		return Search{}, perr.InvalidField("status", "status must be one of searching, found, cancelled")
	}

	var prev Status
	updated, err := s.repo.Mutate(ctx, id, func(cur *Search) error {
		if err := ensureOwner(*cur, callerID); err != nil {
			return err
		}
		prev = cur.Status
		now := s.stamp(cur.UpdatedAt)

		cur.Status = status
		if notes != nil {
			cur.StatusNotes = strings.TrimSpace(*notes)
		}
		switch {
		case status != StatusFound:
			cur.FoundAt = nil
		case prev != StatusFound || cur.FoundAt == nil:
			cur.FoundAt = &now
		}
		cur.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Search{}, perr.Store(err, "transition pet status")
	}

	logger.From(ctx).Info().
		Str("pet_id", updated.ID).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("search status changed")

	if status != StatusSearching {
		s.notifier.NotifyScrapingStop(updated.ID)
	} else if prev != StatusSearching {
		s.notifier.NotifyScrapingStart(updated.ID, string(updated.Subject.Species), updated.LastSeen.Location, slices.Clone(updated.SearchConfig.Sources))
	}
	return updated, nil
}

// Delete borra búsqueda y matches de forma atómica. Verificado el dueño, el stop de scraping
// sale antes del borrado y no depende de que el borrado funcione.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	id = strings.TrimSpace(id)
	if _, err := s.Authorize(ctx, id, callerID); err != nil {
		return err
	}

	s.notifier.NotifyScrapingStop(id)

	err := s.repo.DeleteCascade(ctx, id, func(cur Search) error {
		return ensureOwner(cur, callerID)
	})
	if err != nil {
		return perr.Store(err, "delete pet")
	}

	logger.From(ctx).Info().Str("pet_id", id).Msg("search deleted")
	return nil
}

func (s *Service) AccountStats(ctx context.Context, ownerUserID string) (AccountStats, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return AccountStats{}, perr.New(perr.KindUnauthorized, "unauthorized")
	}
	counts, err := s.repo.StatusCounts(ctx, ownerUserID)
	if err != nil {
		return AccountStats{}, perr.Store(err, "account stats")
	}
	st := AccountStats{
		ActiveSearches: counts[StatusSearching],
		FoundPets:      counts[StatusFound],
	}
	for _, n := range counts {
		st.TotalSearches += n
	}
	return st, nil
}

// stamp devuelve now, nunca anterior a prev (updated_at no retrocede).
func (s *Service) stamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}

// validación compartida por Create y Update

type fieldErrors []perr.FieldError

func (v *fieldErrors) add(field, msg string) {
	*v = append(*v, perr.FieldError{Field: field, Message: msg})
}

func (v fieldErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return perr.Validation(v...)
}

func checkAge(v *fieldErrors, age *int) {
	if age != nil && (*age < 0 || *age > MaxAge) {
		v.add("age", fmt.Sprintf("age must be between 0 and %d", MaxAge))
	}
}

func checkImages(v *fieldErrors, in []string) []string {
	out := make([]string, 0, len(in))
	for _, img := range in {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		v.add("images", "at least one image is required")
	}
	return out
}

func checkLastSeen(v *fieldErrors, in LastSeenInput) LastSeen {
	out := LastSeen{Location: strings.TrimSpace(in.Location)}
	if out.Location == "" {
		v.add("last_seen.location", "location is required")
	}
	if c := in.Coordinates; c != nil {
		if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 || math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
			v.add("last_seen.coordinates", "coordinates out of range")
		} else {
			cc := *c
			out.Coordinates = &cc
		}
	}
	d, err := ParseDate(in.Date)
	if err != nil {
		v.add("last_seen.date", "date must be RFC3339 or YYYY-MM-DD")
	}
	out.Date = d
	return out
}

func checkSearchConfig(v *fieldErrors, in SearchConfigInput, base SearchConfig) SearchConfig {
	out := SearchConfig{RadiusKm: base.RadiusKm, Sources: slices.Clone(base.Sources)}
	if in.RadiusKm != nil {
		if r := *in.RadiusKm; math.IsNaN(r) || r <= 0 {
			v.add("search_config.radius", "radius must be a positive number")
		} else {
			out.RadiusKm = r
		}
	}
	if in.Sources != nil {
		seen := make(map[string]struct{}, len(in.Sources))
		sources := make([]string, 0, len(in.Sources))
		for _, src := range in.Sources {
			src = strings.ToLower(strings.TrimSpace(src))
			if src == "" {
				continue
			}
			if _, dup := seen[src]; dup {
				continue
			}
			seen[src] = struct{}{}
			sources = append(sources, src)
		}
		if len(sources) == 0 {
			v.add("search_config.sources", "at least one source is required")
		} else {
			out.Sources = sources
		}
	}
	return out
}

// ParseDate acepta RFC3339 o YYYY-MM-DD (UTC).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
