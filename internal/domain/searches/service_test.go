package searches_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"findmypet-search/internal/adapters/storage/memory"
	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/domain/searches"
	perr "findmypet-search/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	features []string
	starts   []string
	stops    []string
}

func (n *recordingNotifier) NotifyFeatureExtraction(petID string, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.features = append(n.features, petID)
}

func (n *recordingNotifier) NotifyScrapingStart(petID, _, _ string, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.starts = append(n.starts, petID)
}

func (n *recordingNotifier) NotifyScrapingStop(petID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops = append(n.stops, petID)
}

// tickClock avanza un segundo por llamada.
func tickClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	store    *memory.Store
	svc      *searches.Service
	matches  *matches.Service
	notifier *recordingNotifier
}

func newFixture() fixture {
	st := memory.NewStore()
	n := &recordingNotifier{}
	clock := tickClock()
	svc := searches.NewService(st.Searches(), st.Matches(), n, searches.WithClock(clock))
	return fixture{
		store:    st,
		svc:      svc,
		matches:  matches.NewService(st.Matches(), svc, matches.WithClock(clock)),
		notifier: n,
	}
}

func validInput() searches.CreateInput {
	return searches.CreateInput{
		Name:        "Luna",
		Species:     "cat",
		Description: "gata gris con mancha blanca",
		Images:      []string{"https://cdn/luna.jpg"},
		LastSeen:    searches.LastSeenInput{Location: "Villa Crespo", Date: "2026-03-30"},
	}
}

func (f fixture) create(t *testing.T, owner string) searches.Search {
	t.Helper()
	p, err := f.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)
	return p
}

func TestCreate_InitialState(t *testing.T) {
	f := newFixture()
	p := f.create(t, "owner")

	assert.Equal(t, searches.StatusSearching, p.Status)
	assert.Zero(t, p.ConfirmedMatchCount)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Nil(t, p.FoundAt)
	assert.Equal(t, float64(searches.DefaultRadiusKm), p.SearchConfig.RadiusKm)
	assert.Equal(t, []string{"facebook", "instagram"}, p.SearchConfig.Sources)
	assert.Equal(t, time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC), p.LastSeen.Date)

	assert.Equal(t, []string{p.ID}, f.notifier.features)
	assert.Equal(t, []string{p.ID}, f.notifier.starts)

	stored, err := f.svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
}

func TestCreate_Validation(t *testing.T) {
	cases := map[string]func(in *searches.CreateInput){
		"images":             func(in *searches.CreateInput) { in.Images = nil },
		"species":            func(in *searches.CreateInput) { in.Species = "bird" },
		"last_seen.date":     func(in *searches.CreateInput) { in.LastSeen.Date = "ayer" },
		"last_seen.location": func(in *searches.CreateInput) { in.LastSeen.Location = " " },
		"name":               func(in *searches.CreateInput) { in.Name = "" },
		"age": func(in *searches.CreateInput) {
			age := 31
			in.Age = &age
		},
		"search_config.radius": func(in *searches.CreateInput) {
			r := -2.0
			in.SearchConfig = &searches.SearchConfigInput{RadiusKm: &r}
		},
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newFixture()
			in := validInput()
			mutate(&in)

			_, err := f.svc.Create(context.Background(), "owner", in)
			require.Error(t, err)
			e, ok := perr.As(err)
			require.True(t, ok)
			assert.Equal(t, perr.KindValidation, e.Kind())
			require.NotEmpty(t, e.Fields())
			assert.Equal(t, field, e.Fields()[0].Field)

			assert.Empty(t, f.notifier.features)
			assert.Empty(t, f.notifier.starts)
		})
	}
}

func TestCreate_AcceptsRFC3339AndCustomConfig(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.LastSeen.Date = "2026-03-30T18:45:00-03:00"
	r := 25.0
	in.SearchConfig = &searches.SearchConfigInput{RadiusKm: &r, Sources: []string{"Facebook", "facebook", " marketplace "}}

	p, err := f.svc.Create(context.Background(), "owner", in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 30, 21, 45, 0, 0, time.UTC), p.LastSeen.Date)
	assert.Equal(t, 25.0, p.SearchConfig.RadiusKm)
	assert.Equal(t, []string{"facebook", "marketplace"}, p.SearchConfig.Sources)
}

func TestTransitionStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	notes := "apareció en la veterinaria"
	found, err := f.svc.TransitionStatus(ctx, p.ID, "owner", searches.StatusFound, &notes)
	require.NoError(t, err)
	require.NotNil(t, found.FoundAt)
	assert.Equal(t, notes, found.StatusNotes)
	assert.True(t, found.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, []string{p.ID}, f.notifier.stops)

	// found -> found conserva el stamp original
	again, err := f.svc.TransitionStatus(ctx, p.ID, "owner", searches.StatusFound, nil)
	require.NoError(t, err)
	assert.Equal(t, *found.FoundAt, *again.FoundAt)
	assert.Equal(t, notes, again.StatusNotes)

	// volver a searching limpia found_at y re-arma el scraping
	back, err := f.svc.TransitionStatus(ctx, p.ID, "owner", searches.StatusSearching, nil)
	require.NoError(t, err)
	assert.Nil(t, back.FoundAt)
	assert.Equal(t, []string{p.ID, p.ID}, f.notifier.starts)

	cancelled, err := f.svc.TransitionStatus(ctx, p.ID, "owner", searches.StatusCancelled, nil)
	require.NoError(t, err)
	assert.Nil(t, cancelled.FoundAt)
	assert.Len(t, f.notifier.stops, 3)
}

func TestTransitionStatus_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	_, err := f.svc.TransitionStatus(ctx, p.ID, "owner", searches.Status("lost"), nil)
	assert.True(t, perr.IsKind(err, perr.KindValidation))

	_, err = f.svc.TransitionStatus(ctx, p.ID, "intruder", searches.StatusFound, nil)
	assert.ErrorIs(t, err, perr.ErrForbidden)

	_, err = f.svc.TransitionStatus(ctx, "missing", "owner", searches.StatusFound, nil)
	assert.True(t, perr.IsKind(err, perr.KindNotFound))

	// nada cambió ni se notificó
	cur, _ := f.svc.GetByID(ctx, p.ID)
	assert.Equal(t, searches.StatusSearching, cur.Status)
	assert.Empty(t, f.notifier.stops)
}

func TestUpdate_AllowListAndOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	name := "Luna II"
	age := 3
	updated, err := f.svc.Update(ctx, p.ID, "owner", searches.Patch{
		Name:   &name,
		Age:    &age,
		Images: []string{"https://cdn/1.jpg", "https://cdn/2.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Luna II", updated.Subject.Name)
	assert.Equal(t, 3, *updated.Subject.Age)
	assert.Len(t, updated.Images, 2)
	assert.Equal(t, p.OwnerUserID, updated.OwnerUserID)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.Equal(t, p.Status, updated.Status)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, "gata gris con mancha blanca", updated.Description)

	_, err = f.svc.Update(ctx, p.ID, "intruder", searches.Patch{Name: &name})
	assert.ErrorIs(t, err, perr.ErrForbidden)

	_, err = f.svc.Update(ctx, "missing", "owner", searches.Patch{Name: &name})
	assert.True(t, perr.IsKind(err, perr.KindNotFound))

	_, err = f.svc.Update(ctx, p.ID, "owner", searches.Patch{Images: []string{}})
	assert.True(t, perr.IsKind(err, perr.KindValidation))
}

func TestGet_OwnerOnlyWithRecentMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	base := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		_, err := f.matches.Append(ctx, matches.AppendInput{
			PetID: p.ID, SourcePlatform: "facebook", Confidence: float64(10 * i), ScrapedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	d, err := f.svc.Get(ctx, p.ID, "owner")
	require.NoError(t, err)
	require.Len(t, d.RecentMatches, searches.RecentMatches)
	assert.Equal(t, base.Add(6*time.Minute), d.RecentMatches[0].ScrapedAt)

	_, err = f.svc.Get(ctx, p.ID, "intruder")
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, err = f.svc.Get(ctx, "missing", "owner")
	assert.True(t, perr.IsKind(err, perr.KindNotFound))
}

func TestListByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first := f.create(t, "owner")
	second := f.create(t, "owner")
	f.create(t, "someone-else")

	_, err := f.matches.Append(ctx, matches.AppendInput{PetID: first.ID, SourcePlatform: "instagram", Confidence: 70})
	require.NoError(t, err)
	m, err := f.matches.Append(ctx, matches.AppendInput{PetID: first.ID, SourcePlatform: "facebook", Confidence: 60})
	require.NoError(t, err)
	_, err = f.matches.Review(ctx, m.ID, "owner", matches.StatusRejected, nil)
	require.NoError(t, err)

	page, err := f.svc.ListByOwner(ctx, "owner", searches.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, searches.DefaultListLimit, page.Limit)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].Search.ID)
	assert.Equal(t, matches.Counts{Total: 2, Pending: 1}, page.Items[1].Matches)

	page, err = f.svc.ListByOwner(ctx, "owner", searches.ListQuery{Limit: 1000, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, searches.MaxListLimit, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].Search.ID)

	_, err = f.svc.ListByOwner(ctx, "owner", searches.ListQuery{Status: "lost"})
	assert.True(t, perr.IsKind(err, perr.KindValidation))
}

func TestDelete_Cascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")
	for i := 0; i < 3; i++ {
		_, err := f.matches.Append(ctx, matches.AppendInput{PetID: p.ID, SourcePlatform: "facebook", Confidence: 50})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID, "intruder"), perr.ErrForbidden)
	page, err := f.matches.List(ctx, p.ID, "owner", matches.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, f.notifier.stops)

	require.NoError(t, f.svc.Delete(ctx, p.ID, "owner"))
	assert.Equal(t, []string{p.ID}, f.notifier.stops)

	_, err = f.svc.GetByID(ctx, p.ID)
	assert.True(t, perr.IsKind(err, perr.KindNotFound))
	_, err = f.matches.List(ctx, p.ID, "owner", matches.ListQuery{})
	assert.True(t, perr.IsKind(err, perr.KindNotFound))

	assert.True(t, perr.IsKind(f.svc.Delete(ctx, p.ID, "owner"), perr.KindNotFound))
}

func TestAccountStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.create(t, "owner")
	b := f.create(t, "owner")
	f.create(t, "owner")
	f.create(t, "other")

	_, err := f.svc.TransitionStatus(ctx, a.ID, "owner", searches.StatusFound, nil)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, b.ID, "owner", searches.StatusCancelled, nil)
	require.NoError(t, err)

	st, err := f.svc.AccountStats(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, searches.AccountStats{TotalSearches: 3, ActiveSearches: 1, FoundPets: 1}, st)
}

func TestConcurrentTransitionsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			notes := fmt.Sprintf("n%d", i)
			_, _ = f.svc.TransitionStatus(ctx, p.ID, "owner", searches.StatusFound, &notes)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, f.svc.Delete(ctx, p.ID, "owner"))
	}()
	wg.Wait()

	_, err := f.svc.GetByID(ctx, p.ID)
	assert.True(t, perr.IsKind(err, perr.KindNotFound))
}

func TestUpdateAndTransition_OwnershipBeforeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.create(t, "owner")

	empty := ""
	_, err := f.svc.Update(ctx, p.ID, "intruder", searches.Patch{Name: &empty})
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, err = f.svc.Update(ctx, "missing", "owner", searches.Patch{Name: &empty})
	assert.True(t, perr.IsKind(err, perr.KindNotFound))

	_, err = f.svc.TransitionStatus(ctx, p.ID, "intruder", searches.Status("lost"), nil)
	assert.ErrorIs(t, err, perr.ErrForbidden)
	_, err = f.svc.TransitionStatus(ctx, "missing", "owner", searches.Status("lost"), nil)
	assert.True(t, perr.IsKind(err, perr.KindNotFound))

	// el dueño sí ve el error de validación
	_, err = f.svc.Update(ctx, p.ID, "owner", searches.Patch{Name: &empty})
	assert.True(t, perr.IsKind(err, perr.KindValidation))
}

// brokenDeleteRepo simula un store que falla al borrar.
type brokenDeleteRepo struct {
	searches.Repository
}

func (brokenDeleteRepo) DeleteCascade(context.Context, string, searches.DeleteGuard) error {
	return errors.New("connection reset")
}

func TestDelete_StopsScrapingEvenIfStoreFails(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	n := &recordingNotifier{}
	svc := searches.NewService(brokenDeleteRepo{st.Searches()}, st.Matches(), n)

	p, err := svc.Create(ctx, "owner", validInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, p.ID, "owner")
	assert.True(t, perr.IsKind(err, perr.KindStore))
	assert.Equal(t, []string{p.ID}, n.stops)

	// la búsqueda sigue ahí
	_, err = svc.GetByID(ctx, p.ID)
	assert.NoError(t, err)
}
