package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/domain/searches"
	perr "findmypet-search/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedSearch(t *testing.T, st *Store, id, owner string) {
	t.Helper()
	require.NoError(t, st.Searches().Create(context.Background(), searches.Search{
		ID:          id,
		OwnerUserID: owner,
		Images:      []string{"https://cdn/a.jpg"},
		Status:      searches.StatusSearching,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}))
}

func seedMatch(t *testing.T, st *Store, id, petID string, conf float64, at time.Time) {
	t.Helper()
	require.NoError(t, st.Matches().Create(context.Background(), matches.Match{
		ID: id, PetID: petID, SourcePlatform: "facebook", Confidence: conf, ScrapedAt: at, Status: matches.StatusPending,
	}))
}

func confirm(owner string) matches.ReviewFunc {
	return func(parent matches.ParentRef, m matches.Match) (matches.Match, error) {
		if parent.OwnerUserID != owner {
			return matches.Match{}, perr.ErrForbidden
		}
		now := t0.Add(time.Hour)
		m.Status = matches.StatusConfirmed
		m.ReviewedAt = &now
		m.ReviewedBy = owner
		return m, nil
	}
}

func TestMatches_CreateRequiresParent(t *testing.T) {
	st := NewStore()
	err := st.Matches().Create(context.Background(), matches.Match{ID: "m1", PetID: "missing"})
	assert.ErrorIs(t, err, matches.ErrParentNotFound)
}

func TestMatches_ListRankedAndPaged(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	seedMatch(t, st, "A", "p1", 90, t0.Add(10*time.Second))
	seedMatch(t, st, "B", "p1", 90, t0.Add(20*time.Second))
	seedMatch(t, st, "C", "p1", 40, t0.Add(30*time.Second))

	items, total, err := st.Matches().ListByPet(context.Background(), "p1", matches.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{items[0].ID, items[1].ID, items[2].ID})

	items, total, err = st.Matches().ListByPet(context.Background(), "p1", matches.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)

	recent, err := st.Matches().Recent(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, []string{recent[0].ID, recent[1].ID})
}

func TestReview_ConcurrentConfirmsDoNotLoseIncrements(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	const n = 50
	for i := 0; i < n; i++ {
		seedMatch(t, st, fmt.Sprintf("m%02d", i), "p1", 50, t0)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := st.Matches().Review(context.Background(), id, confirm("owner"))
			assert.NoError(t, err)
		}(fmt.Sprintf("m%02d", i))
	}
	wg.Wait()

	p, err := st.Searches().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, n, p.ConfirmedMatchCount)
	require.NotNil(t, p.LastConfirmedMatchAt)
}

func TestReview_FuncErrorWritesNothing(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	seedMatch(t, st, "m1", "p1", 50, t0)

	_, err := st.Matches().Review(context.Background(), "m1", confirm("intruder"))
	assert.ErrorIs(t, err, perr.ErrForbidden)

	m, err := st.Matches().GetByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, matches.StatusPending, m.Status)

	p, _ := st.Searches().GetByID(context.Background(), "p1")
	assert.Zero(t, p.ConfirmedMatchCount)
}

func TestDeleteCascade(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	seedSearch(t, st, "p2", "owner")
	seedMatch(t, st, "m1", "p1", 10, t0)
	seedMatch(t, st, "m2", "p1", 20, t0)
	seedMatch(t, st, "m3", "p2", 30, t0)

	denied := st.Searches().DeleteCascade(context.Background(), "p1", func(searches.Search) error { return perr.ErrForbidden })
	assert.ErrorIs(t, denied, perr.ErrForbidden)
	all, _ := st.Matches().AllByPet(context.Background(), "p1")
	assert.Len(t, all, 2)

	require.NoError(t, st.Searches().DeleteCascade(context.Background(), "p1", nil))

	_, err := st.Searches().GetByID(context.Background(), "p1")
	assert.ErrorIs(t, err, searches.ErrNotFound)
	_, err = st.Matches().GetByID(context.Background(), "m1")
	assert.ErrorIs(t, err, matches.ErrNotFound)
	all, _ = st.Matches().AllByPet(context.Background(), "p1")
	assert.Empty(t, all)

	// la otra búsqueda no se toca
	all, _ = st.Matches().AllByPet(context.Background(), "p2")
	assert.Len(t, all, 1)

	assert.ErrorIs(t, st.Searches().DeleteCascade(context.Background(), "p1", nil), searches.ErrNotFound)
}

func TestDeleteRacingReview_NoOrphans(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	for i := 0; i < 20; i++ {
		seedMatch(t, st, fmt.Sprintf("m%02d", i), "p1", 50, t0)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = st.Matches().Review(context.Background(), id, confirm("owner"))
		}(fmt.Sprintf("m%02d", i))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, st.Searches().DeleteCascade(context.Background(), "p1", nil))
	}()
	wg.Wait()

	st.mu.RLock()
	defer st.mu.RUnlock()
	assert.Empty(t, st.matches)
	assert.Empty(t, st.byPet)
}

func TestMutate_KeepsWriteOnceFields(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")

	got, err := st.Searches().Mutate(context.Background(), "p1", func(p *searches.Search) error {
		p.OwnerUserID = "someone-else"
		p.CreatedAt = t0.Add(time.Hour)
		p.Description = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", got.OwnerUserID)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, "changed", got.Description)
}

func TestListByOwner_FilterAndCounts(t *testing.T) {
	st := NewStore()
	seedSearch(t, st, "p1", "owner")
	seedSearch(t, st, "p2", "owner")
	seedSearch(t, st, "p3", "other")
	_, err := st.Searches().Mutate(context.Background(), "p2", func(p *searches.Search) error {
		p.Status = searches.StatusFound
		return nil
	})
	require.NoError(t, err)

	items, total, err := st.Searches().ListByOwner(context.Background(), "owner", searches.ListFilter{Status: searches.StatusFound, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "p2", items[0].ID)

	counts, err := st.Searches().StatusCounts(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[searches.StatusSearching])
	assert.Equal(t, 1, counts[searches.StatusFound])
}
