//go:build integration_pg

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/domain/searches"
	perr "findmypet-search/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "findmypet",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := Open(fmt.Sprintf("postgres://postgres:postgres@%s:%s/findmypet?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db)) // idempotente
	return db
}

func newSearch(id, owner string, created time.Time) searches.Search {
	age := 4
	return searches.Search{
		ID:          id,
		OwnerUserID: owner,
		Subject:     searches.Subject{Name: "Toby", Species: searches.SpeciesDog, Age: &age},
		Description: "marrón, collar rojo",
		Images:      []string{"https://cdn/toby.jpg"},
		LastSeen: searches.LastSeen{
			Location:    "Parque Centenario",
			Coordinates: &searches.Coordinates{Lat: -34.6, Lng: -58.43},
			Date:        created.Add(-24 * time.Hour),
		},
		Status:       searches.StatusSearching,
		SearchConfig: searches.SearchConfig{RadiusKm: 10, Sources: []string{"facebook", "instagram"}},
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestPostgres_SearchAndMatchLifecycle(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	sr, mr := NewSearchesRepo(db), NewMatchesRepo(db)
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, sr.Create(ctx, newSearch("p1", "owner", t0)))
	require.NoError(t, sr.Create(ctx, newSearch("p2", "owner", t0.Add(time.Minute))))

	got, err := sr.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"facebook", "instagram"}, got.SearchConfig.Sources)
	require.NotNil(t, got.LastSeen.Coordinates)
	assert.Equal(t, 4, *got.Subject.Age)

	items, total, err := sr.ListByOwner(ctx, "owner", searches.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "p2", items[0].ID)

	// matches: ranking y FK
	for _, m := range []matches.Match{
		{ID: "A", PetID: "p1", SourcePlatform: "facebook", Confidence: 90, ScrapedAt: t0.Add(10 * time.Second)},
		{ID: "B", PetID: "p1", SourcePlatform: "instagram", Confidence: 90, ScrapedAt: t0.Add(20 * time.Second)},
		{ID: "C", PetID: "p1", SourcePlatform: "facebook", Confidence: 40, ScrapedAt: t0.Add(30 * time.Second)},
	} {
		m.Status, m.CreatedAt = matches.StatusPending, t0
		require.NoError(t, mr.Create(ctx, m))
	}
	err = mr.Create(ctx, matches.Match{ID: "X", PetID: "ghost", Status: matches.StatusPending, ScrapedAt: t0, CreatedAt: t0})
	assert.ErrorIs(t, err, matches.ErrParentNotFound)

	ranked, total, err := mr.ListByPet(ctx, "p1", matches.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"B", "A", "C"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})

	counts, err := mr.CountsByPets(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, matches.Counts{Total: 3, Pending: 3}, counts["p1"])
	assert.Equal(t, matches.Counts{}, counts["p2"])

	// review: forbidden no escribe
	_, err = mr.Review(ctx, "A", func(matches.ParentRef, matches.Match) (matches.Match, error) {
		return matches.Match{}, perr.ErrForbidden
	})
	assert.ErrorIs(t, err, perr.ErrForbidden)

	// delete cascade
	require.NoError(t, sr.DeleteCascade(ctx, "p1", nil))
	_, err = sr.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, searches.ErrNotFound)
	left, err := mr.AllByPet(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPostgres_ConcurrentConfirms(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	sr, mr := NewSearchesRepo(db), NewMatchesRepo(db)
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, sr.Create(ctx, newSearch("p1", "owner", t0)))
	const n = 10
	for i := 0; i < n; i++ {
		require.NoError(t, mr.Create(ctx, matches.Match{
			ID: fmt.Sprintf("m%d", i), PetID: "p1", SourcePlatform: "facebook", Confidence: 50,
			ScrapedAt: t0, Status: matches.StatusPending, CreatedAt: t0,
		}))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := mr.Review(ctx, id, func(_ matches.ParentRef, m matches.Match) (matches.Match, error) {
				at := t0.Add(time.Hour)
				m.Status, m.ReviewedAt, m.ReviewedBy = matches.StatusConfirmed, &at, "owner"
				return m, nil
			})
			assert.NoError(t, err)
		}(fmt.Sprintf("m%d", i))
	}
	wg.Wait()

	p, err := sr.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, n, p.ConfirmedMatchCount)
	require.NotNil(t, p.LastConfirmedMatchAt)
}
