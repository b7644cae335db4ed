package memory

import (
	"slices"
	"sync"

	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/domain/searches"
)

// Store guarda búsquedas y matches bajo un mismo mutex: cada operación es serializable
// contra las dos colecciones (cascade delete y confirm+increment incluidos).
type Store struct {
	mu sync.RWMutex

	searches map[string]searches.Search
	matches  map[string]matches.Match
	byPet    map[string]map[string]struct{} // petID -> matchIDs
}

func NewStore() *Store {
	return &Store{
		searches: make(map[string]searches.Search),
		matches:  make(map[string]matches.Match),
		byPet:    make(map[string]map[string]struct{}),
	}
}

// Searches devuelve la vista searches.Repository del store.
func (s *Store) Searches() *SearchesRepo { return &SearchesRepo{st: s} }

// Matches devuelve la vista matches.Repository del store.
func (s *Store) Matches() *MatchesRepo { return &MatchesRepo{st: s} }

// los clones evitan que un caller modifique slices/punteros guardados

func cloneSearch(p searches.Search) searches.Search {
	p.Images = slices.Clone(p.Images)
	p.SearchConfig.Sources = slices.Clone(p.SearchConfig.Sources)
	if p.Subject.Age != nil {
		a := *p.Subject.Age
		p.Subject.Age = &a
	}
	if p.LastSeen.Coordinates != nil {
		c := *p.LastSeen.Coordinates
		p.LastSeen.Coordinates = &c
	}
	p.FoundAt = cloneTime(p.FoundAt)
	p.LastConfirmedMatchAt = cloneTime(p.LastConfirmedMatchAt)
	return p
}

func cloneMatch(m matches.Match) matches.Match {
	m.ReviewedAt = cloneTime(m.ReviewedAt)
	return m
}

func cloneTime[T any](t *T) *T {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
