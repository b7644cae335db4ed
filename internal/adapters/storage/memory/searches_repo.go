package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"findmypet-search/internal/domain/searches"
)

type SearchesRepo struct {
	st *Store
}

func (r *SearchesRepo) Create(_ context.Context, p searches.Search) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.st.searches[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.st.searches[p.ID] = cloneSearch(p)
	return nil
}

func (r *SearchesRepo) GetByID(_ context.Context, id string) (searches.Search, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.searches[id]
	if !ok {
		return searches.Search{}, searches.ErrNotFound
	}
	return cloneSearch(p), nil
}

func (r *SearchesRepo) ListByOwner(_ context.Context, ownerUserID string, f searches.ListFilter) ([]searches.Search, int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]searches.Search, 0)
	for _, p := range r.st.searches {
		if p.OwnerUserID != ownerUserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, cloneSearch(p))
	}

	// created_at desc, id como desempate para que la paginación sea estable
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *SearchesRepo) Mutate(_ context.Context, id string, fn searches.MutateFunc) (searches.Search, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.searches[id]
	if !ok {
		return searches.Search{}, searches.ErrNotFound
	}
	next := cloneSearch(cur)
	if err := fn(&next); err != nil {
		return searches.Search{}, err
	}
	// write-once
	next.ID, next.OwnerUserID, next.CreatedAt = cur.ID, cur.OwnerUserID, cur.CreatedAt

	r.st.searches[id] = cloneSearch(next)
	return next, nil
}

func (r *SearchesRepo) DeleteCascade(_ context.Context, id string, guard searches.DeleteGuard) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.searches[id]
	if !ok {
		return searches.ErrNotFound
	}
	if guard != nil {
		if err := guard(cloneSearch(cur)); err != nil {
			return err
		}
	}

	for matchID := range r.st.byPet[id] {
		delete(r.st.matches, matchID)
	}
	delete(r.st.byPet, id)
	delete(r.st.searches, id)
	return nil
}

func (r *SearchesRepo) StatusCounts(_ context.Context, ownerUserID string) (map[searches.Status]int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make(map[searches.Status]int)
	for _, p := range r.st.searches {
		if p.OwnerUserID == ownerUserID {
			out[p.Status]++
		}
	}
	return out, nil
}
