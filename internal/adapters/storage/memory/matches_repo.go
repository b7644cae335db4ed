package memory

import (
	"context"
	"errors"
	"strings"

	"findmypet-search/internal/domain/matches"
)

type MatchesRepo struct {
	st *Store
}

func (r *MatchesRepo) Create(_ context.Context, m matches.Match) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("match id required")
	}
	if _, ok := r.st.searches[m.PetID]; !ok {
		return matches.ErrParentNotFound
	}
	if _, exists := r.st.matches[m.ID]; exists {
		return errors.New("match already exists")
	}

	r.st.matches[m.ID] = cloneMatch(m)
	set, ok := r.st.byPet[m.PetID]
	if !ok {
		set = make(map[string]struct{})
		r.st.byPet[m.PetID] = set
	}
	set[m.ID] = struct{}{}
	return nil
}

func (r *MatchesRepo) GetByID(_ context.Context, id string) (matches.Match, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	m, ok := r.st.matches[id]
	if !ok {
		return matches.Match{}, matches.ErrNotFound
	}
	return cloneMatch(m), nil
}

func (r *MatchesRepo) ListByPet(_ context.Context, petID string, f matches.ListFilter) ([]matches.Match, int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := r.byPetLocked(petID, f.Status)
	matches.SortRanked(out)
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *MatchesRepo) AllByPet(_ context.Context, petID string) ([]matches.Match, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := r.byPetLocked(petID, "")
	matches.SortRanked(out)
	return out, nil
}

func (r *MatchesRepo) Recent(_ context.Context, petID string, n int) ([]matches.Match, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := r.byPetLocked(petID, "")
	matches.SortRecent(out)
	return paginate(out, n, 0), nil
}

func (r *MatchesRepo) CountsByPets(_ context.Context, petIDs []string) (map[string]matches.Counts, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make(map[string]matches.Counts, len(petIDs))
	for _, petID := range petIDs {
		var c matches.Counts
		for matchID := range r.st.byPet[petID] {
			c.Total++
			if r.st.matches[matchID].Status == matches.StatusPending {
				c.Pending++
			}
		}
		out[petID] = c
	}
	return out, nil
}

func (r *MatchesRepo) Review(_ context.Context, matchID string, fn matches.ReviewFunc) (matches.Match, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	cur, ok := r.st.matches[matchID]
	if !ok {
		return matches.Match{}, matches.ErrNotFound
	}
	parent, ok := r.st.searches[cur.PetID]
	if !ok {
		return matches.Match{}, matches.ErrParentNotFound
	}

	next, err := fn(matches.ParentRef{ID: parent.ID, OwnerUserID: parent.OwnerUserID}, cloneMatch(cur))
	if err != nil {
		return matches.Match{}, err
	}
	next.ID, next.PetID, next.CreatedAt = cur.ID, cur.PetID, cur.CreatedAt

	if cur.Status == matches.StatusPending && next.Status == matches.StatusConfirmed {
		at := parent.UpdatedAt
		if next.ReviewedAt != nil {
			at = *next.ReviewedAt
		}
		parent.ConfirmedMatchCount++
		parent.LastConfirmedMatchAt = &at
		if at.After(parent.UpdatedAt) {
			parent.UpdatedAt = at
		}
		r.st.searches[parent.ID] = parent
	}

	r.st.matches[matchID] = cloneMatch(next)
	return next, nil
}

// byPetLocked asume el lock tomado.
func (r *MatchesRepo) byPetLocked(petID string, status matches.Status) []matches.Match {
	out := make([]matches.Match, 0, len(r.st.byPet[petID]))
	for matchID := range r.st.byPet[petID] {
		m := r.st.matches[matchID]
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, cloneMatch(m))
	}
	return out
}
