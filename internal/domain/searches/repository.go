package searches

import (
	"context"

	"findmypet-search/internal/domain/matches"
	perr "findmypet-search/internal/platform/errors"
)

var ErrNotFound = perr.New(perr.KindNotFound, "pet not found")

type ListFilter struct {
	Status Status // vacío = todos
	Limit  int
	Offset int
}

// MutateFunc modifica la búsqueda bloqueada. Si devuelve error no se persiste nada.
type MutateFunc func(s *Search) error

// DeleteGuard se evalúa sobre la búsqueda bloqueada antes de borrar.
type DeleteGuard func(s Search) error

type Repository interface {
	Create(ctx context.Context, s Search) error
	GetByID(ctx context.Context, id string) (Search, error)

	// ListByOwner ordena por created_at desc y devuelve también el total filtrado.
	ListByOwner(ctx context.Context, ownerUserID string, f ListFilter) ([]Search, int, error)

	// Mutate es read-modify-write atómico sobre una búsqueda.
	Mutate(ctx context.Context, id string, fn MutateFunc) (Search, error)

	// DeleteCascade borra los matches y la búsqueda en una sola unidad.
	DeleteCascade(ctx context.Context, id string, guard DeleteGuard) error

	StatusCounts(ctx context.Context, ownerUserID string) (map[Status]int, error)
}

// MatchReader es lo que este módulo lee del store de matches.
type MatchReader interface {
	CountsByPets(ctx context.Context, petIDs []string) (map[string]matches.Counts, error)
	Recent(ctx context.Context, petID string, n int) ([]matches.Match, error)
}
