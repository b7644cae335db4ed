package matches

import (
	"context"

	perr "findmypet-search/internal/platform/errors"
)

var (
	ErrNotFound       = perr.New(perr.KindNotFound, "match not found")
	ErrParentNotFound = perr.New(perr.KindNotFound, "pet not found")
)

type ListFilter struct {
	Status Status // vacío = todos
	Limit  int
	Offset int
}

// ReviewFunc recibe el padre y el match bloqueados y devuelve el match a persistir.
// Si devuelve error no se escribe nada.
type ReviewFunc func(parent ParentRef, current Match) (Match, error)

type Repository interface {
	// Create falla con ErrParentNotFound si la búsqueda no existe (chequeo atómico con el insert).
	Create(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, error)

	// ListByPet devuelve la página ordenada por ranking y el total filtrado.
	ListByPet(ctx context.Context, petID string, f ListFilter) ([]Match, int, error)
	AllByPet(ctx context.Context, petID string) ([]Match, error)
	Recent(ctx context.Context, petID string, n int) ([]Match, error)
	CountsByPets(ctx context.Context, petIDs []string) (map[string]Counts, error)

	// Review aplica fn con padre y match bloqueados. Si el match pasa de pending a confirmed,
	// en la misma unidad incrementa confirmed_match_count y setea last_confirmed_match_at del padre.
	Review(ctx context.Context, matchID string, fn ReviewFunc) (Match, error)
}

// ParentLookup resuelve el dueño de una búsqueda. Lo implementa searches.Service;
// se define acá para evitar ciclo de imports.
type ParentLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}
