package searches

import (
	"context"
	"strings"

	perr "findmypet-search/internal/platform/errors"
)

// OwnerOf expone el ownerUserID de una búsqueda.
// Lo consume matches (vía matches.ParentLookup) para no importar este paquete.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// Authorize carga la búsqueda y verifica que callerID sea el dueño.
func (s *Service) Authorize(ctx context.Context, petID, callerID string) (Search, error) {
	if strings.TrimSpace(callerID) == "" {
		return Search{}, perr.New(perr.KindUnauthorized, "unauthorized")
	}
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Search{}, err
	}
	if err := ensureOwner(p, callerID); err != nil {
		return Search{}, err
	}
	return p, nil
}

func ensureOwner(p Search, callerID string) error {
	if p.OwnerUserID != callerID {
		return perr.ErrForbidden
	}
	return nil
}
