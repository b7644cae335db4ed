package matches

import (
	"sort"
	"time"
)

// Status del match. pending es el único estado no terminal.
// @Enum pending, confirmed, rejected
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusConfirmed || s == StatusRejected }

// Match es un avistamiento candidato que encontró un worker externo para una búsqueda.
type Match struct {
	ID    string
	PetID string

	SourcePlatform string
	Confidence     float64 // 0..100
	ScrapedAt      time.Time

	// Detalle opcional del candidato (lo manda el worker).
	PostURL  string
	ImageURL string
	Snippet  string

	Status      Status
	ReviewedAt  *time.Time
	ReviewedBy  string
	ReviewNotes string

	CreatedAt time.Time
}

// Counts es el resumen de matches que se anota en cada búsqueda del listado.
type Counts struct {
	Total   int
	Pending int
}

// ParentRef es lo mínimo que el módulo necesita de la búsqueda padre.
type ParentRef struct {
	ID          string
	OwnerUserID string
}

// SortRanked ordena por confidence desc y scrapedAt desc (id como desempate final).
func SortRanked(items []Match) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.ScrapedAt.Equal(b.ScrapedAt) {
			return a.ScrapedAt.After(b.ScrapedAt)
		}
		return a.ID < b.ID
	})
}

// SortRecent ordena por scrapedAt desc.
func SortRecent(items []Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ScrapedAt.Equal(items[j].ScrapedAt) {
			return items[i].ScrapedAt.After(items[j].ScrapedAt)
		}
		return items[i].ID < items[j].ID
	})
}
