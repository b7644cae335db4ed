package searches

import (
	"time"

	"findmypet-search/internal/domain/matches"
)

// Species define las especies soportadas.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

func (s Species) Valid() bool { return s == SpeciesDog || s == SpeciesCat }

// Status de la búsqueda. found y cancelled frenan el scraping pero el registro sigue legible.
// @Enum searching, found, cancelled
type Status string

const (
	StatusSearching Status = "searching"
	StatusFound     Status = "found"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSearching, StatusFound, StatusCancelled:
		return true
	}
	return false
}

const (
	DefaultRadiusKm = 10
	MaxAge          = 30
)

// DefaultSources son las plataformas que se scrapean si el usuario no elige.
var DefaultSources = []string{"facebook", "instagram"}

// Subject es la mascota perdida.
type Subject struct {
	Name    string
	Species Species
	Breed   string
	Age     *int
}

type Coordinates struct {
	Lat float64
	Lng float64
}

type LastSeen struct {
	Location    string
	Coordinates *Coordinates
	Date        time.Time
}

type SearchConfig struct {
	RadiusKm float64
	Sources  []string
}

// Search es el aggregate root: una búsqueda de mascota perdida.
// OwnerUserID y CreatedAt no cambian después de Create.
type Search struct {
	ID          string
	OwnerUserID string

	Subject     Subject
	Description string
	Images      []string
	LastSeen    LastSeen

	Status       Status
	SearchConfig SearchConfig
	StatusNotes  string
	FoundAt      *time.Time

	// Cache de matches confirmados (solo lo toca matches.Repository.Review).
	LastConfirmedMatchAt *time.Time
	ConfirmedMatchCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary es una entrada del listado, con conteos de matches.
type Summary struct {
	Search  Search
	Matches matches.Counts
}

// Detail es la búsqueda con sus matches más recientes.
type Detail struct {
	Search        Search
	RecentMatches []matches.Match
}

type AccountStats struct {
	TotalSearches  int
	ActiveSearches int
	FoundPets      int
}
