package matches

import (
	"math"
	"time"
)

// Stats es el detalle de matches de una búsqueda. Se calcula siempre on demand.
type Stats struct {
	Total             int
	Pending           int
	Confirmed         int
	Rejected          int
	AverageConfidence int
	ByPlatform        map[string]int
	LastMatch         *time.Time
}

// ComputeStats es puro: mismo input, mismo output.
func ComputeStats(items []Match) Stats {
	st := Stats{ByPlatform: make(map[string]int)}
	if len(items) == 0 {
		return st
	}

	var sum float64
	var last time.Time
	for _, m := range items {
		st.Total++
		switch m.Status {
		case StatusPending:
			st.Pending++
		case StatusConfirmed:
			st.Confirmed++
		case StatusRejected:
			st.Rejected++
		}
		sum += m.Confidence
		st.ByPlatform[m.SourcePlatform]++
		if m.ScrapedAt.After(last) {
			last = m.ScrapedAt
		}
	}

	// redondeo half-up (confidence nunca es negativa)
	st.AverageConfidence = int(math.Floor(sum/float64(len(items)) + 0.5))
	if !last.IsZero() {
		st.LastMatch = &last
	}
	return st
}
