package matches

import (
	"net/http"
	"strings"
	"time"

	"findmypet-search/internal/middleware"
	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas de matches. workerAuth protege la ingesta de los workers.
func RegisterRoutes(r chi.Router, svc *Service, workerAuth func(http.Handler) http.Handler) {
	r.Get("/pets/{petID}/matches", listMatchesHandler(svc))
	r.Get("/pets/{petID}/matches/stats", matchStatsHandler(svc))
	r.With(workerAuth).Post("/pets/{petID}/matches", appendMatchHandler(svc))

	r.Put("/matches/{matchID}/review", reviewMatchHandler(svc))
}

// Response es un match tal como lo devuelve la API.
type Response struct {
	ID             string     `json:"id"`
	PetID          string     `json:"pet_id"`
	SourcePlatform string     `json:"source_platform"`
	Confidence     float64    `json:"confidence"`
	ScrapedAt      time.Time  `json:"scraped_at"`
	PostURL        string     `json:"post_url,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	Snippet        string     `json:"snippet,omitempty"`
	Status         Status     `json:"status"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type listMatchesResponse struct {
	Matches    []Response `json:"matches"`
	Pagination pagination `json:"pagination"`
}

// appendMatchRequest es lo que manda el worker de scraping por cada candidato.
type appendMatchRequest struct {
	SourcePlatform string   `json:"source_platform" validate:"required"`
	Confidence     *float64 `json:"confidence" validate:"required"`
	ScrapedAt      string   `json:"scraped_at"` // RFC3339, opcional
	PostURL        string   `json:"post_url" validate:"omitempty,url"`
	ImageURL       string   `json:"image_url" validate:"omitempty,url"`
	Snippet        string   `json:"snippet" validate:"max=2000"`
}

type reviewMatchRequest struct {
	Status Status  `json:"status" validate:"required" enums:"confirmed,rejected"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

type reviewMatchResponse struct {
	Message string   `json:"message"`
	Match   Response `json:"match"`
}

type statsResponse struct {
	Total             int            `json:"total"`
	Pending           int            `json:"pending"`
	Confirmed         int            `json:"confirmed"`
	Rejected          int            `json:"rejected"`
	AverageConfidence int            `json:"average_confidence"`
	ByPlatform        map[string]int `json:"by_platform"`
	LastMatch         *time.Time     `json:"last_match,omitempty"`
}

// listMatchesHandler godoc
// @Summary Listar matches de una búsqueda
// @Description Devuelve los matches ordenados por confidence desc y scraped_at desc. Solo el dueño de la búsqueda.
// @Tags matches
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Param status query string false "pending | confirmed | rejected"
// @Param limit query int false "Default 20, máximo 100"
// @Param offset query int false "Default 0"
// @Success 200 {object} listMatchesResponse
// @Failure 400 {object} errors.Wire "status inválido"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID}/matches [get]
func listMatchesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		limit, offset, err := httpx.Page(r, DefaultListLimit, MaxListLimit)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		page, err := svc.List(r.Context(), chi.URLParam(r, "petID"), userID, ListQuery{
			Status: Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]Response, 0, len(page.Items))
		for _, m := range page.Items {
			out = append(out, ToResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, listMatchesResponse{
			Matches:    out,
			Pagination: pagination{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
		})
	}
}

// matchStatsHandler godoc
// @Summary Estadísticas de matches
// @Description Totales por estado, confidence promedio, conteo por plataforma y fecha del último match.
// @Tags matches
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Success 200 {object} statsResponse
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID}/matches/stats [get]
func matchStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		st, err := svc.Stats(r.Context(), chi.URLParam(r, "petID"), userID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, statsResponse{
			Total:             st.Total,
			Pending:           st.Pending,
			Confirmed:         st.Confirmed,
			Rejected:          st.Rejected,
			AverageConfidence: st.AverageConfidence,
			ByPlatform:        st.ByPlatform,
			LastMatch:         st.LastMatch,
		})
	}
}

// appendMatchHandler godoc
// @Summary Registrar match (workers)
// @Description Ingesta de candidatos desde el worker de scraping. Requiere `X-Worker-Key` si el servicio tiene WORKER_API_KEY.
// @Tags matches
// @Accept json
// @Produce json
// @Param X-Worker-Key header string false "API key de workers internos"
// @Param petID path string true "ID de la búsqueda"
// @Param payload body appendMatchRequest true "confidence entre 0 y 100; scraped_at RFC3339 opcional"
// @Success 201 {object} Response
// @Failure 400 {object} errors.Wire "validation_error"
// @Failure 401 {object} errors.Wire "worker key inválida"
// @Router /pets/{petID}/matches [post]
func appendMatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[appendMatchRequest](r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		var scrapedAt time.Time
		if raw := strings.TrimSpace(req.ScrapedAt); raw != "" {
			scrapedAt, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.WriteError(w, r, perr.InvalidField("scraped_at", "scraped_at must be RFC3339"))
				return
			}
		}

		m, err := svc.Append(r.Context(), AppendInput{
			PetID:          chi.URLParam(r, "petID"),
			SourcePlatform: req.SourcePlatform,
			Confidence:     *req.Confidence,
			ScrapedAt:      scrapedAt,
			PostURL:        req.PostURL,
			ImageURL:       req.ImageURL,
			Snippet:        req.Snippet,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(m))
	}
}

// reviewMatchHandler godoc
// @Summary Revisar match
// @Description Confirma o rechaza un match pending. Confirmar incrementa confirmed_match_count de la búsqueda en la misma transacción.
// @Tags matches
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param matchID path string true "ID del match"
// @Param payload body reviewMatchRequest true "status confirmed | rejected"
// @Success 200 {object} reviewMatchResponse
// @Failure 400 {object} errors.Wire "status inválido / match ya revisado"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "match not found"
// @Router /matches/{matchID}/review [put]
func reviewMatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		req, err := httpx.DecodeJSON[reviewMatchRequest](r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		m, err := svc.Review(r.Context(), chi.URLParam(r, "matchID"), userID, req.Status, req.Notes)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		msg := "match rejected"
		if m.Status == StatusConfirmed {
			msg = "match confirmed"
		}
		httpx.WriteJSON(w, http.StatusOK, reviewMatchResponse{Message: msg, Match: ToResponse(m)})
	}
}

func ToResponse(m Match) Response {
	return Response{
		ID:             m.ID,
		PetID:          m.PetID,
		SourcePlatform: m.SourcePlatform,
		Confidence:     m.Confidence,
		ScrapedAt:      m.ScrapedAt,
		PostURL:        m.PostURL,
		ImageURL:       m.ImageURL,
		Snippet:        m.Snippet,
		Status:         m.Status,
		ReviewedAt:     m.ReviewedAt,
		ReviewedBy:     m.ReviewedBy,
		ReviewNotes:    m.ReviewNotes,
		CreatedAt:      m.CreatedAt,
	}
}
