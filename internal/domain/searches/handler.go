package searches

import (
	"net/http"
	"strings"
	"time"

	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/middleware"
	perr "findmypet-search/internal/platform/errors"
	"findmypet-search/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createSearchHandler(svc))
		pr.Get("/", listSearchesHandler(svc))

		pr.Get("/{petID}", getSearchHandler(svc))
		pr.Put("/{petID}", updateSearchHandler(svc))
		pr.Patch("/{petID}", updateSearchHandler(svc))
		pr.Delete("/{petID}", deleteSearchHandler(svc))

		pr.Put("/{petID}/status", transitionStatusHandler(svc))
	})

	r.Get("/me/stats", accountStatsHandler(svc))
}

type coordinatesPayload struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type lastSeenRequest struct {
	Location    string              `json:"location" validate:"required"`
	Coordinates *coordinatesPayload `json:"coordinates"`
	Date        string              `json:"date" validate:"required"` // RFC3339 o YYYY-MM-DD
}

type searchConfigRequest struct {
	Radius  *float64 `json:"radius" validate:"omitempty,gt=0"`
	Sources []string `json:"sources" validate:"omitempty,dive,required"`
}

// createSearchRequest es el cuerpo para registrar una búsqueda. Las imágenes ya vienen subidas.
type createSearchRequest struct {
	Name         string               `json:"name" validate:"required"`
	Species      string               `json:"species" validate:"required,oneof=dog cat" enums:"dog,cat"`
	Breed        string               `json:"breed"`
	Age          *int                 `json:"age" validate:"omitempty,min=0,max=30"`
	Description  string               `json:"description" validate:"required"`
	Images       []string             `json:"images" validate:"min=1,dive,required"`
	LastSeen     lastSeenRequest      `json:"last_seen"`
	SearchConfig *searchConfigRequest `json:"search_config"`
}

// updateSearchRequest: nil = no tocar. Campos fuera de esta lista se descartan.
type updateSearchRequest struct {
	Name         *string              `json:"name"`
	Breed        *string              `json:"breed"`
	Age          *int                 `json:"age" validate:"omitempty,min=0,max=30"`
	Description  *string              `json:"description"`
	Images       []string             `json:"images" validate:"omitempty,dive,required"`
	LastSeen     *lastSeenRequest     `json:"last_seen"`
	SearchConfig *searchConfigRequest `json:"search_config"`
}

type transitionStatusRequest struct {
	Status Status  `json:"status" validate:"required" enums:"searching,found,cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

type lastSeenResponse struct {
	Location    string              `json:"location"`
	Coordinates *coordinatesPayload `json:"coordinates,omitempty"`
	Date        time.Time           `json:"date"`
}

type searchConfigResponse struct {
	Radius  float64  `json:"radius"`
	Sources []string `json:"sources"`
}

// searchResponse representa una búsqueda devuelta por la API.
type searchResponse struct {
	ID                   string               `json:"id"`
	OwnerUserID          string               `json:"owner_user_id"`
	Name                 string               `json:"name"`
	Species              Species              `json:"species"`
	Breed                string               `json:"breed,omitempty"`
	Age                  *int                 `json:"age,omitempty"`
	Description          string               `json:"description"`
	Images               []string             `json:"images"`
	LastSeen             lastSeenResponse     `json:"last_seen"`
	Status               Status               `json:"status"`
	SearchConfig         searchConfigResponse `json:"search_config"`
	StatusNotes          string               `json:"status_notes,omitempty"`
	FoundAt              *time.Time           `json:"found_at,omitempty"`
	LastConfirmedMatchAt *time.Time           `json:"last_confirmed_match_at,omitempty"`
	ConfirmedMatchCount  int                  `json:"confirmed_match_count"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

type searchSummaryResponse struct {
	searchResponse
	TotalMatches   int `json:"total_matches"`
	PendingMatches int `json:"pending_matches"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type listSearchesResponse struct {
	Pets       []searchSummaryResponse `json:"pets"`
	Pagination pagination              `json:"pagination"`
}

type searchDetailResponse struct {
	Pet           searchResponse     `json:"pet"`
	RecentMatches []matches.Response `json:"recent_matches"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type accountStatsResponse struct {
	TotalSearches  int `json:"total_searches"`
	ActiveSearches int `json:"active_searches"`
	FoundPets      int `json:"found_pets"`
}

// createSearchHandler godoc
// @Summary Crear búsqueda de mascota
// @Description Registra una búsqueda en estado searching y dispara extracción de features y scraping (best-effort, no afecta la respuesta).
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createSearchRequest true "last_seen.date en RFC3339 o YYYY-MM-DD"
// @Success 201 {object} searchResponse
// @Failure 400 {object} errors.Wire "validation_error"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Router /pets [post]
func createSearchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		req, err := httpx.DecodeJSON[createSearchRequest](r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		p, err := svc.Create(r.Context(), userID, CreateInput{
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			Age:          req.Age,
			Description:  req.Description,
			Images:       req.Images,
			LastSeen:     req.LastSeen.toInput(),
			SearchConfig: req.SearchConfig.toInput(),
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toSearchResponse(p))
	}
}

// listSearchesHandler godoc
// @Summary Listar mis búsquedas
// @Description Búsquedas del caller ordenadas por created_at desc, con total_matches y pending_matches.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "searching | found | cancelled"
// @Param limit query int false "Default 10, máximo 100"
// @Param offset query int false "Default 0"
// @Success 200 {object} listSearchesResponse
// @Failure 400 {object} errors.Wire "status inválido"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Router /pets [get]
func listSearchesHandler(svc *Service) http.HandlerFunc {
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

		page, err := svc.ListByOwner(r.Context(), userID, ListQuery{
			Status: Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]searchSummaryResponse, 0, len(page.Items))
		for _, it := range page.Items {
			out = append(out, searchSummaryResponse{
				searchResponse: toSearchResponse(it.Search),
				TotalMatches:   it.Matches.Total,
				PendingMatches: it.Matches.Pending,
			})
		}
		httpx.WriteJSON(w, http.StatusOK, listSearchesResponse{
			Pets:       out,
			Pagination: pagination{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
		})
	}
}

// getSearchHandler godoc
// @Summary Obtener búsqueda
// @Description Devuelve la búsqueda y sus 5 matches más recientes. Solo el dueño.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Success 200 {object} searchDetailResponse
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID} [get]
func getSearchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		d, err := svc.Get(r.Context(), chi.URLParam(r, "petID"), userID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		recent := make([]matches.Response, 0, len(d.RecentMatches))
		for _, m := range d.RecentMatches {
			recent = append(recent, matches.ToResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, searchDetailResponse{
			Pet:           toSearchResponse(d.Search),
			RecentMatches: recent,
		})
	}
}

// updateSearchHandler godoc
// @Summary Actualizar búsqueda
// @Description Actualiza los campos editables (name, breed, age, description, images, last_seen, search_config). owner_user_id, created_at y status se ignoran; el estado se cambia con PUT /pets/{petID}/status.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Param payload body updateSearchRequest true "Campos a modificar"
// @Success 200 {object} searchResponse
// @Failure 400 {object} errors.Wire "validation_error"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID} [patch]
// @Router /pets/{petID} [put]
func updateSearchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		// ownership antes que el body: un no-dueño recibe 403 aunque el payload sea inválido
		petID := chi.URLParam(r, "petID")
		if _, err := svc.Authorize(r.Context(), petID, userID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		req, err := httpx.DecodeJSON[updateSearchRequest](r, httpx.AllowUnknownFields())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		patch := Patch{
			Name:         req.Name,
			Breed:        req.Breed,
			Age:          req.Age,
			Description:  req.Description,
			Images:       req.Images,
			SearchConfig: req.SearchConfig.toInput(),
		}
		if req.LastSeen != nil {
			ls := req.LastSeen.toInput()
			patch.LastSeen = &ls
		}

		updated, err := svc.Update(r.Context(), petID, userID, patch)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toSearchResponse(updated))
	}
}

// transitionStatusHandler godoc
// @Summary Cambiar estado de búsqueda
// @Description searching | found | cancelled. Salir de searching frena el scraping; volver a searching lo reinicia.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Param payload body transitionStatusRequest true "Nuevo estado y notas opcionales"
// @Success 200 {object} searchResponse
// @Failure 400 {object} errors.Wire "estado inválido"
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID}/status [put]
func transitionStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.Authorize(r.Context(), petID, userID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		req, err := httpx.DecodeJSON[transitionStatusRequest](r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		updated, err := svc.TransitionStatus(r.Context(), petID, userID, req.Status, req.Notes)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toSearchResponse(updated))
	}
}

// deleteSearchHandler godoc
// @Summary Eliminar búsqueda
// @Description Borra la búsqueda y todos sus matches en una sola transacción y frena el scraping.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la búsqueda"
// @Success 200 {object} messageResponse
// @Failure 401 {object} errors.Wire "unauthorized"
// @Failure 403 {object} errors.Wire "forbidden"
// @Failure 404 {object} errors.Wire "pet not found"
// @Router /pets/{petID} [delete]
func deleteSearchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), userID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "search deleted"})
	}
}

// accountStatsHandler godoc
// @Summary Estadísticas de la cuenta
// @Description Total de búsquedas, activas (searching) y mascotas encontradas del caller.
// @Tags me
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} accountStatsResponse
// @Failure 401 {object} errors.Wire "unauthorized"
// @Router /me/stats [get]
func accountStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			httpx.WriteError(w, r, perr.New(perr.KindUnauthorized, "unauthorized"))
			return
		}

		st, err := svc.AccountStats(r.Context(), userID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, accountStatsResponse{
			TotalSearches:  st.TotalSearches,
			ActiveSearches: st.ActiveSearches,
			FoundPets:      st.FoundPets,
		})
	}
}

func (l lastSeenRequest) toInput() LastSeenInput {
	in := LastSeenInput{Location: l.Location, Date: l.Date}
	if l.Coordinates != nil {
		in.Coordinates = &Coordinates{Lat: l.Coordinates.Lat, Lng: l.Coordinates.Lng}
	}
	return in
}

func (c *searchConfigRequest) toInput() *SearchConfigInput {
	if c == nil {
		return nil
	}
	return &SearchConfigInput{RadiusKm: c.Radius, Sources: c.Sources}
}

func toSearchResponse(p Search) searchResponse {
	out := searchResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Subject.Name,
		Species:     p.Subject.Species,
		Breed:       p.Subject.Breed,
		Age:         p.Subject.Age,
		Description: p.Description,
		Images:      p.Images,
		LastSeen: lastSeenResponse{
			Location: p.LastSeen.Location,
			Date:     p.LastSeen.Date,
		},
		Status: p.Status,
		SearchConfig: searchConfigResponse{
			Radius:  p.SearchConfig.RadiusKm,
			Sources: p.SearchConfig.Sources,
		},
		StatusNotes:          p.StatusNotes,
		FoundAt:              p.FoundAt,
		LastConfirmedMatchAt: p.LastConfirmedMatchAt,
		ConfirmedMatchCount:  p.ConfirmedMatchCount,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if c := p.LastSeen.Coordinates; c != nil {
		out.LastSeen.Coordinates = &coordinatesPayload{Lat: c.Lat, Lng: c.Lng}
	}
	return out
}
