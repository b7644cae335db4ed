package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "findmypet-search/internal/adapters/storage/memory"
	pg "findmypet-search/internal/adapters/storage/postgres"
	notify "findmypet-search/internal/adapters/workers"
	_ "findmypet-search/internal/docs"
	"findmypet-search/internal/domain/matches"
	"findmypet-search/internal/domain/searches"
	"findmypet-search/internal/middleware"
	"findmypet-search/internal/platform/config"
	"findmypet-search/internal/platform/httpx"
	"findmypet-search/internal/platform/logger"
	"findmypet-search/internal/ports/auth"
	"findmypet-search/internal/ports/workers"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger *logger.Logger
	Config config.Config

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Notifier hacia AI/scraping. nil => no se avisa a nadie.
	Notifier workers.Notifier

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

// notifierStats lo implementa el Dispatcher; /health lo muestra si está.
type notifierStats interface {
	Stats() notify.Stats
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.DebugUserHeader, middleware.WorkerKeyHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	var (
		searchRepo searches.Repository
		matchRepo  matches.Repository
		store      = "memory"
	)
	if opts.DB != nil {
		searchRepo = pg.NewSearchesRepo(opts.DB)
		matchRepo = pg.NewMatchesRepo(opts.DB)
		store = "postgres"
	} else {
		st := mem.NewStore()
		searchRepo = st.Searches()
		matchRepo = st.Matches()
	}

	r.Get("/health", healthHandler(opts, store))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Services por módulo
	searchesSvc := searches.NewService(searchRepo, matchRepo, opts.Notifier)
	matchesSvc := matches.NewService(matchRepo, searchesSvc)

	// Rutas por módulo
	searches.RegisterRoutes(r, searchesSvc)
	matches.RegisterRoutes(r, matchesSvc, middleware.RequireWorkerKey(opts.Config.WorkerAPIKey))

	return r
}

type healthResponse struct {
	Status   string        `json:"status"`
	Store    string        `json:"store"`
	Notifier *notify.Stats `json:"notifier,omitempty"`
}

func healthHandler(opts Options, store string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Store: store}
		if s, ok := opts.Notifier.(notifierStats); ok {
			st := s.Stats()
			resp.Notifier = &st
		}

		status := http.StatusOK
		if opts.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.DB.PingContext(ctx); err != nil {
				logger.From(r.Context()).Error().Err(err).Msg("health: db ping failed")
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		httpx.WriteJSON(w, status, resp)
	}
}
