package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"findmypet-search/internal/adapters/auth/identity"
	pg "findmypet-search/internal/adapters/storage/postgres"
	notify "findmypet-search/internal/adapters/workers"
	"findmypet-search/internal/adapters/workers/aiservice"
	"findmypet-search/internal/adapters/workers/scraping"
	"findmypet-search/internal/platform/logger"
	"findmypet-search/internal/ports/auth"
	"findmypet-search/internal/router"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el servidor HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer opened.Close()
		if err := pg.Migrate(ctx, opened); err != nil {
			return err
		}
		db = opened
	} else {
		log.Warn().Msg("FINDMYPET_DB_DSN vacío: usando store in-memory")
	}

	var verifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)
	if cfg.IdentityBaseURL != "" {
		client, err := identity.NewClient(identity.Config{BaseURL: cfg.IdentityBaseURL, APIKey: cfg.IdentityAPIKey})
		if err != nil {
			return err
		}
		verifier = identity.NewVerifier(client)
	} else {
		log.Warn().Msg("sin identity service: auth en modo dev")
	}

	ai, err := aiservice.New(aiservice.Config{BaseURL: cfg.AIServiceURL, APIKey: cfg.WorkerAPIKey, Timeout: cfg.NotifyTimeout})
	if err != nil {
		return err
	}
	scraper, err := scraping.New(scraping.Config{BaseURL: cfg.ScrapingServiceURL, APIKey: cfg.WorkerAPIKey, Timeout: cfg.NotifyTimeout})
	if err != nil {
		return err
	}
	dispatcher, err := notify.NewDispatcher(ai, scraper, notify.Options{
		PoolSize: cfg.NotifyPoolSize,
		Timeout:  cfg.NotifyTimeout,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			Logger:       log,
			Config:       cfg,
			AuthVerifier: verifier,
			Notifier:     dispatcher,
			DB:           db,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Bool("postgres", db != nil).
			Bool("ai_service", ai.IsConfigured()).
			Bool("scraping_service", scraper.IsConfigured()).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// las notificaciones en vuelo terminan o vencen por su propio timeout
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("notifier shutdown")
	}
	st := dispatcher.Stats()
	logger.Named(log, "notifier").Info().
		Int64("succeeded", st.Succeeded).
		Int64("failed", st.Failed).
		Int64("skipped", st.Skipped).
		Int64("dropped", st.Dropped).
		Msg("final stats")
	return nil
}
