// Package workers implementa el Notifier: despacho detached y acotado hacia los workers externos.
package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"findmypet-search/internal/platform/logger"
	ports "findmypet-search/internal/ports/workers"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultPoolSize = 16
	DefaultTimeout  = 5 * time.Second

	ActionFeatureExtraction = "feature_extraction"
	ActionScrapingStart     = "scraping_start"
	ActionScrapingStop      = "scraping_stop"
)

type Options struct {
	PoolSize int
	Timeout  time.Duration
	Logger   *logger.Logger
}

// Stats son contadores desde el arranque (se exponen en /health).
type Stats struct {
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
	Dropped   int64 `json:"dropped"`
}

// Dispatcher corre cada notificación en un pool ants no bloqueante con timeout propio.
// Si el pool está lleno la notificación se descarta: el request nunca espera.
type Dispatcher struct {
	pool     *ants.Pool
	ai       ports.FeatureExtractor
	scraping ports.ScrapingController
	timeout  time.Duration
	log      *logger.Logger

	// mu ordena wg.Add contra Close: después de closed no se agrega nada al wg.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	succeeded atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	dropped   atomic.Int64
}

var _ ports.Notifier = (*Dispatcher)(nil)

func NewDispatcher(ai ports.FeatureExtractor, scraping ports.ScrapingController, opts Options) (*Dispatcher, error) {
	size := opts.PoolSize
	if size <= 0 {
		size = DefaultPoolSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		pool:     pool,
		ai:       ai,
		scraping: scraping,
		timeout:  timeout,
		log:      logger.Named(opts.Logger, "notifier"),
	}, nil
}

func (d *Dispatcher) NotifyFeatureExtraction(petID string, images []string) {
	d.submit(ActionFeatureExtraction, petID, func(ctx context.Context) error {
		if d.ai == nil {
			return ports.ErrNotConfigured
		}
		return d.ai.ExtractFeatures(ctx, ports.FeatureExtractionRequest{PetID: petID, Images: images})
	})
}

func (d *Dispatcher) NotifyScrapingStart(petID, species, location string, sources []string) {
	d.submit(ActionScrapingStart, petID, func(ctx context.Context) error {
		if d.scraping == nil {
			return ports.ErrNotConfigured
		}
		return d.scraping.StartScraping(ctx, ports.ScrapingStartRequest{
			PetID:    petID,
			Species:  species,
			Location: location,
			Sources:  sources,
		})
	})
}

func (d *Dispatcher) NotifyScrapingStop(petID string) {
	d.submit(ActionScrapingStop, petID, func(ctx context.Context) error {
		if d.scraping == nil {
			return ports.ErrNotConfigured
		}
		return d.scraping.StopScraping(ctx, petID)
	})
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
		Skipped:   d.skipped.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Wait bloquea hasta que terminen las notificaciones en vuelo.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Close espera lo que está en vuelo (hasta que ctx venza) y libera el pool.
// Notificaciones posteriores se cuentan como dropped.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	d.pool.Release()
	return err
}

func (d *Dispatcher) submit(action, petID string, call func(ctx context.Context) error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.drop(action, petID, ants.ErrPoolClosed)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	err := d.pool.Submit(func() {
		defer d.wg.Done()
		d.run(action, petID, call)
	})
	if err != nil {
		d.wg.Done()
		d.drop(action, petID, err)
	}
}

func (d *Dispatcher) drop(action, petID string, err error) {
	d.dropped.Add(1)
	d.log.Warn().
		Str("action", action).
		Str("pet_id", petID).
		Err(err).
		Msg("worker notification dropped")
}

func (d *Dispatcher) run(action, petID string, call func(ctx context.Context) error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			d.failed.Add(1)
			d.log.Warn().
				Str("action", action).
				Str("pet_id", petID).
				Interface("panic", rec).
				Msg("worker notification panicked")
		}
	}()

	// contexto propio: el request que disparó la notificación ya pudo haber terminado
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := call(ctx)
	switch {
	case err == nil:
		d.succeeded.Add(1)
		d.log.Debug().
			Str("action", action).
			Str("pet_id", petID).
			Dur("elapsed", time.Since(start)).
			Msg("worker notified")
	case errors.Is(err, ports.ErrNotConfigured):
		d.skipped.Add(1)
		d.log.Debug().
			Str("action", action).
			Str("pet_id", petID).
			Msg("worker not configured, notification skipped")
	default:
		d.failed.Add(1)
		d.log.Warn().
			Str("action", action).
			Str("pet_id", petID).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("worker notification failed")
	}
}
