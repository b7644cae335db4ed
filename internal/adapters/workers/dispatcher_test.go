package workers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"findmypet-search/internal/platform/logger"
	ports "findmypet-search/internal/ports/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	mu    sync.Mutex
	calls []ports.FeatureExtractionRequest
	err   error
	block bool
}

func (f *fakeAI) ExtractFeatures(ctx context.Context, req ports.FeatureExtractionRequest) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakeScraper struct {
	mu      sync.Mutex
	started []string
	stopped []string
	panics  bool
}

func (f *fakeScraper) StartScraping(_ context.Context, req ports.ScrapingStartRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req.PetID)
	return nil
}

func (f *fakeScraper) StopScraping(_ context.Context, petID string) error {
	if f.panics {
		panic("scraper exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, petID)
	return nil
}

func TestDispatcher_DeliversNotifications(t *testing.T) {
	ai, sc := &fakeAI{}, &fakeScraper{}
	d, err := NewDispatcher(ai, sc, Options{PoolSize: 4, Timeout: time.Second})
	require.NoError(t, err)
	defer func() { _ = d.Close(context.Background()) }()

	d.NotifyFeatureExtraction("p1", []string{"img"})
	d.NotifyScrapingStart("p1", "dog", "Palermo", []string{"facebook"})
	d.NotifyScrapingStop("p1")
	d.Wait()

	assert.Len(t, ai.calls, 1)
	assert.Equal(t, []string{"p1"}, sc.started)
	assert.Equal(t, []string{"p1"}, sc.stopped)
	assert.Equal(t, Stats{Succeeded: 3}, d.Stats())
}

func TestDispatcher_SlowWorkerNeverBlocksCaller(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Format: "json", Writer: &buf})

	ai := &fakeAI{block: true}
	d, err := NewDispatcher(ai, nil, Options{PoolSize: 2, Timeout: 50 * time.Millisecond, Logger: l})
	require.NoError(t, err)
	defer func() { _ = d.Close(context.Background()) }()

	start := time.Now()
	d.NotifyFeatureExtraction("p1", nil)
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	d.Wait()
	assert.Equal(t, int64(1), d.Stats().Failed)
	assert.Contains(t, buf.String(), "worker notification failed")
	assert.Contains(t, buf.String(), `"action":"feature_extraction"`)
}

func TestDispatcher_FailureAndPanicAreAbsorbed(t *testing.T) {
	ai := &fakeAI{err: errors.New("connection refused")}
	sc := &fakeScraper{panics: true}
	d, err := NewDispatcher(ai, sc, Options{PoolSize: 2, Timeout: time.Second})
	require.NoError(t, err)
	defer func() { _ = d.Close(context.Background()) }()

	d.NotifyFeatureExtraction("p1", nil)
	d.NotifyScrapingStop("p1")
	d.Wait()

	assert.Equal(t, int64(2), d.Stats().Failed)
}

func TestDispatcher_UnconfiguredIsSkipped(t *testing.T) {
	d, err := NewDispatcher(nil, nil, Options{})
	require.NoError(t, err)
	defer func() { _ = d.Close(context.Background()) }()

	d.NotifyScrapingStart("p1", "cat", "Centro", nil)
	d.Wait()
	assert.Equal(t, Stats{Skipped: 1}, d.Stats())
}

func TestDispatcher_OverloadDrops(t *testing.T) {
	ai := &fakeAI{block: true}
	d, err := NewDispatcher(ai, nil, Options{PoolSize: 1, Timeout: 200 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = d.Close(context.Background()) }()

	d.NotifyFeatureExtraction("p1", nil) // ocupa el único worker
	start := time.Now()
	for i := 0; i < 5; i++ {
		d.NotifyFeatureExtraction("p2", nil)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	d.Wait()

	st := d.Stats()
	assert.Equal(t, int64(5), st.Dropped)
	assert.Equal(t, int64(1), st.Failed)
}

func TestDispatcher_AfterCloseDrops(t *testing.T) {
	d, err := NewDispatcher(&fakeAI{}, nil, Options{PoolSize: 1})
	require.NoError(t, err)
	require.NoError(t, d.Close(context.Background()))

	d.NotifyFeatureExtraction("p1", nil)
	assert.Equal(t, int64(1), d.Stats().Dropped)
}

func TestDispatcher_CloseWhileSubmitting(t *testing.T) {
	ai := &fakeAI{}
	d, err := NewDispatcher(ai, nil, Options{PoolSize: 8, Timeout: time.Second})
	require.NoError(t, err)

	const senders, perSender = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				d.NotifyFeatureExtraction("p1", nil)
			}
		}()
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, d.Close(context.Background()))
	wg.Wait()

	// cada notificación termina entregada o descartada, nunca perdida
	st := d.Stats()
	assert.Equal(t, int64(senders*perSender), st.Succeeded+st.Dropped)
}
