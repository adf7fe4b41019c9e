package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/prodtrack/asset-review-client/pkg/client"
	"github.com/prodtrack/asset-review-client/pkg/logging"
)

// Prometheus metrics for enrichment operations.
var (
	enrichmentFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "review_enrichment_fetches_total",
		Help: "Total per-asset enrichment fetches by kind and outcome",
	}, []string{"kind", "outcome"}) // kind: review_infos|thumbnail, outcome: ok|empty|error|cancelled

	enrichmentBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_enrichment_batches_total",
		Help: "Total enrichment batches started",
	})

	enrichmentBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_enrichment_batch_duration_seconds",
		Help:    "Duration of enrichment batches in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})
)

// Fetcher is the slice of the API client the aggregator needs.
type Fetcher interface {
	FetchReviewInfos(ctx context.Context, project, asset, relation string) ([]client.ReviewInfo, error)
	FetchThumbnail(ctx context.Context, project, asset, relation string) (*client.Thumbnail, error)
}

// Config holds aggregator configuration.
type Config struct {
	// MaxConcurrency bounds the number of in-flight enrichment fetches
	// per batch. 0 means unbounded: one request per asset per kind, all
	// fired at once.
	MaxConcurrency int
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 0,
	}
}

// Aggregator runs enrichment batches over asset collections. Starting a
// new batch supersedes the previous one: its scope is cancelled and the
// new batch begins with empty maps.
type Aggregator struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger

	mu      sync.Mutex
	current *Batch
}

// NewAggregator creates a new enrichment aggregator.
func NewAggregator(fetcher Fetcher, config Config) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("enrich"),
	}
}

// Run starts a new enrichment batch for the given asset collection,
// cancelling any batch still in flight. It returns immediately; fetches
// proceed in the background and results accumulate in the batch's maps.
// The batch's scope is derived from ctx, so cancelling ctx cancels the
// batch.
func (a *Aggregator) Run(ctx context.Context, project string, assets []client.Asset) *Batch {
	batchCtx, cancel := context.WithCancel(ctx)

	batch := &Batch{
		project:     project,
		ctx:         batchCtx,
		cancel:      cancel,
		fetcher:     a.fetcher,
		logger:      a.logger,
		reviewInfos: make(map[string]client.ReviewInfo),
		thumbnails:  make(map[string]client.Thumbnail),
	}
	if a.config.MaxConcurrency > 0 {
		batch.limit = semaphore.NewWeighted(int64(a.config.MaxConcurrency))
	}

	a.mu.Lock()
	if a.current != nil {
		a.current.Cancel()
	}
	a.current = batch
	a.mu.Unlock()

	enrichmentBatchesTotal.Inc()
	a.logger.Info().
		Str("project", project).
		Int("assets", len(assets)).
		Int("max_concurrency", a.config.MaxConcurrency).
		Msg("Starting enrichment batch")

	batch.start(assets)
	return batch
}

// Cancel cancels the current batch, if any. Safe to call at any time and
// more than once.
func (a *Aggregator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.Cancel()
	}
}

// Batch is one enrichment cycle over a fixed asset collection. Its maps
// grow monotonically as responses arrive and freeze once the batch is
// cancelled or superseded.
type Batch struct {
	project string
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher Fetcher
	logger  zerolog.Logger
	limit   *semaphore.Weighted // nil when unbounded

	wg sync.WaitGroup

	mu          sync.RWMutex
	reviewInfos map[string]client.ReviewInfo
	thumbnails  map[string]client.Thumbnail
}

// start fires one fetch per asset per enrichment kind. Fetches do not
// wait for one another and complete in arbitrary order.
func (b *Batch) start(assets []client.Asset) {
	started := time.Now()
	b.wg.Add(len(assets) * 2)
	for _, asset := range assets {
		go b.fetchReviewInfos(asset)
		go b.fetchThumbnail(asset)
	}

	go func() {
		b.wg.Wait()
		enrichmentBatchDuration.Observe(time.Since(started).Seconds())
	}()
}

// acquire reserves a concurrency slot when the batch is bounded.
func (b *Batch) acquire() bool {
	if b.limit == nil {
		return b.ctx.Err() == nil
	}
	return b.limit.Acquire(b.ctx, 1) == nil
}

func (b *Batch) release() {
	if b.limit != nil {
		b.limit.Release(1)
	}
}

func (b *Batch) fetchReviewInfos(asset client.Asset) {
	defer b.wg.Done()

	if !b.acquire() {
		enrichmentFetchesTotal.WithLabelValues("review_infos", "cancelled").Inc()
		return
	}
	defer b.release()

	reviews, err := b.fetcher.FetchReviewInfos(b.ctx, b.project, asset.Name, asset.Relation)
	if err != nil {
		if client.IsCancelled(err) {
			enrichmentFetchesTotal.WithLabelValues("review_infos", "cancelled").Inc()
			return
		}
		// Failure isolation: log and skip, siblings continue
		enrichmentFetchesTotal.WithLabelValues("review_infos", "error").Inc()
		b.logger.Warn().
			Err(err).
			Str("asset", asset.Name).
			Str("relation", asset.Relation).
			Msg("Review info fetch failed")
		return
	}

	// An asset with no reviews yet gets no map entry: absence of the key
	// is how "no review data" is represented
	if len(reviews) == 0 {
		enrichmentFetchesTotal.WithLabelValues("review_infos", "empty").Inc()
		return
	}

	b.mergeReviewInfos(asset, reviews)
}

func (b *Batch) fetchThumbnail(asset client.Asset) {
	defer b.wg.Done()

	if !b.acquire() {
		enrichmentFetchesTotal.WithLabelValues("thumbnail", "cancelled").Inc()
		return
	}
	defer b.release()

	thumb, err := b.fetcher.FetchThumbnail(b.ctx, b.project, asset.Name, asset.Relation)
	if err != nil {
		if client.IsCancelled(err) {
			enrichmentFetchesTotal.WithLabelValues("thumbnail", "cancelled").Inc()
			return
		}
		enrichmentFetchesTotal.WithLabelValues("thumbnail", "error").Inc()
		b.logger.Warn().
			Err(err).
			Str("asset", asset.Name).
			Str("relation", asset.Relation).
			Msg("Thumbnail fetch failed")
		return
	}

	// nil is the explicit "no thumbnail exists" sentinel, not an error
	if thumb == nil {
		enrichmentFetchesTotal.WithLabelValues("thumbnail", "empty").Inc()
		return
	}

	b.mergeThumbnail(asset, *thumb)
}

// mergeReviewInfos maps each review to (name, relation, phase) and merges
// by key-wise overwrite. The merge is commutative and associative across
// assets and idempotent within a key, so arbitrary completion order is
// safe. Responses arriving after cancellation are discarded.
func (b *Batch) mergeReviewInfos(asset client.Asset, reviews []client.ReviewInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		return
	}

	for _, review := range reviews {
		b.reviewInfos[ReviewKey(asset.Name, asset.Relation, review.Phase)] = review
	}
	enrichmentFetchesTotal.WithLabelValues("review_infos", "ok").Inc()
}

// mergeThumbnail merges one thumbnail by key-wise overwrite, same
// discipline as mergeReviewInfos.
func (b *Batch) mergeThumbnail(asset client.Asset, thumb client.Thumbnail) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		return
	}

	b.thumbnails[ThumbnailKey(asset.Name, asset.Relation)] = thumb
	enrichmentFetchesTotal.WithLabelValues("thumbnail", "ok").Inc()
}

// Cancel stops the batch: in-flight fetches are cancelled and no further
// map mutation happens once cancellation is observed. Idempotent and safe
// at any point in the batch lifecycle.
func (b *Batch) Cancel() {
	b.cancel()
}

// Wait blocks until every fetch of the batch has finished (successfully
// or not) or ctx is cancelled. A cancelled batch still terminates: its
// fetches observe the batch context and return.
func (b *Batch) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReviewInfos returns a snapshot of the review-info map keyed by
// ReviewKey. The snapshot is a copy; later arrivals do not modify it.
func (b *Batch) ReviewInfos() map[string]client.ReviewInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[string]client.ReviewInfo, len(b.reviewInfos))
	for k, v := range b.reviewInfos {
		snapshot[k] = v
	}
	return snapshot
}

// Thumbnails returns a snapshot of the thumbnail map keyed by
// ThumbnailKey.
func (b *Batch) Thumbnails() map[string]client.Thumbnail {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[string]client.Thumbnail, len(b.thumbnails))
	for k, v := range b.thumbnails {
		snapshot[k] = v
	}
	return snapshot
}
