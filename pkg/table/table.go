// Package table orchestrates the asset review table session: exhaustive
// asset fetch, background enrichment, sort selection, and page views.
// All accessors return read-only snapshots recomputed from the current
// state.
package table

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prodtrack/asset-review-client/pkg/client"
	"github.com/prodtrack/asset-review-client/pkg/enrich"
	"github.com/prodtrack/asset-review-client/pkg/logging"
	"github.com/prodtrack/asset-review-client/pkg/pagination"
	"github.com/prodtrack/asset-review-client/pkg/sorting"
)

// API is the slice of the review client the table consumes.
type API interface {
	pagination.AssetPageFetcher
	enrich.Fetcher
}

// Config holds table configuration.
type Config struct {
	// FetchPageSize is the page size used when draining the asset list.
	FetchPageSize int

	// MaxEnrichConcurrency bounds in-flight enrichment fetches.
	// 0 means unbounded.
	MaxEnrichConcurrency int
}

// DefaultConfig returns the default table configuration.
func DefaultConfig() Config {
	return Config{
		FetchPageSize:        100,
		MaxEnrichConcurrency: 0,
	}
}

// Table holds one review table session. Load replaces the asset
// collection wholesale and starts a fresh enrichment batch; the previous
// batch is superseded and its data discarded.
type Table struct {
	fetcher *pagination.ExhaustiveFetcher
	agg     *enrich.Aggregator
	logger  zerolog.Logger

	mu            sync.RWMutex
	project       string
	assets        []client.Asset
	batch         *enrich.Batch
	sortColumn    string
	sortDirection sorting.Direction
}

// New creates a table session backed by the given API client.
func New(api API, cfg Config) *Table {
	if cfg.FetchPageSize < 1 {
		cfg.FetchPageSize = 100
	}

	return &Table{
		fetcher: pagination.NewExhaustiveFetcher(api, pagination.Config{PageSize: cfg.FetchPageSize}),
		agg:     enrich.NewAggregator(api, enrich.Config{MaxConcurrency: cfg.MaxEnrichConcurrency}),
		logger:  logging.NewLogger("table"),
	}
}

// Load fetches the complete asset list of a project and starts
// enrichment in the background. On success the previous collection and
// enrichment batch are replaced wholesale. On failure the table keeps
// its previous state; a cancelled ctx surfaces as an error satisfying
// client.IsCancelled and is not a reportable failure.
//
// The enrichment batch's lifetime is scoped to ctx: cancelling ctx stops
// enrichment for the loaded collection.
func (t *Table) Load(ctx context.Context, project string) error {
	assets, err := t.fetcher.FetchAll(ctx, project)
	if err != nil {
		if !client.IsCancelled(err) {
			t.logger.Error().Err(err).Str("project", project).Msg("Asset load failed")
		}
		return err
	}

	batch := t.agg.Run(ctx, project, assets)

	t.mu.Lock()
	t.project = project
	t.assets = assets
	t.batch = batch
	t.mu.Unlock()

	t.logger.Info().
		Str("project", project).
		Int("assets", len(assets)).
		Msg("Table loaded")

	return nil
}

// Close cancels any in-flight enrichment.
func (t *Table) Close() {
	t.agg.Cancel()
}

// Project returns the currently loaded project key.
func (t *Table) Project() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.project
}

// Assets returns a snapshot of the loaded asset collection in fetch order.
func (t *Table) Assets() []client.Asset {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]client.Asset, len(t.assets))
	copy(snapshot, t.assets)
	return snapshot
}

// ReviewInfos returns a snapshot of the current batch's review-info map.
func (t *Table) ReviewInfos() map[string]client.ReviewInfo {
	t.mu.RLock()
	batch := t.batch
	t.mu.RUnlock()

	if batch == nil {
		return map[string]client.ReviewInfo{}
	}
	return batch.ReviewInfos()
}

// Thumbnails returns a snapshot of the current batch's thumbnail map.
func (t *Table) Thumbnails() map[string]client.Thumbnail {
	t.mu.RLock()
	batch := t.batch
	t.mu.RUnlock()

	if batch == nil {
		return map[string]client.Thumbnail{}
	}
	return batch.Thumbnails()
}

// WaitForEnrichment blocks until the current enrichment batch has
// drained or ctx is cancelled. A table with no loaded project returns
// immediately.
func (t *Table) WaitForEnrichment(ctx context.Context) error {
	t.mu.RLock()
	batch := t.batch
	t.mu.RUnlock()

	if batch == nil {
		return nil
	}
	return batch.Wait(ctx)
}

// SetSort selects the sort column and direction. Empty values clear the
// sort: rows revert to fetch order.
func (t *Table) SetSort(column string, direction sorting.Direction) {
	t.mu.Lock()
	t.sortColumn = column
	t.sortDirection = direction
	t.mu.Unlock()
}

// ToggleSort handles a header click: a new column starts ascending,
// clicking the active column flips the direction. The thumbnail column
// is not sortable and is ignored.
func (t *Table) ToggleSort(column string) {
	if column == "" || column == "thumbnail" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sortColumn == column {
		if t.sortDirection == sorting.Asc {
			t.sortDirection = sorting.Desc
		} else {
			t.sortDirection = sorting.Asc
		}
		return
	}

	t.sortColumn = column
	t.sortDirection = sorting.Asc
}

// Sort returns the active sort column and direction.
func (t *Table) Sort() (string, sorting.Direction) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortColumn, t.sortDirection
}

// Sorted returns the asset collection ordered by the active sort, a
// fresh slice every call.
func (t *Table) Sorted() []client.Asset {
	t.mu.RLock()
	assets := t.assets
	column := t.sortColumn
	direction := t.sortDirection
	batch := t.batch
	t.mu.RUnlock()

	var infos map[string]client.ReviewInfo
	if batch != nil {
		infos = batch.ReviewInfos()
	}

	return sorting.Sort(assets, column, direction, infos)
}

// Rows returns one page of the sorted collection.
func (t *Table) Rows(page, pageSize int) pagination.PageResult[client.Asset] {
	return pagination.Paginate(t.Sorted(), page, pageSize)
}
