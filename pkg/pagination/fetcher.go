package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/prodtrack/asset-review-client/pkg/client"
)

// Prometheus metrics for exhaustive fetching.
var (
	fetchAllPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "review_fetch_all_pages_total",
		Help: "Total asset list pages requested by exhaustive fetches",
	})

	fetchAllDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_fetch_all_duration_seconds",
		Help:    "Duration of complete asset list fetches in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// AssetPageFetcher is the interface the API client implements for
// fetching a single page of a project's asset list. page is 0-based.
type AssetPageFetcher interface {
	FetchAssetPage(ctx context.Context, project string, page, pageSize int) (*client.AssetPage, error)
}

// Config holds exhaustive fetcher configuration.
type Config struct {
	// PageSize is the number of assets requested per page.
	PageSize int
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: 100,
	}
}

// ExhaustiveFetcher drains the paginated asset list of a project into one
// in-memory collection.
type ExhaustiveFetcher struct {
	fetcher AssetPageFetcher
	config  Config
}

// NewExhaustiveFetcher creates a new exhaustive fetcher.
func NewExhaustiveFetcher(fetcher AssetPageFetcher, config Config) *ExhaustiveFetcher {
	if config.PageSize < 1 {
		config.PageSize = 100
	}

	return &ExhaustiveFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches every page of the project's asset list sequentially
// and returns the complete collection.
//
// The server-reported total is latched from the first response and is the
// authoritative stopping bound even if later pages disagree. An empty
// page terminates the loop early. Any page failure aborts the whole fetch
// with no partial result; a cancelled context surfaces as an error
// satisfying client.IsCancelled, which callers treat as "no result"
// rather than a failure.
func (f *ExhaustiveFetcher) FetchAll(ctx context.Context, project string) ([]client.Asset, error) {
	start := time.Now()

	var all []client.Asset
	total := -1 // latched from the first response

	for page := 0; ; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := f.fetcher.FetchAssetPage(ctx, project, page, f.config.PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch asset page %d: %w", page, err)
		}
		fetchAllPagesTotal.Inc()

		if total < 0 {
			total = result.Total
			if total < 0 {
				total = 0
			}
			log.Debug().
				Str("project", project).
				Int("total", total).
				Msg("Latched asset total from first page")
		}

		// Empty page guards against an inconsistent total
		if len(result.Assets) == 0 {
			break
		}

		all = append(all, result.Assets...)

		if len(all) >= total {
			break
		}
	}

	fetchAllDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Str("project", project).
		Int("assets", len(all)).
		Int("total", total).
		Dur("duration", time.Since(start)).
		Msg("Asset list fetch complete")

	return all, nil
}
