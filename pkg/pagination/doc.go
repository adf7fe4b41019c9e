// Package pagination provides page handling for the project asset list.
//
// It has two halves. Paginate slices an already-materialized sequence into
// a self-consistent page view and is used for client-side pagination of
// the sorted table. ExhaustiveFetcher drains a paginated server resource
// into one collection:
//
//	fetcher := pagination.NewExhaustiveFetcher(apiClient, pagination.DefaultConfig())
//	assets, err := fetcher.FetchAll(ctx, "my-project")
//
// FetchAll requests pages strictly in order, one at a time. The
// server-reported total is latched from the first response and bounds the
// loop; an empty page terminates early so an inconsistent total can never
// cause an infinite loop. A failed page aborts the whole fetch - partial
// results are never returned as complete.
package pagination
