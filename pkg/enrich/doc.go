// Package enrich attaches secondary review data to a fetched asset
// collection: per-phase review records and thumbnails, fetched with one
// request per asset per kind and merged into keyed maps.
//
// Each call to Aggregator.Run starts a fresh batch with its own
// cancellation scope and empty maps, cancelling any batch still in
// flight - two batches never mix data. Within a batch every fetch is an
// independent unit of work: a failed asset is logged and skipped without
// affecting its siblings. Responses arriving after the batch was
// cancelled are discarded, so a batch's maps never change once
// cancellation has been observed.
//
//	agg := enrich.NewAggregator(apiClient, enrich.DefaultConfig())
//	batch := agg.Run(ctx, "my-project", assets)
//	if err := batch.Wait(ctx); err == nil {
//		infos := batch.ReviewInfos()
//	}
package enrich
